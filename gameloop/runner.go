package gameloop

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hamonk/textquest/gamesession"
	"github.com/hamonk/textquest/llm"
	"github.com/hamonk/textquest/runlog"
)

// RunState is the orchestrator's lifecycle state within a turn.
type RunState string

const (
	StateAwaitingDecision RunState = "awaiting_decision"
	StateDispatching      RunState = "dispatching"
	StateObserved         RunState = "observed"
	StateTerminated       RunState = "terminated"
)

// RunConfig holds the caller-owned configuration for one run.
type RunConfig struct {
	Game        string   // game identifier, recorded in the artifact
	Agent       string   // agent identifier, recorded in the artifact
	MaxSteps    int      // step budget; the only built-in cutoff
	Seed        int      // base seed; each turn uses Seed+step
	MaxTokens   int      // LLM output cap per call (default 300)
	Walkthrough []string // optional known-optimal steps, guidance only
}

// RunResult summarizes a finished run.
type RunResult struct {
	FinalScore       int
	Moves            int
	LocationsVisited []string
	GameCompleted    bool
	LogPath          string
}

// Runner drives one agent through one game session. Each run owns its own
// Runner with its own trackers and recorder; runs share no state, so
// independent runs may proceed concurrently in one process.
type Runner struct {
	id       string
	config   RunConfig
	session  gamesession.Client
	llm      llm.Client
	recorder *runlog.Recorder
	emitter  *EventEmitter
	logger   *zap.Logger

	exploration *ExplorationTracker
	progress    *ProgressTracker
	failures    *FailureTable
	normalizer  *Normalizer
	history     turnRing

	state        RunState
	score        int
	moves        int
	validActions []string
	currentMap   string
	inventory    []string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger attaches a zap logger for warning-level run notes. The default
// is a nop logger.
func WithLogger(l *zap.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithRecorder attaches a run recorder. Without one the run still executes
// but leaves no artifact.
func WithRecorder(rec *runlog.Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner constructs a Runner over a game session and an LLM client.
func NewRunner(session gamesession.Client, llmClient llm.Client, config RunConfig, opts ...RunnerOption) *Runner {
	if config.MaxSteps <= 0 {
		config.MaxSteps = 100
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 300
	}
	if config.Agent == "" {
		config.Agent = "textquest"
	}

	r := &Runner{
		id:          uuid.New().String(),
		config:      config,
		session:     session,
		llm:         llmClient,
		logger:      zap.NewNop(),
		exploration: NewExplorationTracker(),
		progress:    NewProgressTracker(),
		failures:    NewFailureTable(),
		state:       StateAwaitingDecision,
	}
	r.normalizer = &Normalizer{Failures: r.failures, Exploration: r.exploration}
	r.emitter = NewEventEmitter(r.id, 256)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the run identifier.
func (r *Runner) ID() string { return r.id }

// State returns the orchestrator's current state.
func (r *Runner) State() RunState { return r.state }

// Events returns the event channel for the host application.
func (r *Runner) Events() <-chan RunEvent { return r.emitter.Events() }

// Map returns the exploration map listing for the current run.
func (r *Runner) Map() string { return r.exploration.RenderMap() }

// Run executes the agent loop until the game ends or the step budget is
// exhausted. Session dispatch failures become in-band error observations;
// the only errors returned are startup failures before the first turn.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	defer r.emitter.Close()

	if r.recorder != nil {
		if _, err := r.recorder.Start(r.config.Game, r.config.Agent, r.config.Seed, r.config.MaxSteps); err != nil {
			return nil, fmt.Errorf("start run record: %w", err)
		}
	}
	r.emitter.Emit(EventRunStart, map[string]any{
		"game": r.config.Game, "agent": r.config.Agent, "seed": r.config.Seed,
	})

	// Verify the session is reachable before any turn begins.
	tools, err := r.session.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list session tools: %w", err)
	}
	r.logger.Debug("session tools", zap.Strings("tools", tools))

	// Initial inventory and valid-action snapshots; both optional.
	if result, err := r.session.CallTool(ctx, string(OpInventory), map[string]any{}); err == nil {
		r.inventory = ParseInventory(gamesession.Text(result))
	}
	r.refreshValidActions(ctx)

	// Initial observation.
	observation := r.dispatch(ctx, OpPlayAction, map[string]any{"action": "look"})
	obs := NewObservation(observation, r.score)
	r.score = obs.Score
	r.exploration.SetCurrent(obs.Location)

	completed := false

	for step := 1; step <= r.config.MaxSteps; step++ {
		r.state = StateAwaitingDecision

		if r.progress.TickMapRefresh() {
			r.refreshMap(ctx)
		}
		if r.progress.TickValidRefresh() {
			r.refreshValidActions(ctx)
		}

		prompt := buildPrompt(promptInput{
			Observation:    observation,
			Score:          r.score,
			LocationsCount: r.exploration.LocationCount(),
			TurnIndex:      step - 1,
			Walkthrough:    r.config.Walkthrough,
			History:        r.history.last(promptHistoryTurns),
			RecentActions:  r.progress.RecentActions(),
			Failed:         r.failures.Failed(failedPromptMin),
			ValidActions:   r.validActions,
			StuckSteps:     r.progress.StepsSinceProgress(),
			MapListing:     r.currentMap,
			UntriedHints:   r.exploration.UntriedDirections(r.exploration.Current()),
		})

		raw, err := r.llm.Complete(ctx, llm.Request{
			System:    SystemPrompt,
			Prompt:    prompt,
			Seed:      r.config.Seed + step,
			MaxTokens: r.config.MaxTokens,
		})
		if err != nil {
			// A failed inference degrades to the parser defaults rather
			// than aborting the run; only startup errors are fatal.
			r.logger.Warn("llm call failed", zap.Int("step", step), zap.Error(err))
			r.emitter.Emit(EventError, map[string]any{"step": step, "error": err.Error()})
			raw = ""
		}

		decision := ParseDecision(raw)
		r.emitter.Emit(EventDecision, map[string]any{
			"step": step, "thought": decision.Rationale, "tool": decision.Tool,
		})

		r.state = StateDispatching
		op, args := r.normalizer.Normalize(decision.Tool, decision.Args, r.validActions)

		dispatchedAction := ""
		if op == OpPlayAction {
			dispatchedAction, _ = args["action"].(string)

			// The loop signal reflects what was actually dispatched on
			// previous turns, so it is checked before recording this one.
			if r.progress.LoopDetected() {
				r.emitter.Emit(EventLoopDetection, map[string]any{
					"step": step, "action": r.progress.LastAction(),
				})
				r.logger.Warn("loop detected, overriding action",
					zap.Int("step", step), zap.String("action", r.progress.LastAction()))

				override := r.progress.EscapeAction(r.validActions, r.failures, r.exploration)
				args["action"] = override
				dispatchedAction = override
				r.emitter.Emit(EventUnstuck, map[string]any{"step": step, "action": override})
			}
			r.progress.RecordAction(dispatchedAction)
			r.moves++
		}

		prevLocation := r.exploration.Current()
		oldScore := r.score

		observation = r.dispatch(ctx, op, args)
		if op == OpInventory {
			r.inventory = ParseInventory(observation)
		}

		r.state = StateObserved
		obs = NewObservation(observation, r.score)
		r.score = obs.Score

		movementAction := ""
		if op == OpPlayAction {
			movementAction = dispatchedAction
		}
		knownBefore := r.exploration.Visited(obs.Location)
		location := r.exploration.Observe(prevLocation, movementAction, obs)

		if r.progress.Update(prevLocation, location, oldScore, r.score) {
			if location != prevLocation && !knownBefore {
				r.exploration.ResetUntried(location)
				r.progress.ForceValidRefresh()
				r.emitter.Emit(EventNewLocation, map[string]any{"step": step, "location": location})
				r.logger.Info("new location", zap.Int("step", step), zap.String("location", location))
			}
		} else if dispatchedAction != "" && MatchesFailure(observation) {
			if count := r.failures.Record(dispatchedAction); count >= failedPromptMin {
				r.logger.Warn("action keeps failing",
					zap.String("action", dispatchedAction), zap.Int("failures", count))
				r.emitter.Emit(EventWarning, map[string]any{
					"step": step, "action": dispatchedAction, "failures": count,
				})
			}
		}

		r.history.append(TurnEntry{
			Step:     step,
			Thought:  decision.Rationale,
			Tool:     string(op),
			Action:   dispatchedAction,
			Result:   excerpt(observation, 200),
			Location: location,
			Score:    r.score,
		})

		if r.recorder != nil {
			if err := r.recorder.Append(runlog.StepRecord{
				Step:         step,
				Thought:      decision.Rationale,
				Tool:         string(op),
				ToolArgs:     args,
				Result:       observation,
				Location:     location,
				Score:        r.score,
				Moves:        r.moves,
				Inventory:    append([]string(nil), r.inventory...),
				ValidActions: append([]string(nil), r.validActions...),
			}); err != nil {
				r.logger.Warn("record step", zap.Int("step", step), zap.Error(err))
			}
		}

		if obs.Terminal {
			completed = true
			r.emitter.Emit(EventGameOver, map[string]any{"step": step, "score": r.score})
			break
		}
	}

	r.state = StateTerminated

	result := &RunResult{
		FinalScore:       r.score,
		Moves:            r.moves,
		LocationsVisited: r.exploration.Locations(),
		GameCompleted:    completed,
	}

	if r.recorder != nil {
		path, err := r.recorder.Finish(r.score, r.moves, result.LocationsVisited, completed, r.exploration.MapState(), nil)
		if err != nil {
			r.logger.Warn("finish run record", zap.Error(err))
		}
		result.LogPath = path
	}

	r.emitter.Emit(EventRunEnd, map[string]any{
		"score": r.score, "moves": r.moves, "completed": completed,
	})
	return result, nil
}

// dispatch sends one operation to the session. Failures are converted into
// an in-band error observation; the loop proceeds to the next turn rather
// than aborting, and nothing is retried.
func (r *Runner) dispatch(ctx context.Context, op Op, args map[string]any) string {
	r.emitter.Emit(EventToolCallStart, map[string]any{"tool": string(op), "args": args})

	result, err := r.session.CallTool(ctx, string(op), args)
	if err != nil {
		text := fmt.Sprintf("Error: %v", err)
		r.logger.Warn("tool call failed", zap.String("tool", string(op)), zap.Error(err))
		r.emitter.Emit(EventToolCallEnd, map[string]any{"tool": string(op), "error": err.Error()})
		return text
	}

	text := gamesession.Text(result)
	r.emitter.Emit(EventToolCallEnd, map[string]any{"tool": string(op), "output": excerpt(text, 200)})
	return text
}

// refreshMap fetches the session's map view for prompt context.
func (r *Runner) refreshMap(ctx context.Context) {
	result, err := r.session.CallTool(ctx, string(OpMap), map[string]any{})
	if err != nil {
		r.logger.Debug("map refresh failed", zap.Error(err))
		return
	}
	r.currentMap = gamesession.Text(result)
	r.emitter.Emit(EventMapRefresh, nil)
}

// refreshValidActions fetches the valid-action snapshot for the current
// location. The session reply is free text; only the portion after the
// "Valid actions:" marker is parsed.
func (r *Runner) refreshValidActions(ctx context.Context) {
	result, err := r.session.CallTool(ctx, string(OpValidActions), map[string]any{})
	if err != nil {
		r.logger.Debug("valid actions refresh failed", zap.Error(err))
		return
	}

	text := gamesession.Text(result)
	_, rest, ok := strings.Cut(text, "Valid actions:")
	if !ok {
		return
	}

	var actions []string
	for _, a := range strings.Split(rest, ",") {
		if a = strings.TrimSpace(a); a != "" {
			actions = append(actions, a)
		}
	}
	r.validActions = actions
	r.emitter.Emit(EventValidRefresh, map[string]any{"count": len(actions)})
}

// excerpt truncates s to at most n bytes for event payloads and history.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
