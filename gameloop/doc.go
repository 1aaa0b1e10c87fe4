// Package gameloop drives an autonomous agent through a text-adventure game
// by alternating LLM reasoning with tool invocations against a game session.
//
// The loop is built from small, separately testable pieces:
//
//   - ParseDecision: turns raw LLM text into a structured decision, tolerant
//     of malformed output.
//   - Normalizer: maps loose tool names and invalid verbs onto the closed
//     operation set the session accepts.
//   - ExplorationTracker: the growing map of discovered locations, movement
//     edges, and untried directions.
//   - ProgressTracker / FailureTable: stall classification, loop detection,
//     escape overrides, and refresh cadence.
//   - Runner: the turn orchestrator tying it all together and feeding the
//     run recorder.
//
// Each run constructs its own Runner; there are no package-level singletons,
// so independent runs may execute concurrently in one process.
//
// # Quick start
//
//	client, err := llm.NewClientFromEnv()
//	if err != nil {
//	    log.Fatal(err) // missing credentials are fatal before any run
//	}
//	rec := runlog.NewRecorder("logs")
//	runner := gameloop.NewRunner(session, client, gameloop.RunConfig{
//	    Game:     "zork1",
//	    MaxSteps: 100,
//	    Seed:     42,
//	}, gameloop.WithRecorder(rec))
//
//	result, err := runner.Run(ctx)
package gameloop
