// Package gamesession defines the narrow interface between the agent loop and
// an external text-adventure session.
//
// The session is an excluded collaborator: it may live behind any transport,
// and the loop treats everything it returns as opaque text. The only structure
// the loop relies on is extracted by its own parsers.
package gamesession

import (
	"context"
	"fmt"
)

// Client is the discrete-operation surface a game session must expose.
// At minimum the session supports a play-action operation taking a free-text
// command; the query operations (memory, map, inventory, valid actions) are
// optional and may return an error when unsupported.
type Client interface {
	// ListTools returns the operation names the session accepts.
	ListTools(ctx context.Context) ([]string, error)

	// CallTool dispatches one operation and returns its raw result. The
	// result is deliberately untyped; callers pass it through Text.
	CallTool(ctx context.Context, name string, args map[string]any) (any, error)
}

// TextContenter is implemented by typed results that carry their own text.
type TextContenter interface {
	TextContent() string
}

// Text flattens a tool result into a string. Transports return heterogeneous
// shapes (plain strings, typed content objects, lists of typed items), so all
// adaptation is isolated here with a fixed fallback chain:
// string -> typed content -> first item of a list -> Stringer -> stringify.
func Text(result any) string {
	switch r := result.(type) {
	case nil:
		return ""
	case string:
		return r
	case TextContenter:
		return r.TextContent()
	case []any:
		if len(r) == 0 {
			return ""
		}
		return Text(r[0])
	case []string:
		if len(r) == 0 {
			return ""
		}
		return r[0]
	case fmt.Stringer:
		return r.String()
	case error:
		return r.Error()
	default:
		return fmt.Sprintf("%v", r)
	}
}
