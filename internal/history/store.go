// Package history holds per-session conversation memory. Each session id maps
// to an independent append-only sequence of turns; reads for prompt context
// use a bounded suffix window and never touch the persisted sequence.
package history

import (
	"context"
	"strings"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultWindow is the number of trailing turns supplied as prompt context:
// the last two question/answer exchanges.
const DefaultWindow = 4

// Turn is one conversation message.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store persists conversation history keyed by session id. Append calls for
// one session are applied in completion order; sessions never see each
// other's turns.
type Store interface {
	// Load returns the full history for a session, empty if unseen.
	Load(ctx context.Context, sessionID string) ([]Turn, error)
	// Append adds turns to the end of a session's history.
	Append(ctx context.Context, sessionID string, turns ...Turn) error
}

// Window returns a copy of the most recent k turns. It never mutates the
// input and tolerates k larger than the history.
func Window(turns []Turn, k int) []Turn {
	if k <= 0 || len(turns) == 0 {
		return nil
	}
	if len(turns) > k {
		turns = turns[len(turns)-k:]
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Format renders turns as prompt-ready text, one "Role: content" line each.
func Format(turns []Turn) string {
	if len(turns) == 0 {
		return "No previous conversation."
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteByte('\n')
		}
		switch t.Role {
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(t.Content)
	}
	return b.String()
}
