package chat

import (
	"context"
	"iter"
)

// Conversation is a stateful remote session. The remote side keeps the turn
// history; each Stream call sends one user message and yields reply text
// fragments in arrival order.
type Conversation interface {
	Stream(ctx context.Context, message string) iter.Seq2[string, error]
}

// Provider opens conversations fixed to a system instruction.
type Provider interface {
	Open(ctx context.Context, systemInstruction string) (Conversation, error)
}
