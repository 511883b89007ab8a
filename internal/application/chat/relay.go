package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/google/uuid"

	"github.com/bryanwahyu/fraudshield/internal/application"
	domain "github.com/bryanwahyu/fraudshield/internal/domain/chat"
	"github.com/bryanwahyu/fraudshield/internal/infra/ai/prompt"
	"github.com/bryanwahyu/fraudshield/internal/metrics"
)

// Session is an explicitly owned chat session. Callers create it once with
// Relay.NewSession and pass it to every Send.
type Session struct {
	ID        string
	CreatedAt time.Time

	conv domain.Conversation

	// sendMu serializes Send; remote conversations keep unguarded history.
	sendMu sync.Mutex

	mu    sync.Mutex
	turns []domain.Turn
}

// Transcript returns a copy of the displayed turns, greeting included.
func (s *Session) Transcript() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) append(t domain.Turn) {
	s.mu.Lock()
	s.turns = append(s.turns, t)
	s.mu.Unlock()
}

// Reply is the assistant message as observed so far.
type Reply struct {
	Text     string `json:"text"`
	Done     bool   `json:"done"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Relay forwards user turns to a remote conversation and assembles replies.
type Relay struct {
	Provider domain.Provider
	Clock    application.Clock
}

// NewSession opens a remote conversation fixed to the security-assistant
// instruction. No message is sent until the first Send.
func (r *Relay) NewSession(ctx context.Context) (*Session, error) {
	conv, err := r.Provider.Open(ctx, prompt.ChatInstruction)
	if err != nil {
		return nil, err
	}
	now := r.now()
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		conv:      conv,
		turns:     []domain.Turn{{Role: domain.RoleAssistant, Text: prompt.ChatGreeting, At: now}},
	}, nil
}

// Send streams one reply. Every arriving fragment is appended to a single
// buffer and observe sees the whole buffer after each append. A transport
// failure is not returned: observe gets one terminal fallback reply instead.
// The final reply is also the return value. Concurrent sends on one session
// run one after another.
func (r *Relay) Send(ctx context.Context, s *Session, text string, observe func(Reply)) Reply {
	if observe == nil {
		observe = func(Reply) {}
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	s.append(domain.Turn{Role: domain.RoleUser, Text: text, At: r.now()})

	var buf strings.Builder
	for frag, err := range s.conv.Stream(ctx, text) {
		if err != nil {
			log.WithFields(log.Fields{"session": s.ID}).WithError(err).Warn("chat stream failed")
			metrics.ChatStreamsTotal.WithLabelValues("fallback").Inc()
			if buf.Len() > 0 {
				s.append(domain.Turn{Role: domain.RoleAssistant, Text: buf.String(), At: r.now()})
			}
			fb := Reply{Text: prompt.ChatFallback, Done: true, Fallback: true}
			s.append(domain.Turn{Role: domain.RoleAssistant, Text: fb.Text, At: r.now()})
			observe(fb)
			return fb
		}
		if frag == "" {
			continue
		}
		buf.WriteString(frag)
		observe(Reply{Text: buf.String()})
	}

	metrics.ChatStreamsTotal.WithLabelValues("ok").Inc()
	final := Reply{Text: buf.String(), Done: true}
	s.append(domain.Turn{Role: domain.RoleAssistant, Text: final.Text, At: r.now()})
	observe(final)
	return final
}

func (r *Relay) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}
