package memory

import (
	"time"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
)

// Turn is one message in a conversation. Turns are immutable once appended.
type Turn struct {
	Role      string          `json:"role"` // "user" or "assistant"
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Offers    []catalog.Match `json:"offers,omitempty"`
	Failed    bool            `json:"failed,omitempty"` // assistant turn that ended in a model failure
}

// Session is the per-conversation state: ordered turns, the current
// preference snapshot and any offers held pending confirmation.
type Session struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Turns     []Turn          `json:"turns"`
	Prefs     Preferences     `json:"preferences"`
	Pending   []catalog.Match `json:"pending,omitempty"`
}

// AwaitingConfirmation reports whether ranked offers are being held for the
// user's explicit go-ahead. Value receiver so it can be called directly on
// store snapshots.
func (s Session) AwaitingConfirmation() bool {
	return len(s.Pending) > 0
}

func (s *Session) AddUserTurn(content string) {
	s.Turns = append(s.Turns, Turn{Role: "user", Content: content, Timestamp: time.Now()})
}

func (s *Session) AddAssistantTurn(content string, offers []catalog.Match) {
	s.Turns = append(s.Turns, Turn{Role: "assistant", Content: content, Timestamp: time.Now(), Offers: offers})
}

// AddFailedAssistantTurn records an apologetic reply for a failed exchange so
// the conversation can continue past model outages.
func (s *Session) AddFailedAssistantTurn(content string) {
	s.Turns = append(s.Turns, Turn{Role: "assistant", Content: content, Timestamp: time.Now(), Failed: true})
}
