package resolution

import "time"

// State tracks the session sub-flow: opened on dispute creation,
// in_conversation once the candidate sends the first message, resolved when a
// candidate turn is classified as a confirmation.
type State string

const (
	StateOpened         State = "opened"
	StateInConversation State = "in_conversation"
	StateResolved       State = "resolved"
)

// Sender identifies who produced a transcript message.
type Sender string

const (
	SenderCandidate Sender = "candidate"
	SenderAgent     Sender = "agent"
	SenderSystem    Sender = "system"
)

// Session mirrors the resolution_sessions table.
type Session struct {
	ID        string
	DisputeID string
	State     State
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is one transcript entry. The transcript is append-only; rows are
// never edited or removed.
type Message struct {
	ID        int64
	SessionID string
	Sender    Sender
	Text      string
	Intent    *Intent
	CreatedAt time.Time
}

// TurnResult reports what one candidate turn produced.
type TurnResult struct {
	Intent   Intent
	Reply    string
	Resolved bool
}
