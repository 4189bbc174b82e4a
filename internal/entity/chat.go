package entity

// Sender identifies who authored a message. Wire values match what the
// widget and admin console render ("user" is the visitor).
type Sender string

const (
	SenderUser  Sender = "user"
	SenderBot   Sender = "bot"
	SenderAdmin Sender = "admin"
)

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// Message is one utterance in a session transcript.
// Timestamp is epoch milliseconds assigned by the producing party.
// Seq is the store's insertion counter, used only as a tie-break when
// timestamps collide; Timestamp is the authoritative sort key.
type Message struct {
	Id        string `json:"id,omitempty"`
	Text      string `json:"text"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"`
	Read      bool   `json:"read,omitempty"`
	Seq       int64  `json:"-"`
}

// UserDetails is the contact snapshot captured at handoff time.
type UserDetails struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ChatSession is one visitor conversation thread. Id is the visitor's
// normalized 10-digit phone number, so reconnecting with the same phone
// resolves to the same session.
type ChatSession struct {
	Id         string        `json:"id"`
	User       UserDetails   `json:"user"`
	Status     SessionStatus `json:"status"`
	LastActive int64         `json:"lastActive"`
	Messages   []Message     `json:"messages,omitempty"`
}

// SessionPointer is the client-local resume record. CreatedAt is pointer
// creation time, not lastActive; the 24h validity window counts from here.
type SessionPointer struct {
	Id        string `json:"id"`
	CreatedAt int64  `json:"timestamp"`
}

// ChatMode is the visitor client's dialogue state.
type ChatMode string

const (
	ModeBot     ChatMode = "bot"
	ModeHandoff ChatMode = "handoff_request"
	ModeLive    ChatMode = "live"
)
