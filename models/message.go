package models

// Message statuses reported by the API. Moderation is owned by the server.
const (
	MessagePending  = "pending"
	MessageApproved = "approved"
)

// Message is one guestbook entry on the memorial page.
type Message struct {
	ID             int64     `json:"id"`
	AuthorName     string    `json:"author_name"`
	MessageContent string    `json:"message_content"`
	Status         string    `json:"status"`
	CreatedAt      Timestamp `json:"created_at"`
}

// Pending reports whether the message still awaits moderation.
func (m Message) Pending() bool { return m.Status == MessagePending }

// NewMessage is the create payload for POST /api/memorial/messages.
type NewMessage struct {
	AuthorName     string `json:"author_name"`
	MessageContent string `json:"message_content"`
}

// MessageList wraps GET /api/memorial/messages.
type MessageList struct {
	Messages []Message `json:"messages"`
}

// Stats summarizes the guestbook.
type Stats struct {
	TotalMessages int64     `json:"total_messages"`
	LastUpdated   Timestamp `json:"last_updated"`
}

// Health mirrors GET /api/health.
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Error    string `json:"error,omitempty"`
}
