package domain

import "time"

// Chat is the archived record of a conversation, kept after the live
// session is gone.
type Chat struct {
	ID        string
	Title     string
	Stage     Stage
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ChatMessage is one archived message. Seq orders messages within a chat.
type ChatMessage struct {
	ID        string
	ChatID    string
	Seq       int
	Role      Role
	Content   string
	CreatedAt time.Time
}

// ChatTitle derives a short title from a user's first message.
func ChatTitle(firstMessage string) string {
	const maxLen = 50
	r := []rune(firstMessage)
	if len(r) <= maxLen {
		return string(r)
	}
	return string(r[:maxLen]) + "..."
}
