package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ChatRole identifies who wrote a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// AttachmentType is the coarse kind of an uploaded file.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentPDF   AttachmentType = "pdf"
	AttachmentFile  AttachmentType = "file"
)

type Attachment struct {
	ID   string         `json:"id"`
	Type AttachmentType `json:"type"`
	Name string         `json:"name"`
	URL  string         `json:"url,omitempty"`
	Size int64          `json:"size"`
}

type ChatMessage struct {
	ID            string                    `json:"id"`
	Role          ChatRole                  `json:"role"`
	Content       string                    `json:"content"`
	Timestamp     time.Time                 `json:"timestamp"`
	Attachments   []Attachment              `json:"attachments,omitempty"`
	ExtractedData *ExtractedTransactionData `json:"extractedData,omitempty"`
}
