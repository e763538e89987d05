package domain

import (
	"context"
	"time"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"
)

// MentorProfile is the mentee profile used to personalise the virtual mentor.
// Any field may be empty until the mentee fills it in or extraction does.
type MentorProfile struct {
	UserID       string    `json:"user"`
	Introduction string    `json:"introduction"`
	Hobbies      string    `json:"hobbies"`
	Interests    string    `json:"interests"`
	Goals        string    `json:"goals"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Incomplete reports whether at least one profile field is still empty.
func (p *MentorProfile) Incomplete() bool {
	return p.Introduction == "" || p.Hobbies == "" || p.Interests == "" || p.Goals == ""
}

type MentorMessage struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MentorConversation is append-only; messages are ordered oldest first.
type MentorConversation struct {
	UserID    string          `json:"user"`
	Messages  []MentorMessage `json:"messages"`
	Summary   string          `json:"summary"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type MentorProfilePatch struct {
	Introduction *string `json:"introduction" validate:"omitempty,max=2000"`
	Hobbies      *string `json:"hobbies" validate:"omitempty,max=2000"`
	Interests    *string `json:"interests" validate:"omitempty,max=2000"`
	Goals        *string `json:"goals" validate:"omitempty,max=2000"`
}

type MentorReply struct {
	Reply   string         `json:"reply"`
	Profile *MentorProfile `json:"profile"`
}

type MentorHistory struct {
	Profile  *MentorProfile  `json:"profile"`
	Messages []MentorMessage `json:"messages"`
}

type MentorProfileRepository interface {
	// GetOrCreate returns the user's profile, creating an empty one on first access.
	GetOrCreate(ctx context.Context, userID string) (*MentorProfile, error)
	Update(ctx context.Context, profile *MentorProfile) error
}

type MentorConversationRepository interface {
	// GetOrCreate returns the user's conversation, creating an empty one on first access.
	GetOrCreate(ctx context.Context, userID string) (*MentorConversation, error)
	// AppendMessages adds messages in order, atomically.
	AppendMessages(ctx context.Context, userID string, messages []MentorMessage) error
}

type MentorUsecase interface {
	GetProfile(ctx context.Context) (*MentorProfile, error)
	UpdateProfile(ctx context.Context, patch *MentorProfilePatch) (*MentorProfile, error)
	GetHistory(ctx context.Context) (*MentorHistory, error)
	SendMessage(ctx context.Context, message string) (*MentorReply, error)
}
