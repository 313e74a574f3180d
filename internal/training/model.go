package training

import "time"

// Session is a scheduled training session run by an expert.
type Session struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	ExpertID    int64     `json:"expert_id"`
	ExpertName  string    `json:"expert_name"`
	Location    *string   `json:"location,omitempty"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Enrollment links a customer to a session and records who added them.
type Enrollment struct {
	SessionID  int64     `json:"session_id"`
	CustomerID int64     `json:"customer_id"`
	AddedBy    int64     `json:"added_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Document is course material attached to a session.
type Document struct {
	ID          int64     `json:"id"`
	SessionID   int64     `json:"session_id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StorageKey  string    `json:"-"`
	UploadedBy  int64     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListFilter narrows a session listing.
type ListFilter struct {
	ExpertID *int64
	From     *time.Time
	Limit    int
	Offset   int
}
