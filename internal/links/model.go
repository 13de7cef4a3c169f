package links

import (
	"time"

	"github.com/google/uuid"
)

// Link maps a short code to a target URL and carries its click counters.
type Link struct {
	ID            uuid.UUID
	Code          string
	TargetURL     string
	TotalClicks   int64
	LastClickedAt *time.Time
	CreatedAt     time.Time
}

// CreateLinkRequest represents the parameters for creating a new link.
type CreateLinkRequest struct {
	TargetURL  string
	CustomCode string // optional; a code is generated when empty
}
