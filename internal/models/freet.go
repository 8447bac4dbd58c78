package models

import (
	"time"

	"github.com/google/uuid"
)

// Freet represents a post.
type Freet struct {
	// ID is the unique identifier for the freet (UUID format).
	ID string

	// AuthorID is the id of the user who wrote the freet.
	AuthorID string

	// Content is the freet's text.
	Content string

	// InGroup reports whether the freet has been shared into a group.
	// A shared freet belongs to at most one group; downstream views use
	// this flag to hide author-only affordances.
	InGroup bool

	// CreatedAt is the Unix timestamp when the freet was posted.
	CreatedAt int64
}

// NewFreet creates a Freet with a fresh ID and creation timestamp.
func NewFreet(authorID, content string) *Freet {
	return &Freet{
		ID:        uuid.New().String(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().Unix(),
	}
}
