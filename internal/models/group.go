package models

import (
	"time"

	"github.com/google/uuid"
)

// Group represents a named, privacy-scoped collection of freets.
//
// Administrators is always a subset of Members: the creator starts as the
// sole member and administrator, members are only ever appended, and a user
// must already be a member before being promoted. The storage layer enforces
// the subset relation structurally (admin is a role on the membership row).
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the group's display name (unique case-insensitively).
	Name string

	// Administrators holds the user ids with elevated rights on the group.
	Administrators []string

	// Members holds the user ids belonging to the group.
	Members []string

	// Posts holds the ids of freets shared into the group.
	Posts []string

	// IsPrivate gates both visibility to non-members and self-service
	// joining.
	IsPrivate bool

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// NewGroup creates a Group with the creator as sole member and administrator.
func NewGroup(name, creatorID string, isPrivate bool) *Group {
	return &Group{
		ID:             uuid.New().String(),
		Name:           name,
		Administrators: []string{creatorID},
		Members:        []string{creatorID},
		IsPrivate:      isPrivate,
		CreatedAt:      time.Now().Unix(),
	}
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	return contains(g.Members, userID)
}

// HasAdmin reports whether userID is an administrator of the group.
func (g *Group) HasAdmin(userID string) bool {
	return contains(g.Administrators, userID)
}

// HasPost reports whether freetID is in the group's posts.
func (g *Group) HasPost(freetID string) bool {
	return contains(g.Posts, freetID)
}

// VisibleTo reports whether the group's details may be shown to userID.
// Public groups are visible to any caller; private groups only to members.
func (g *Group) VisibleTo(userID string) bool {
	return !g.IsPrivate || g.HasMember(userID)
}

// SelfJoinable reports whether a user may join without administrator action.
func (g *Group) SelfJoinable() bool {
	return !g.IsPrivate
}

// RequiresAdminToAdd reports whether only administrators may add members.
func (g *Group) RequiresAdminToAdd() bool {
	return g.IsPrivate
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
