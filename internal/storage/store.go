// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/fritter-app/fritter/internal/models"
)

// Store defines the interface for user, freet, and group persistence.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// Lookups return *models.NotFoundError when the row is absent. Set mutations
// (AddGroupMember, PromoteGroupAdmin, AttachGroupPost) are atomic: a
// duplicate add returns *models.ConflictError and never writes the same id
// twice, even under concurrent requests.
type Store interface {
	// CreateUser persists a new user.
	// Returns a conflict error if the username is taken (case-insensitive).
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUserByUsername retrieves a user by username (case-insensitive).
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUsersByIDs retrieves multiple users keyed by id.
	// Users that don't exist are omitted from the result.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateFreet persists a new freet.
	CreateFreet(ctx context.Context, freet *models.Freet) error

	// GetFreet retrieves a freet by id.
	GetFreet(ctx context.Context, id string) (*models.Freet, error)

	// DeleteFreet removes a freet by id.
	DeleteFreet(ctx context.Context, id string) error

	// CreateGroup persists a new group with its founding membership rows.
	// Returns a conflict error if the name is taken (case-insensitive).
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group by id, with members, admins, and posts.
	GetGroup(ctx context.Context, id string) (*models.Group, error)

	// GetGroupByName retrieves a group by name (case-insensitive exact match).
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)

	// ListGroupsByMember returns all groups the user belongs to.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// ListGroupsByAdmin returns all groups the user administers.
	ListGroupsByAdmin(ctx context.Context, userID string) ([]*models.Group, error)

	// DeleteGroup removes a group and deletes every freet it owns.
	// Freets are deleted before the group row in a single transaction.
	DeleteGroup(ctx context.Context, id string) error

	// AddGroupMember appends a user to the group's member set.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// PromoteGroupAdmin marks an existing member as administrator.
	PromoteGroupAdmin(ctx context.Context, groupID, userID string) error

	// SetGroupPrivacy updates the group's privacy flag.
	SetGroupPrivacy(ctx context.Context, groupID string, isPrivate bool) error

	// AttachGroupPost appends a freet to the group's post set and marks the
	// freet as group-associated.
	AttachGroupPost(ctx context.Context, groupID, freetID string) error

	// DetachGroupPost removes a freet from the group's post set and deletes
	// the freet. Detach is destructive, not a mere unlink.
	DetachGroupPost(ctx context.Context, groupID, freetID string) error

	// Close releases any resources held by the store.
	Close() error
}
