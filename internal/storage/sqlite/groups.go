package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fritter-app/fritter/internal/models"
)

// CreateGroup inserts a group with its founding membership row.
// The creator is stored as a member with the admin role set.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, is_private, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.IsPrivate, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return models.ErrConflict("group name %s is already in use", group.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, memberID := range group.Members {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, is_admin) VALUES (?, ?, ?)",
			group.ID, memberID, group.HasAdmin(memberID),
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID, including members, admins, and posts.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, is_private, created_at FROM groups WHERE id = ?",
		id,
	).Scan(&group.ID, &group.Name, &group.IsPrivate, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound("group %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	if err := s.loadGroupSets(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// GetGroupByName retrieves a group by name (case-insensitive exact match).
func (s *SQLiteStore) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, is_private, created_at FROM groups WHERE name = ?",
		name,
	).Scan(&group.ID, &group.Name, &group.IsPrivate, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound("group %s does not exist", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group by name: %w", err)
	}

	if err := s.loadGroupSets(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByMember returns all groups the user belongs to, newest name first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.listGroups(ctx,
		`SELECT g.id, g.name, g.is_private, g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ?
		 ORDER BY g.name DESC`,
		userID,
	)
}

// ListGroupsByAdmin returns all groups the user administers, newest name first.
func (s *SQLiteStore) ListGroupsByAdmin(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.listGroups(ctx,
		`SELECT g.id, g.name, g.is_private, g.created_at
		 FROM groups g
		 JOIN group_members gm ON gm.group_id = g.id
		 WHERE gm.user_id = ? AND gm.is_admin
		 ORDER BY g.name DESC`,
		userID,
	)
}

func (s *SQLiteStore) listGroups(ctx context.Context, query, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.IsPrivate, &group.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	for _, group := range groups {
		if err := s.loadGroupSets(ctx, group); err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// loadGroupSets fills the member, administrator, and post id lists of a group.
func (s *SQLiteStore) loadGroupSets(ctx context.Context, group *models.Group) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, is_admin FROM group_members WHERE group_id = ? ORDER BY rowid",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var isAdmin bool
		if err := rows.Scan(&userID, &isAdmin); err != nil {
			return fmt.Errorf("failed to scan group member: %w", err)
		}
		group.Members = append(group.Members, userID)
		if isAdmin {
			group.Administrators = append(group.Administrators, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate group members: %w", err)
	}

	postRows, err := s.db.QueryContext(ctx,
		"SELECT freet_id FROM group_posts WHERE group_id = ? ORDER BY rowid",
		group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get group posts: %w", err)
	}
	defer postRows.Close()

	for postRows.Next() {
		var freetID string
		if err := postRows.Scan(&freetID); err != nil {
			return fmt.Errorf("failed to scan group post: %w", err)
		}
		group.Posts = append(group.Posts, freetID)
	}
	if err := postRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate group posts: %w", err)
	}
	return nil
}

// DeleteGroup removes a group and every freet it owns.
// Owned freets are deleted before the group row so a partial failure leaves
// an orphaned group rather than dangling post references.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM freets WHERE id IN (SELECT freet_id FROM group_posts WHERE group_id = ?)",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete group freets: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound("group %s does not exist", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// AddGroupMember appends a user to the group's member set.
// The insert is atomic on the (group_id, user_id) primary key: concurrent
// adds of the same user can never write the id twice, and the duplicate is
// reported as a conflict.
func (s *SQLiteStore) AddGroupMember(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, is_admin) VALUES (?, ?, 0)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to add group member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrConflict("user %s is already a member of the group", userID)
	}
	return nil
}

// PromoteGroupAdmin marks an existing member as administrator. A user without
// a membership row cannot be promoted, which keeps administrators a subset of
// members at the schema level.
func (s *SQLiteStore) PromoteGroupAdmin(ctx context.Context, groupID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE group_members SET is_admin = 1 WHERE group_id = ? AND user_id = ? AND NOT is_admin",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to promote group admin: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrConflict("user %s is already an admin or not a member of the group", userID)
	}
	return nil
}

// SetGroupPrivacy updates the group's privacy flag.
func (s *SQLiteStore) SetGroupPrivacy(ctx context.Context, groupID string, isPrivate bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE groups SET is_private = ? WHERE id = ?",
		isPrivate, groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group privacy: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound("group %s does not exist", groupID)
	}
	return nil
}

// AttachGroupPost appends a freet to the group's post set and marks the freet
// as group-associated, in one transaction.
func (s *SQLiteStore) AttachGroupPost(ctx context.Context, groupID, freetID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO group_posts (group_id, freet_id) VALUES (?, ?)
		 ON CONFLICT (group_id, freet_id) DO NOTHING`,
		groupID, freetID,
	)
	if err != nil {
		return fmt.Errorf("failed to attach group post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrConflict("freet %s is already in the group", freetID)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE freets SET in_group = 1 WHERE id = ?", freetID); err != nil {
		return fmt.Errorf("failed to mark freet in group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DetachGroupPost removes a freet from the group's post set and deletes the
// freet itself. The two steps share a transaction.
func (s *SQLiteStore) DetachGroupPost(ctx context.Context, groupID, freetID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"DELETE FROM group_posts WHERE group_id = ? AND freet_id = ?",
		groupID, freetID,
	)
	if err != nil {
		return fmt.Errorf("failed to detach group post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrConflict("freet %s is not in the group", freetID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM freets WHERE id = ?", freetID); err != nil {
		return fmt.Errorf("failed to delete freet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
