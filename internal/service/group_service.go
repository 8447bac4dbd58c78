package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/fritter-app/fritter/internal/models"
	"github.com/fritter-app/fritter/internal/storage"
)

// GroupService implements the group membership and privacy operations.
//
// Every operation runs an ordered chain of checks over the loaded group and
// the caller; the first failing check determines the reported error, so the
// chain order below is part of the API contract.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// loadGroup fetches the group for an operation. An empty id is a validation
// failure; an unknown id is not found. This is the leading check of every
// group-scoped chain.
func (s *GroupService) loadGroup(ctx context.Context, groupID string) (*models.Group, error) {
	if strings.TrimSpace(groupID) == "" {
		return nil, models.ErrValidation("group id must be nonempty")
	}
	return s.store.GetGroup(ctx, groupID)
}

// userExists fails unless the target user id belongs to an account.
func (s *GroupService) userExists(ctx context.Context, userID string) check {
	return func() error {
		_, err := s.store.GetUserByID(ctx, userID)
		return err
	}
}

// freetExists fails unless the freet id belongs to a freet.
func (s *GroupService) freetExists(ctx context.Context, freetID string) check {
	return func() error {
		_, err := s.store.GetFreet(ctx, freetID)
		return err
	}
}

func groupVisibleTo(group *models.Group, caller Caller) check {
	return func() error {
		if !group.VisibleTo(caller.UserID) {
			return models.ErrForbidden("you must be a member of this group to view it")
		}
		return nil
	}
}

func callerIsMember(group *models.Group, caller Caller) check {
	return func() error {
		if !group.HasMember(caller.UserID) {
			return models.ErrForbidden("you must be a member of this group")
		}
		return nil
	}
}

func callerIsAdmin(group *models.Group, caller Caller) check {
	return func() error {
		if !group.HasAdmin(caller.UserID) {
			return models.ErrForbidden("you must be an admin of this group")
		}
		return nil
	}
}

// parsePrivacyFlag accepts exactly the literals "true" and "false"; blank is
// returned as such for the operation to interpret. Anything else is a failed
// precondition.
func parsePrivacyFlag(value string) (isPrivate, blank bool, err error) {
	switch strings.TrimSpace(value) {
	case "true":
		return true, false, nil
	case "false":
		return false, false, nil
	case "":
		return false, true, nil
	default:
		return false, false, models.ErrPrecondition("privacy setting must be a boolean value true or false")
	}
}

// Get returns the group detail if it is visible to the caller.
// Chain: group exists, caller authenticated, group visible to caller.
func (s *GroupService) Get(ctx context.Context, caller Caller, groupID string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := runChecks(
		requireAuthenticated(caller),
		groupVisibleTo(group, caller),
	); err != nil {
		return nil, err
	}
	return group, nil
}

// ListByMember returns the groups the caller belongs to.
func (s *GroupService) ListByMember(ctx context.Context, caller Caller) ([]*models.Group, error) {
	if err := runChecks(requireAuthenticated(caller)); err != nil {
		return nil, err
	}
	return s.store.ListGroupsByMember(ctx, caller.UserID)
}

// ListByAdmin returns the groups the caller administers.
func (s *GroupService) ListByAdmin(ctx context.Context, caller Caller) ([]*models.Group, error) {
	if err := runChecks(requireAuthenticated(caller)); err != nil {
		return nil, err
	}
	return s.store.ListGroupsByAdmin(ctx, caller.UserID)
}

// Create makes a new group with the caller as sole member and administrator.
// Chain: caller authenticated, name nonempty, name not in use, privacy flag
// valid. A blank privacy flag means public.
func (s *GroupService) Create(ctx context.Context, caller Caller, name, privacy string) (*models.Group, error) {
	if err := runChecks(
		requireAuthenticated(caller),
		func() error {
			if strings.TrimSpace(name) == "" {
				return models.ErrValidation("group name must be nonempty")
			}
			return nil
		},
		func() error {
			_, err := s.store.GetGroupByName(ctx, name)
			if err == nil {
				return models.ErrConflict("group name %s is already in use", name)
			}
			var notFound *models.NotFoundError
			if errors.As(err, &notFound) {
				return nil
			}
			return err
		},
	); err != nil {
		return nil, err
	}

	isPrivate, _, err := parsePrivacyFlag(privacy)
	if err != nil {
		return nil, err
	}

	group := models.NewGroup(strings.TrimSpace(name), caller.UserID, isPrivate)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	slog.Info("group created",
		"group_id", group.ID,
		"name", group.Name,
		"creator", caller.UserID,
		"is_private", group.IsPrivate,
	)
	return group, nil
}

// Delete removes a group and every freet it owns.
// Chain: group exists, caller authenticated, caller is admin.
func (s *GroupService) Delete(ctx context.Context, caller Caller, groupID string) error {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if err := runChecks(
		requireAuthenticated(caller),
		callerIsAdmin(group, caller),
	); err != nil {
		return err
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		return err
	}

	slog.Info("group deleted",
		"group_id", group.ID,
		"cascaded_freets", len(group.Posts),
		"deleted_by", caller.UserID,
	)
	return nil
}

// SetPrivacy updates the group's privacy flag.
// Chain: group exists, caller authenticated, caller is admin, flag present
// and valid. A blank flag requests no update and fails the precondition.
func (s *GroupService) SetPrivacy(ctx context.Context, caller Caller, groupID, privacy string, present bool) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := runChecks(
		requireAuthenticated(caller),
		callerIsAdmin(group, caller),
		func() error {
			if !present {
				return models.ErrValidation("privacy setting must be present")
			}
			return nil
		},
	); err != nil {
		return nil, err
	}

	isPrivate, blank, err := parsePrivacyFlag(privacy)
	if err != nil {
		return nil, err
	}
	if blank {
		return nil, models.ErrPrecondition("no update provided for the privacy setting")
	}

	if err := s.store.SetGroupPrivacy(ctx, group.ID, isPrivate); err != nil {
		return nil, err
	}

	slog.Info("group privacy updated",
		"group_id", group.ID,
		"is_private", isPrivate,
		"updated_by", caller.UserID,
	)
	return s.store.GetGroup(ctx, group.ID)
}

// AddMember adds a user to the group's member set.
//
// With an empty targetUserID the caller joins themselves:
// group exists, caller authenticated, group is public, caller not already a
// member. Otherwise the caller adds the target: group exists, target id
// well-formed, target exists, group joinable by the caller (admin required
// when private), target not already a member.
func (s *GroupService) AddMember(ctx context.Context, caller Caller, groupID, targetUserID string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var chain []check
	userID := targetUserID
	if targetUserID == "" {
		userID = caller.UserID
		chain = []check{
			requireAuthenticated(caller),
			func() error {
				if !group.SelfJoinable() {
					return models.ErrForbidden("this group is private; an admin must add you")
				}
				return nil
			},
			func() error {
				if group.HasMember(caller.UserID) {
					return models.ErrConflict("you are already a member of this group")
				}
				return nil
			},
		}
	} else {
		chain = []check{
			validUserID(targetUserID),
			s.userExists(ctx, targetUserID),
			requireAuthenticated(caller),
			func() error {
				if group.RequiresAdminToAdd() && !group.HasAdmin(caller.UserID) {
					return models.ErrForbidden("only an admin may add members to a private group")
				}
				return nil
			},
			func() error {
				if group.HasMember(targetUserID) {
					return models.ErrConflict("user %s is already a member of the group", targetUserID)
				}
				return nil
			},
		}
	}
	if err := runChecks(chain...); err != nil {
		return nil, err
	}

	if err := s.store.AddGroupMember(ctx, group.ID, userID); err != nil {
		return nil, err
	}

	slog.Info("group member added",
		"group_id", group.ID,
		"user_id", userID,
		"added_by", caller.UserID,
	)
	return s.store.GetGroup(ctx, group.ID)
}

// PromoteAdmin marks an existing member as administrator.
// Chain: group exists, target id well-formed, target exists, caller is admin,
// target is a member, target not already an admin.
func (s *GroupService) PromoteAdmin(ctx context.Context, caller Caller, groupID, targetUserID string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := runChecks(
		validUserID(targetUserID),
		s.userExists(ctx, targetUserID),
		requireAuthenticated(caller),
		callerIsAdmin(group, caller),
		func() error {
			if !group.HasMember(targetUserID) {
				return models.ErrForbidden("user %s must be a member of the group", targetUserID)
			}
			return nil
		},
		func() error {
			if group.HasAdmin(targetUserID) {
				return models.ErrConflict("user %s is already an admin of the group", targetUserID)
			}
			return nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.store.PromoteGroupAdmin(ctx, group.ID, targetUserID); err != nil {
		return nil, err
	}

	slog.Info("group admin promoted",
		"group_id", group.ID,
		"user_id", targetUserID,
		"promoted_by", caller.UserID,
	)
	return s.store.GetGroup(ctx, group.ID)
}

// AttachPost shares a freet into the group and marks it group-associated.
// Chain: group exists, caller authenticated, caller is member, freet id
// well-formed, freet exists, freet not already in the group.
func (s *GroupService) AttachPost(ctx context.Context, caller Caller, groupID, freetID string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := runChecks(
		requireAuthenticated(caller),
		callerIsMember(group, caller),
		validFreetID(freetID),
		s.freetExists(ctx, freetID),
		func() error {
			if group.HasPost(freetID) {
				return models.ErrConflict("freet %s is already in the group", freetID)
			}
			return nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.store.AttachGroupPost(ctx, group.ID, freetID); err != nil {
		return nil, err
	}

	slog.Info("group post attached",
		"group_id", group.ID,
		"freet_id", freetID,
		"attached_by", caller.UserID,
	)
	return s.store.GetGroup(ctx, group.ID)
}

// DetachPost removes a freet from the group and deletes it. Detach is
// destructive: the freet cannot be re-attached elsewhere afterwards.
// Chain: group exists, caller authenticated, freet id well-formed, freet
// exists, freet currently in the group.
func (s *GroupService) DetachPost(ctx context.Context, caller Caller, groupID, freetID string) (*models.Group, error) {
	group, err := s.loadGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := runChecks(
		requireAuthenticated(caller),
		validFreetID(freetID),
		s.freetExists(ctx, freetID),
		func() error {
			if !group.HasPost(freetID) {
				return models.ErrConflict("freet %s is not in the group", freetID)
			}
			return nil
		},
	); err != nil {
		return nil, err
	}

	if err := s.store.DetachGroupPost(ctx, group.ID, freetID); err != nil {
		return nil, err
	}

	slog.Info("group post detached",
		"group_id", group.ID,
		"freet_id", freetID,
		"detached_by", caller.UserID,
	)
	return s.store.GetGroup(ctx, group.ID)
}
