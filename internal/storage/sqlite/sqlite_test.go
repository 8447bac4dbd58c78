package sqlite

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/fritter-app/fritter/internal/models"
)

// newTestStore creates a store over a temp database file.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func mustCreateFreet(t *testing.T, store *SQLiteStore, authorID, content string) *models.Freet {
	t.Helper()
	freet := models.NewFreet(authorID, content)
	if err := store.CreateFreet(context.Background(), freet); err != nil {
		t.Fatalf("CreateFreet failed: %v", err)
	}
	return freet
}

func mustCreateGroup(t *testing.T, store *SQLiteStore, name, creatorID string, isPrivate bool) *models.Group {
	t.Helper()
	group := models.NewGroup(name, creatorID, isPrivate)
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup(%s) failed: %v", name, err)
	}
	return group
}

func TestCreateUser_DuplicateUsernameCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	mustCreateUser(t, store, "Alice")

	err := store.CreateUser(context.Background(), models.NewUser("alice", "hash"))
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestGetUserByUsername_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	created := mustCreateUser(t, store, "Bob")

	user, err := store.GetUserByUsername(context.Background(), "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("expected user %s, got %s", created.ID, user.ID)
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetGroup(context.Background(), "nonexistent-id")
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreateGroup_FounderIsMemberAndAdmin(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	created := mustCreateGroup(t, store, "Research", founder.ID, true)

	group, err := store.GetGroup(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(group.Members) != 1 || group.Members[0] != founder.ID {
		t.Errorf("members: expected [%s], got %v", founder.ID, group.Members)
	}
	if len(group.Administrators) != 1 || group.Administrators[0] != founder.ID {
		t.Errorf("administrators: expected [%s], got %v", founder.ID, group.Administrators)
	}
	if !group.IsPrivate {
		t.Error("expected private group")
	}
}

func TestCreateGroup_DuplicateNameCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	mustCreateGroup(t, store, "team", founder.ID, false)

	err := store.CreateGroup(context.Background(), models.NewGroup("Team", founder.ID, false))
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestGetGroupByName_CaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	created := mustCreateGroup(t, store, "Book Club", founder.ID, false)

	group, err := store.GetGroupByName(context.Background(), "book club")
	if err != nil {
		t.Fatalf("GetGroupByName failed: %v", err)
	}
	if group.ID != created.ID {
		t.Errorf("expected group %s, got %s", created.ID, group.ID)
	}
}

func TestAddGroupMember_Duplicate(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	member := mustCreateUser(t, store, "member")
	group := mustCreateGroup(t, store, "g", founder.ID, false)

	if err := store.AddGroupMember(context.Background(), group.ID, member.ID); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}

	// A repeated add must be rejected, never written twice.
	err := store.AddGroupMember(context.Background(), group.ID, member.ID)
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	reloaded, err := store.GetGroup(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(reloaded.Members) != 2 {
		t.Errorf("members: expected 2, got %d (%v)", len(reloaded.Members), reloaded.Members)
	}
}

func TestPromoteGroupAdmin(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	member := mustCreateUser(t, store, "member")
	group := mustCreateGroup(t, store, "g", founder.ID, false)

	if err := store.AddGroupMember(context.Background(), group.ID, member.ID); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}
	if err := store.PromoteGroupAdmin(context.Background(), group.ID, member.ID); err != nil {
		t.Fatalf("PromoteGroupAdmin failed: %v", err)
	}

	reloaded, err := store.GetGroup(context.Background(), group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if !reloaded.HasAdmin(member.ID) {
		t.Error("expected member to be admin after promotion")
	}

	// Admins must remain a subset of members.
	for _, adminID := range reloaded.Administrators {
		if !reloaded.HasMember(adminID) {
			t.Errorf("admin %s is not a member", adminID)
		}
	}

	// Promoting again is a conflict.
	err = store.PromoteGroupAdmin(context.Background(), group.ID, member.ID)
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestListGroupsByMemberAndAdmin(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	member := mustCreateUser(t, store, "member")
	group := mustCreateGroup(t, store, "g", founder.ID, false)
	mustCreateGroup(t, store, "other", member.ID, false)

	if err := store.AddGroupMember(context.Background(), group.ID, member.ID); err != nil {
		t.Fatalf("AddGroupMember failed: %v", err)
	}

	memberOf, err := store.ListGroupsByMember(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("ListGroupsByMember failed: %v", err)
	}
	if len(memberOf) != 2 {
		t.Errorf("member groups: expected 2, got %d", len(memberOf))
	}

	adminOf, err := store.ListGroupsByAdmin(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("ListGroupsByAdmin failed: %v", err)
	}
	if len(adminOf) != 1 {
		t.Errorf("admin groups: expected 1, got %d", len(adminOf))
	}
}

func TestAttachGroupPost_MarksFreetAndRejectsDuplicate(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	group := mustCreateGroup(t, store, "g", founder.ID, false)
	freet := mustCreateFreet(t, store, founder.ID, "hello")

	if err := store.AttachGroupPost(context.Background(), group.ID, freet.ID); err != nil {
		t.Fatalf("AttachGroupPost failed: %v", err)
	}

	reloaded, err := store.GetFreet(context.Background(), freet.ID)
	if err != nil {
		t.Fatalf("GetFreet failed: %v", err)
	}
	if !reloaded.InGroup {
		t.Error("expected freet to be marked in group")
	}

	err = store.AttachGroupPost(context.Background(), group.ID, freet.ID)
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestDetachGroupPost_DeletesFreet(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	group := mustCreateGroup(t, store, "g", founder.ID, false)
	freet := mustCreateFreet(t, store, founder.ID, "hello")

	if err := store.AttachGroupPost(context.Background(), group.ID, freet.ID); err != nil {
		t.Fatalf("AttachGroupPost failed: %v", err)
	}
	if err := store.DetachGroupPost(context.Background(), group.ID, freet.ID); err != nil {
		t.Fatalf("DetachGroupPost failed: %v", err)
	}

	// Detach is destructive: the freet is gone, not just unlinked.
	_, err := store.GetFreet(context.Background(), freet.ID)
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	err = store.DetachGroupPost(context.Background(), group.ID, freet.ID)
	var conflict *models.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected conflict error for unattached freet, got %v", err)
	}
}

func TestDeleteGroup_CascadesFreets(t *testing.T) {
	store := newTestStore(t)
	founder := mustCreateUser(t, store, "founder")
	group := mustCreateGroup(t, store, "g", founder.ID, false)

	var freetIDs []string
	for _, content := range []string{"one", "two", "three"} {
		freet := mustCreateFreet(t, store, founder.ID, content)
		if err := store.AttachGroupPost(context.Background(), group.ID, freet.ID); err != nil {
			t.Fatalf("AttachGroupPost failed: %v", err)
		}
		freetIDs = append(freetIDs, freet.ID)
	}

	if err := store.DeleteGroup(context.Background(), group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	var notFound *models.NotFoundError
	if _, err := store.GetGroup(context.Background(), group.ID); !errors.As(err, &notFound) {
		t.Fatalf("expected group to be gone, got %v", err)
	}
	for _, id := range freetIDs {
		if _, err := store.GetFreet(context.Background(), id); !errors.As(err, &notFound) {
			t.Errorf("expected freet %s to be gone, got %v", id, err)
		}
	}
}

func TestDeleteGroup_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteGroup(context.Background(), "nonexistent-id")
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
