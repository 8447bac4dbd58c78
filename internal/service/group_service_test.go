package service

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/fritter-app/fritter/internal/models"
	"github.com/fritter-app/fritter/internal/storage"
	"github.com/fritter-app/fritter/internal/storage/sqlite"
)

// newTestService creates a GroupService over a temp SQLite store.
func newTestService(t *testing.T) (storage.Store, *GroupService) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	t.Cleanup(func() {
		store.Close()
		os.Remove(tmpFile.Name())
	})

	return store, NewGroupService(store)
}

func newUser(t *testing.T, store storage.Store, username string) *models.User {
	t.Helper()
	user := models.NewUser(username, "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", username, err)
	}
	return user
}

func as(user *models.User) Caller {
	return Caller{UserID: user.ID, Authenticated: true}
}

var anonymous = Caller{}

func wantNotFound(t *testing.T, err error) {
	t.Helper()
	var kind *models.NotFoundError
	if !errors.As(err, &kind) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func wantForbidden(t *testing.T, err error) {
	t.Helper()
	var kind *models.ForbiddenError
	if !errors.As(err, &kind) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func wantValidation(t *testing.T, err error) {
	t.Helper()
	var kind *models.ValidationError
	if !errors.As(err, &kind) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func wantConflict(t *testing.T, err error) {
	t.Helper()
	var kind *models.ConflictError
	if !errors.As(err, &kind) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func wantPrecondition(t *testing.T, err error) {
	t.Helper()
	var kind *models.PreconditionError
	if !errors.As(err, &kind) {
		t.Fatalf("expected precondition error, got %v", err)
	}
}

func TestCreate(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")

	group, err := svc.Create(context.Background(), as(founder), "Research", "true")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if group.Name != "Research" {
		t.Errorf("name: expected 'Research', got '%s'", group.Name)
	}
	if !group.IsPrivate {
		t.Error("expected private group")
	}
	if len(group.Members) != 1 || !group.HasMember(founder.ID) {
		t.Errorf("expected founder to be sole member, got %v", group.Members)
	}
	if len(group.Administrators) != 1 || !group.HasAdmin(founder.ID) {
		t.Errorf("expected founder to be sole admin, got %v", group.Administrators)
	}
}

func TestCreate_Failures(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	ctx := context.Background()

	_, err := svc.Create(ctx, anonymous, "g", "false")
	wantForbidden(t, err)

	_, err = svc.Create(ctx, as(founder), "   ", "false")
	wantValidation(t, err)

	if _, err := svc.Create(ctx, as(founder), "team", "false"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err = svc.Create(ctx, as(founder), "Team", "false")
	wantConflict(t, err)

	_, err = svc.Create(ctx, as(founder), "another", "yes")
	wantPrecondition(t, err)
}

func TestCreate_BlankPrivacyDefaultsToPublic(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")

	group, err := svc.Create(context.Background(), as(founder), "open", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if group.IsPrivate {
		t.Error("expected blank privacy flag to mean public")
	}
}

func TestGet_Visibility(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	stranger := newUser(t, store, "stranger")
	ctx := context.Background()

	private, err := svc.Create(ctx, as(founder), "secret", "true")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	public, err := svc.Create(ctx, as(founder), "open", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Private group detail is hidden from non-members.
	_, err = svc.Get(ctx, as(stranger), private.ID)
	wantForbidden(t, err)

	// But visible to members.
	if _, err := svc.Get(ctx, as(founder), private.ID); err != nil {
		t.Fatalf("Get by member failed: %v", err)
	}

	// Public group detail is visible to any authenticated caller.
	if _, err := svc.Get(ctx, as(stranger), public.ID); err != nil {
		t.Fatalf("Get of public group failed: %v", err)
	}
}

func TestGet_CheckOrder(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(founder), "g", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// "group exists" runs before "caller authenticated": an anonymous
	// request for a missing group sees 404, not 403.
	_, err = svc.Get(ctx, anonymous, "nonexistent-id")
	wantNotFound(t, err)

	_, err = svc.Get(ctx, anonymous, group.ID)
	wantForbidden(t, err)

	_, err = svc.Get(ctx, anonymous, "  ")
	wantValidation(t, err)
}

func TestAddMember_SelfJoin(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	joiner := newUser(t, store, "joiner")
	ctx := context.Background()

	public, err := svc.Create(ctx, as(founder), "open", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	private, err := svc.Create(ctx, as(founder), "secret", "true")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	group, err := svc.AddMember(ctx, as(joiner), public.ID, "")
	if err != nil {
		t.Fatalf("self-join of public group failed: %v", err)
	}
	if !group.HasMember(joiner.ID) {
		t.Error("expected joiner to be a member")
	}
	if group.HasAdmin(joiner.ID) {
		t.Error("joining must not grant admin")
	}

	// Joining again is a conflict, not a silent no-op.
	_, err = svc.AddMember(ctx, as(joiner), public.ID, "")
	wantConflict(t, err)

	// A private group is not self-joinable.
	_, err = svc.AddMember(ctx, as(joiner), private.ID, "")
	wantForbidden(t, err)

	_, err = svc.AddMember(ctx, anonymous, public.ID, "")
	wantForbidden(t, err)
}

func TestAddMember_ByAdmin(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	target := newUser(t, store, "target")
	outsider := newUser(t, store, "outsider")
	ctx := context.Background()

	private, err := svc.Create(ctx, as(founder), "secret", "true")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Only an admin may add members to a private group.
	_, err = svc.AddMember(ctx, as(outsider), private.ID, target.ID)
	wantForbidden(t, err)

	group, err := svc.AddMember(ctx, as(founder), private.ID, target.ID)
	if err != nil {
		t.Fatalf("admin add failed: %v", err)
	}
	if !group.HasMember(target.ID) {
		t.Error("expected target to be a member")
	}

	_, err = svc.AddMember(ctx, as(founder), private.ID, target.ID)
	wantConflict(t, err)

	// Malformed target ids are rejected before existence is checked.
	_, err = svc.AddMember(ctx, as(founder), private.ID, "not-a-uuid")
	wantValidation(t, err)

	_, err = svc.AddMember(ctx, as(founder), private.ID, "4fd95bc2-47f3-4b4a-b1a5-2e4a14f4d3a8")
	wantNotFound(t, err)
}

func TestPromoteAdmin(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	member := newUser(t, store, "member")
	outsider := newUser(t, store, "outsider")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(founder), "g", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A non-member cannot be promoted.
	_, err = svc.PromoteAdmin(ctx, as(founder), group.ID, outsider.ID)
	wantForbidden(t, err)

	if _, err := svc.AddMember(ctx, as(founder), group.ID, member.ID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	// Only admins may promote.
	_, err = svc.PromoteAdmin(ctx, as(member), group.ID, member.ID)
	wantForbidden(t, err)

	promoted, err := svc.PromoteAdmin(ctx, as(founder), group.ID, member.ID)
	if err != nil {
		t.Fatalf("PromoteAdmin failed: %v", err)
	}
	if !promoted.HasAdmin(member.ID) {
		t.Error("expected member to be admin")
	}

	_, err = svc.PromoteAdmin(ctx, as(founder), group.ID, member.ID)
	wantConflict(t, err)

	// Admins stay a subset of members after every mutation.
	for _, adminID := range promoted.Administrators {
		if !promoted.HasMember(adminID) {
			t.Errorf("admin %s is not a member", adminID)
		}
	}
}

func TestSetPrivacy(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	member := newUser(t, store, "member")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(founder), "g", "true")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.AddMember(ctx, as(founder), group.ID, member.ID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	// Members without admin rights cannot flip privacy.
	_, err = svc.SetPrivacy(ctx, as(member), group.ID, "false", true)
	wantForbidden(t, err)

	// The flag must be present, valid, and non-blank.
	_, err = svc.SetPrivacy(ctx, as(founder), group.ID, "", false)
	wantValidation(t, err)
	_, err = svc.SetPrivacy(ctx, as(founder), group.ID, "maybe", true)
	wantPrecondition(t, err)
	_, err = svc.SetPrivacy(ctx, as(founder), group.ID, "  ", true)
	wantPrecondition(t, err)

	updated, err := svc.SetPrivacy(ctx, as(founder), group.ID, "false", true)
	if err != nil {
		t.Fatalf("SetPrivacy failed: %v", err)
	}
	if updated.IsPrivate {
		t.Error("expected group to be public after update")
	}
}

func TestAttachAndDetachPost(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	stranger := newUser(t, store, "stranger")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(founder), "g", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	freet := models.NewFreet(founder.ID, "hello")
	if err := store.CreateFreet(ctx, freet); err != nil {
		t.Fatalf("CreateFreet failed: %v", err)
	}

	// Only members may attach.
	_, err = svc.AttachPost(ctx, as(stranger), group.ID, freet.ID)
	wantForbidden(t, err)

	attached, err := svc.AttachPost(ctx, as(founder), group.ID, freet.ID)
	if err != nil {
		t.Fatalf("AttachPost failed: %v", err)
	}
	if !attached.HasPost(freet.ID) {
		t.Error("expected freet in group posts")
	}

	// Attachment marks the freet group-associated.
	reloaded, err := store.GetFreet(ctx, freet.ID)
	if err != nil {
		t.Fatalf("GetFreet failed: %v", err)
	}
	if !reloaded.InGroup {
		t.Error("expected freet marked in group")
	}

	_, err = svc.AttachPost(ctx, as(founder), group.ID, freet.ID)
	wantConflict(t, err)

	detached, err := svc.DetachPost(ctx, as(founder), group.ID, freet.ID)
	if err != nil {
		t.Fatalf("DetachPost failed: %v", err)
	}
	if detached.HasPost(freet.ID) {
		t.Error("expected freet removed from group posts")
	}

	// Detach deletes the freet outright.
	_, err = store.GetFreet(ctx, freet.ID)
	wantNotFound(t, err)

	// So a second detach reports the freet missing, not unattached.
	_, err = svc.DetachPost(ctx, as(founder), group.ID, freet.ID)
	wantNotFound(t, err)
}

func TestDetachPost_NotAttached(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(founder), "g", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	freet := models.NewFreet(founder.ID, "hello")
	if err := store.CreateFreet(ctx, freet); err != nil {
		t.Fatalf("CreateFreet failed: %v", err)
	}

	_, err = svc.DetachPost(ctx, as(founder), group.ID, freet.ID)
	wantConflict(t, err)
}

func TestDelete_Cascades(t *testing.T) {
	store, svc := newTestService(t)
	founder := newUser(t, store, "founder")
	member := newUser(t, store, "member")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(founder), "g", "false")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.AddMember(ctx, as(founder), group.ID, member.ID); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}

	var freetIDs []string
	for _, content := range []string{"one", "two"} {
		freet := models.NewFreet(founder.ID, content)
		if err := store.CreateFreet(ctx, freet); err != nil {
			t.Fatalf("CreateFreet failed: %v", err)
		}
		if _, err := svc.AttachPost(ctx, as(founder), group.ID, freet.ID); err != nil {
			t.Fatalf("AttachPost failed: %v", err)
		}
		freetIDs = append(freetIDs, freet.ID)
	}

	// Only admins may delete.
	err = svc.Delete(ctx, as(member), group.ID)
	wantForbidden(t, err)

	if err := svc.Delete(ctx, as(founder), group.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err = svc.Get(ctx, as(founder), group.ID)
	wantNotFound(t, err)
	for _, id := range freetIDs {
		_, err := store.GetFreet(ctx, id)
		wantNotFound(t, err)
	}
}

// TestMembershipLifecycle walks a private group from creation through
// admin-added membership, promotion, a privacy flip by the new admin, and a
// self-join once public.
func TestMembershipLifecycle(t *testing.T) {
	store, svc := newTestService(t)
	u1 := newUser(t, store, "u1")
	u2 := newUser(t, store, "u2")
	u3 := newUser(t, store, "u3")
	ctx := context.Background()

	group, err := svc.Create(ctx, as(u1), "Research", "true")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(group.Members) != 1 || len(group.Administrators) != 1 {
		t.Fatalf("expected u1 as sole member and admin, got %v / %v", group.Members, group.Administrators)
	}

	// u2 cannot join the private group on their own.
	_, err = svc.AddMember(ctx, as(u2), group.ID, "")
	wantForbidden(t, err)

	// Admin u1 adds u2: member, not admin.
	group, err = svc.AddMember(ctx, as(u1), group.ID, u2.ID)
	if err != nil {
		t.Fatalf("admin add failed: %v", err)
	}
	if !group.HasMember(u2.ID) || group.HasAdmin(u2.ID) {
		t.Fatalf("expected u2 member-only, got members=%v admins=%v", group.Members, group.Administrators)
	}

	// u1 promotes u2.
	group, err = svc.PromoteAdmin(ctx, as(u1), group.ID, u2.ID)
	if err != nil {
		t.Fatalf("PromoteAdmin failed: %v", err)
	}
	if !group.HasAdmin(u2.ID) {
		t.Fatal("expected u2 to be admin")
	}

	// u2, now admin, makes the group public.
	group, err = svc.SetPrivacy(ctx, as(u2), group.ID, "false", true)
	if err != nil {
		t.Fatalf("SetPrivacy failed: %v", err)
	}
	if group.IsPrivate {
		t.Fatal("expected group to be public")
	}

	// u3 can now self-join.
	group, err = svc.AddMember(ctx, as(u3), group.ID, "")
	if err != nil {
		t.Fatalf("self-join failed: %v", err)
	}
	if !group.HasMember(u3.ID) {
		t.Fatal("expected u3 to be a member")
	}
}
