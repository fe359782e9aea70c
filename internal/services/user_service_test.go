package services

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"stockdesk/internal/models"
	"stockdesk/internal/session"
	"stockdesk/internal/testutil"
)

var testKeys = RegistrationKeys{User: "user-key", Admin: "admin-key"}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("user_with_user_key", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		user, err := svc.Register(ctx, "  alice ", "secret", "USUARIO", "user-key")
		testutil.AssertNoError(t, err)

		if user.ID == 0 {
			t.Fatal("expected non-zero user ID")
		}
		if user.Username != "alice" {
			t.Errorf("expected trimmed username, got %q", user.Username)
		}
		if user.Role != session.RoleUser {
			t.Errorf("expected role USER, got %s", user.Role)
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret")) != nil {
			t.Error("expected the stored password to be a bcrypt hash of the secret")
		}
	})

	t.Run("legacy_admin_role", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		user, err := svc.Register(ctx, "carol", "secret", "ADM", "admin-key")
		testutil.AssertNoError(t, err)
		if user.Role != session.RoleAdministrator {
			t.Errorf("expected ADMINISTRATOR, got %s", user.Role)
		}
	})

	t.Run("admin_with_user_key_rejected", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		_, err := svc.Register(ctx, "mallory", "secret", "ADMINISTRADOR", "user-key")
		testutil.AssertAppError(t, err, "INVALID_API_KEY")
	})

	t.Run("unconfigured_key_rejects_everything", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, RegistrationKeys{User: "user-key"})

		_, err := svc.Register(ctx, "eve", "secret", "ADMINISTRATOR", "")
		testutil.AssertAppError(t, err, "INVALID_API_KEY")
	})

	t.Run("unknown_role", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		_, err := svc.Register(ctx, "bob", "secret", "GUEST", "user-key")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_username", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		_, err := svc.Register(ctx, "dup", "secret", "", "user-key")
		testutil.AssertNoError(t, err)
		_, err = svc.Register(ctx, "dup", "other", "", "user-key")
		testutil.AssertAppError(t, err, "DUPLICATE_USERNAME")
	})

	t.Run("empty_password", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		_, err := svc.Register(ctx, "bob", "", "", "user-key")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("success_sets_session", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		user := testutil.CreateTestAdmin(t, db)
		sess := session.New()

		ok, err := svc.Authenticate(ctx, sess, user.Username, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if !ok {
			t.Fatal("expected authentication to succeed")
		}
		cur := sess.Current()
		if cur.Username != user.Username || cur.UserID != user.ID || cur.Role != session.RoleAdministrator {
			t.Errorf("unexpected session identity %+v", cur)
		}
	})

	t.Run("wrong_password_leaves_session", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		user := testutil.CreateTestUser(t, db)
		sess := session.New()

		ok, err := svc.Authenticate(ctx, sess, user.Username, "wrong")
		testutil.AssertNoError(t, err)
		if ok {
			t.Fatal("expected authentication to fail")
		}
		if !sess.Current().IsAnonymous() {
			t.Error("expected session to stay anonymous")
		}
	})

	t.Run("unknown_user", func(t *testing.T) {
		_, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)

		ok, err := svc.Authenticate(ctx, session.New(), "ghost", "x")
		testutil.AssertNoError(t, err)
		if ok {
			t.Error("expected authentication to fail")
		}
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	db, store, audit := setup(t)
	svc := NewUserService(store, audit, testKeys)
	user := testutil.CreateTestUser(t, db)

	ok, err := svc.ChangePassword(ctx, user.Username, "wrong", "next")
	testutil.AssertMutation(t, ok, err, false)

	ok, err = svc.ChangePassword(ctx, user.Username, testutil.TestPassword, "next")
	testutil.AssertMutation(t, ok, err, true)

	ok, err = svc.Authenticate(ctx, session.New(), user.Username, "next")
	testutil.AssertNoError(t, err)
	if !ok {
		t.Error("expected the new password to work")
	}

	_, err = svc.ChangePassword(ctx, user.Username, "next", "")
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestAdminOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("non_admin_denied", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		_, err := svc.ListUsers(ctx, user, nil)
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
		_, err = svc.CreateUser(ctx, user, "x", "y", session.RoleUser)
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
		_, err = svc.AdminResetPassword(ctx, user, "x", "y")
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
		_, err = svc.DeleteUser(ctx, user, "x")
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
	})

	t.Run("list_users_sorted_and_filtered", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestUserWithRole(t, db, "zeta", session.RoleAdministrator)
		testutil.CreateTestUserWithRole(t, db, "beta", session.RoleUser)
		testutil.CreateTestUserWithRole(t, db, "alpha", session.RoleUser)

		users, err := svc.ListUsers(ctx, testutil.Identity(admin), nil)
		testutil.AssertNoError(t, err)
		if len(users) != 3 || users[0].Username != "alpha" || users[2].Username != "zeta" {
			t.Errorf("unexpected order %v", users)
		}

		role := session.RoleUser
		users, err = svc.ListUsers(ctx, testutil.Identity(admin), &role)
		testutil.AssertNoError(t, err)
		if len(users) != 2 {
			t.Errorf("expected 2 USER accounts, got %d", len(users))
		}
	})

	t.Run("create_user_without_key", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)

		user, err := svc.CreateUser(ctx, testutil.Identity(admin), "newbie", "pw", session.RoleUser)
		testutil.AssertNoError(t, err)
		if user.Role != session.RoleUser {
			t.Errorf("expected USER, got %s", user.Role)
		}
		if kinds := auditKinds(t, db, TxUsers); len(kinds) != 1 || kinds[0] != models.AuditInput {
			t.Errorf("expected one input audit entry, got %v", kinds)
		}
	})

	t.Run("reset_password_of_user", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)

		ok, err := svc.AdminResetPassword(ctx, testutil.Identity(admin), user.Username, "fresh")
		testutil.AssertMutation(t, ok, err, true)

		ok, err = svc.Authenticate(ctx, session.New(), user.Username, "fresh")
		testutil.AssertNoError(t, err)
		if !ok {
			t.Error("expected reset password to work")
		}
	})

	t.Run("reset_password_of_other_admin_denied", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)
		other := testutil.CreateTestAdmin(t, db)

		_, err := svc.AdminResetPassword(ctx, testutil.Identity(admin), other.Username, "fresh")
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")

		ok, err := svc.Authenticate(ctx, session.New(), other.Username, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if !ok {
			t.Error("other administrator's password must be unchanged")
		}
	})

	t.Run("reset_own_password_allowed", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)

		ok, err := svc.AdminResetPassword(ctx, testutil.Identity(admin), admin.Username, "fresh")
		testutil.AssertMutation(t, ok, err, true)
	})

	t.Run("reset_unknown_user", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)

		ok, err := svc.AdminResetPassword(ctx, testutil.Identity(admin), "ghost", "fresh")
		testutil.AssertMutation(t, ok, err, false)
	})

	t.Run("delete_user", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)
		user := testutil.CreateTestUser(t, db)

		ok, err := svc.DeleteUser(ctx, testutil.Identity(admin), user.Username)
		testutil.AssertMutation(t, ok, err, true)

		_, err = svc.GetUserByID(ctx, user.ID)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})

	t.Run("delete_admin_denied", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewUserService(store, audit, testKeys)
		admin := testutil.CreateTestAdmin(t, db)
		other := testutil.CreateTestAdmin(t, db)

		_, err := svc.DeleteUser(ctx, testutil.Identity(admin), other.Username)
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
		_, err = svc.DeleteUser(ctx, testutil.Identity(admin), admin.Username)
		testutil.AssertAppError(t, err, "PERMISSION_DENIED")
	})
}
