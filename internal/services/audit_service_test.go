package services

import (
	"context"
	"testing"
	"time"

	"stockdesk/internal/models"
	"stockdesk/internal/session"
	"stockdesk/internal/testutil"
)

func TestNormalizeKind(t *testing.T) {
	tests := []struct {
		in   string
		want models.AuditKind
	}{
		{"input", models.AuditInput},
		{" OUTPUT ", models.AuditOutput},
		{"consulta", models.AuditQuery},
		{"alteração", models.AuditMutation},
		{"alteracao", models.AuditMutation},
		{"delete", models.AuditQuery},
		{"", models.AuditQuery},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeKind(tt.in); got != tt.want {
				t.Errorf("NormalizeKind(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuditRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("stores_user_and_normalized_kind", func(t *testing.T) {
		db, _, audit := setup(t)
		user := testutil.CreateTestUser(t, db)

		audit.Record(ctx, testutil.Identity(user), "Inventory", models.AuditKind("export-ish"))

		var entry models.AuditLog
		testutil.AssertNoError(t, db.First(&entry).Error)
		if entry.Username == nil || *entry.Username != user.Username {
			t.Errorf("expected username %s, got %v", user.Username, entry.Username)
		}
		if entry.Kind != models.AuditQuery {
			t.Errorf("expected unknown kind to become consulta, got %s", entry.Kind)
		}
		if entry.CreatedAt.IsZero() {
			t.Error("expected created_at to be set")
		}
	})

	t.Run("anonymous_actor_has_null_user", func(t *testing.T) {
		db, _, audit := setup(t)

		audit.Record(ctx, session.Anonymous, "Login", models.AuditInput)

		var entry models.AuditLog
		testutil.AssertNoError(t, db.First(&entry).Error)
		if entry.Username != nil {
			t.Errorf("expected null username, got %q", *entry.Username)
		}
	})

	t.Run("filters_by_transaction", func(t *testing.T) {
		db, _, audit := setup(t)
		user := testutil.CreateTestUser(t, db)
		actor := testutil.Identity(user)

		audit.Record(ctx, actor, TxBlockedItems, models.AuditInput)
		audit.Record(ctx, actor, TxSupplyRoom, models.AuditQuery)
		audit.Record(ctx, actor, TxBlockedItems, models.AuditMutation)

		kinds := auditKinds(t, db, TxBlockedItems)
		if len(kinds) != 2 || kinds[0] != models.AuditInput || kinds[1] != models.AuditMutation {
			t.Errorf("expected [input alteração], got %v", kinds)
		}

		var n int64
		testutil.AssertNoError(t, db.Raw("SELECT COUNT(*) FROM audit_logs WHERE transaction_name = ?", TxSupplyRoom).Scan(&n).Error)
		if n != 1 {
			t.Errorf("expected 1 %s entry, got %d", TxSupplyRoom, n)
		}
	})

	t.Run("failure_is_swallowed", func(t *testing.T) {
		db, _, audit := setup(t)
		testutil.AssertNoError(t, db.Migrator().DropTable(&models.AuditLog{}))

		// Must not panic or report anything to the caller.
		audit.Record(ctx, session.Anonymous, "Anything", models.AuditInput)
	})
}

func TestAuditListRecent(t *testing.T) {
	ctx := context.Background()

	t.Run("newest_first_with_default_limit", func(t *testing.T) {
		db, _, audit := setup(t)
		base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
		for i := 0; i < 12; i++ {
			entry := &models.AuditLog{
				Base:        models.Base{CreatedAt: base.Add(time.Duration(i) * time.Minute)},
				Transaction: "T",
				Kind:        models.AuditInput,
			}
			testutil.AssertNoError(t, db.Create(entry).Error)
		}

		entries, err := audit.ListRecent(ctx, 0)
		testutil.AssertNoError(t, err)
		if len(entries) != DefaultAuditLimit {
			t.Fatalf("expected %d entries, got %d", DefaultAuditLimit, len(entries))
		}
		for i := 1; i < len(entries); i++ {
			if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
				t.Fatalf("entries not in descending order at %d", i)
			}
		}
		if !entries[0].CreatedAt.Equal(base.Add(11 * time.Minute)) {
			t.Errorf("expected the latest entry first, got %s", entries[0].CreatedAt)
		}
	})

	t.Run("explicit_limit", func(t *testing.T) {
		db, _, audit := setup(t)
		user := testutil.CreateTestUser(t, db)
		for i := 0; i < 3; i++ {
			audit.Record(ctx, testutil.Identity(user), "T", models.AuditQuery)
		}

		entries, err := audit.ListRecent(ctx, 2)
		testutil.AssertNoError(t, err)
		if len(entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(entries))
		}
	})
}
