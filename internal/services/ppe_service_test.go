package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/testutil"
)

func validPPE(ref time.Time, items ...PPEItemInput) PPEIssueInput {
	return PPEIssueInput{
		Badge:         5150,
		Sector:        "produção",
		Shift:         models.ShiftFirst,
		FirstIssue:    true,
		ReferenceDate: ref,
		ApproverBadge: 77,
		Items:         items,
	}
}

func TestPPECreate(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2025, 3, 4, 15, 30, 0, 0, time.UTC)

	t.Run("catalog_fills_description_price_and_total", func(t *testing.T) {
		db, store, audit := setup(t)
		catalog := NewCatalogService(store, audit, 16, time.Minute)
		svc := NewPPEService(store, catalog, audit)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCatalogEntry(t, db, user, "LUV-01", "Luva nitrílica", "4.335")

		issue, err := svc.Create(ctx, testutil.Identity(user), validPPE(ref,
			PPEItemInput{Code: "LUV-01", Quantity: 3, Unit: "pares"},
		))
		testutil.AssertNoError(t, err)

		if !issue.ReferenceDate.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("reference date should be date-only, got %s", issue.ReferenceDate)
		}
		if issue.Sector != "PRODUÇÃO" {
			t.Errorf("expected upper-cased sector, got %q", issue.Sector)
		}
		if len(issue.Items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(issue.Items))
		}
		it := issue.Items[0]
		if it.Description != "Luva nitrílica" {
			t.Errorf("expected catalog description, got %q", it.Description)
		}
		if it.Unit == nil || *it.Unit != models.UnitPairs {
			t.Errorf("expected unit PARES, got %v", it.Unit)
		}
		if !it.LineTotal.Valid || !it.LineTotal.Decimal.Equal(decimal.RequireFromString("13.01")) {
			t.Errorf("expected total 13.01, got %v", it.LineTotal)
		}
	})

	t.Run("skips_invalid_lines_and_unknown_units", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewPPEService(store, nil, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		issue, err := svc.Create(ctx, user, validPPE(ref,
			PPEItemInput{Code: "", Description: "sem código", Quantity: 1},
			PPEItemInput{Code: "A", Description: "Capacete", Quantity: 0},
			PPEItemInput{Code: "B", Description: "Óculos", Quantity: 2, Unit: "caixa"},
		))
		testutil.AssertNoError(t, err)
		if len(issue.Items) != 1 || issue.Items[0].Code != "B" {
			t.Fatalf("expected only line B, got %+v", issue.Items)
		}
		if issue.Items[0].Unit != nil {
			t.Errorf("unknown unit should be dropped, got %q", *issue.Items[0].Unit)
		}
		if issue.Items[0].LineTotal.Valid {
			t.Error("no price means no total")
		}
	})

	t.Run("requires_a_valid_line", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewPPEService(store, nil, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		_, err := svc.Create(ctx, user, validPPE(ref, PPEItemInput{Code: "X", Quantity: 1}))
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		var count int64
		db.Model(&models.PPEIssue{}).Count(&count)
		if count != 0 {
			t.Errorf("no header should be written, got %d", count)
		}
	})

	t.Run("header_validation", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewPPEService(store, nil, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))
		line := PPEItemInput{Code: "A", Description: "Luva", Quantity: 1}

		in := validPPE(ref, line)
		in.Shift = "Noite"
		_, err := svc.Create(ctx, user, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		in = validPPE(time.Time{}, line)
		_, err = svc.Create(ctx, user, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		in = validPPE(ref, line)
		in.ApproverBadge = 0
		_, err = svc.Create(ctx, user, in)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestPPEQueries(t *testing.T) {
	ctx := context.Background()
	db, store, audit := setup(t)
	svc := NewPPEService(store, nil, audit)
	user := testutil.CreateTestUser(t, db)
	actor := testutil.Identity(user)

	older := testutil.CreateTestPPEIssue(t, db, user, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	newer := testutil.CreateTestPPEIssue(t, db, user, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC))
	testutil.CreateTestPPEIssue(t, db, user, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	t.Run("by_period_with_counts", func(t *testing.T) {
		r, err := filter.ParseRange("2025-02-01", "2025-02-10")
		testutil.AssertNoError(t, err)

		out, err := svc.ListByPeriod(ctx, actor, r)
		testutil.AssertNoError(t, err)
		if len(out) != 2 {
			t.Fatalf("expected 2 issues, got %d", len(out))
		}
		if out[0].ID != newer.ID || out[1].ID != older.ID {
			t.Errorf("expected reference_date desc, got %d then %d", out[0].ID, out[1].ID)
		}
		if out[0].ItemCount != 2 {
			t.Errorf("expected item_count 2, got %d", out[0].ItemCount)
		}
	})

	t.Run("by_badge", func(t *testing.T) {
		out, err := svc.ListByBadge(ctx, actor, older.Badge, filter.Range{})
		testutil.AssertNoError(t, err)
		if len(out) != 1 || out[0].ID != older.ID {
			t.Errorf("unexpected result %v", out)
		}
	})

	t.Run("items_in_insertion_order", func(t *testing.T) {
		items, err := svc.ListItems(ctx, actor, older.ID)
		testutil.AssertNoError(t, err)
		if len(items) != 2 || items[0].Code != "EPI-1" || items[1].Code != "EPI-2" {
			t.Errorf("unexpected items %v", items)
		}
	})

	t.Run("get_preloads_items", func(t *testing.T) {
		got, err := svc.Get(ctx, actor, newer.ID)
		testutil.AssertNoError(t, err)
		if len(got.Items) != 2 {
			t.Errorf("expected 2 preloaded items, got %d", len(got.Items))
		}
	})
}

func TestPPEUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db, store, audit := setup(t)
	svc := NewPPEService(store, nil, audit)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	issue := testutil.CreateTestPPEIssue(t, db, owner, time.Now())

	ok, err := svc.Update(ctx, testutil.Identity(owner), issue.ID, PPEIssueUpdate{Note: ptr("entregue"), FirstIssue: ptr(true)})
	testutil.AssertMutation(t, ok, err, true)
	got, _ := svc.Get(ctx, testutil.Identity(owner), issue.ID)
	if got.Note == nil || *got.Note != "ENTREGUE" || !got.FirstIssue {
		t.Errorf("update not applied: %+v", got)
	}

	ok, err = svc.Delete(ctx, testutil.Identity(other), issue.ID)
	testutil.AssertMutation(t, ok, err, false)

	ok, err = svc.Delete(ctx, testutil.Identity(owner), issue.ID)
	testutil.AssertMutation(t, ok, err, true)

	items, err := svc.ListItems(ctx, testutil.Identity(owner), issue.ID)
	testutil.AssertNoError(t, err)
	if len(items) != 0 {
		t.Errorf("expected items to be deleted with their issue, got %d", len(items))
	}
}
