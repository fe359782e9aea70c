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

func branch(name string, warehouse int64, value string) ConsolidatedInput {
	return ConsolidatedInput{
		Warehouse:         ptr(warehouse),
		BranchDescription: ptr(name),
		StockValue:        decimal.NewNullDecimal(decimal.RequireFromString(value)),
		MixItems:          ptr(int64(120)),
	}
}

func TestConsolidatedSnapshots(t *testing.T) {
	ctx := context.Background()
	day1 := time.Date(2025, 4, 1, 18, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 4, 2, 7, 0, 0, 0, time.UTC)

	t.Run("insert_and_exists", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewConsolidatedService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		exists, err := svc.ExistsForDate(ctx, day1)
		testutil.AssertNoError(t, err)
		if exists {
			t.Fatal("no snapshot expected yet")
		}

		n, err := svc.Insert(ctx, user, day1, []ConsolidatedInput{branch("Norte", 1, "10.00"), branch("Sul", 2, "20.00")})
		testutil.AssertNoError(t, err)
		if n != 2 {
			t.Errorf("expected 2 rows, got %d", n)
		}

		exists, err = svc.ExistsForDate(ctx, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)
		if !exists {
			t.Error("snapshot should exist for the date regardless of time of day")
		}
		if kinds := auditKinds(t, db, TxConsolidated); len(kinds) != 1 || kinds[0] != models.AuditInput {
			t.Errorf("expected one input entry, got %v", kinds)
		}
	})

	t.Run("missing_date", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewConsolidatedService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		_, err := svc.Insert(ctx, user, time.Time{}, []ConsolidatedInput{branch("Norte", 1, "1")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("replace_only_touches_its_date", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewConsolidatedService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		_, err := svc.Insert(ctx, user, day1, []ConsolidatedInput{branch("Norte", 1, "10.00"), branch("Sul", 2, "20.00")})
		testutil.AssertNoError(t, err)
		_, err = svc.Insert(ctx, user, day2, []ConsolidatedInput{branch("Norte", 1, "11.00")})
		testutil.AssertNoError(t, err)

		n, err := svc.ReplaceForDate(ctx, user, day1, []ConsolidatedInput{branch("Leste", 3, "5.00")})
		testutil.AssertNoError(t, err)
		if n != 1 {
			t.Errorf("expected 1 row, got %d", n)
		}

		var count int64
		db.Model(&models.ConsolidatedLine{}).Count(&count)
		if count != 2 {
			t.Errorf("expected 2 rows in total after replace, got %d", count)
		}
	})

	t.Run("period_ordering", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewConsolidatedService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		_, err := svc.Insert(ctx, user, day1, []ConsolidatedInput{branch("Sul", 2, "20.00"), branch("Norte", 1, "10.00")})
		testutil.AssertNoError(t, err)
		_, err = svc.Insert(ctx, user, day2, []ConsolidatedInput{branch("Oeste", 4, "7.00")})
		testutil.AssertNoError(t, err)

		r, err := filter.ParseRange("2025-04-01", "2025-04-02")
		testutil.AssertNoError(t, err)
		lines, err := svc.ListByPeriod(ctx, user, r)
		testutil.AssertNoError(t, err)
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		got := []string{*lines[0].BranchDescription, *lines[1].BranchDescription, *lines[2].BranchDescription}
		want := []string{"Oeste", "Norte", "Sul"}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})
}

func TestConsolidatedUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db, store, audit := setup(t)
	svc := NewConsolidatedService(store, audit)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	_, err := svc.Insert(ctx, testutil.Identity(owner), time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		[]ConsolidatedInput{branch("Norte", 1, "10.00")})
	testutil.AssertNoError(t, err)

	var line models.ConsolidatedLine
	testutil.AssertNoError(t, db.First(&line).Error)

	ok, err := svc.Update(ctx, testutil.Identity(other), line.ID, branch("Norte", 1, "99.00"))
	testutil.AssertMutation(t, ok, err, false)

	ok, err = svc.Update(ctx, testutil.Identity(owner), line.ID, branch("Norte Novo", 1, "12.50"))
	testutil.AssertMutation(t, ok, err, true)

	var got models.ConsolidatedLine
	testutil.AssertNoError(t, db.First(&got, line.ID).Error)
	if *got.BranchDescription != "Norte Novo" || !got.StockValue.Decimal.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("update not applied: %+v", got)
	}
	if !got.ReferenceDate.Equal(line.ReferenceDate) {
		t.Errorf("reference date changed from %s to %s", line.ReferenceDate, got.ReferenceDate)
	}

	ok, err = svc.Delete(ctx, testutil.Identity(owner), line.ID)
	testutil.AssertMutation(t, ok, err, true)
}
