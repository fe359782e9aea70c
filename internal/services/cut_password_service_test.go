package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stockdesk/internal/filter"
	"stockdesk/internal/models"
	"stockdesk/internal/testutil"
)

func validOrder(number int64) CutPasswordInput {
	return CutPasswordInput{
		OrderNumber: number,
		LoadNumber:  2001,
		Value:       decimal.RequireFromString("1234.567"),
		OrderDate:   time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		Items: []CutPasswordItemInput{
			{ItemCode: 123456, Quantity: 2},
			{ItemCode: 12, Quantity: 5},
		},
	}
}

func TestCutPasswordCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults_and_items", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		order, err := svc.Create(ctx, user, validOrder(50001))
		testutil.AssertNoError(t, err)
		if order.Status != models.CutPasswordInProgress {
			t.Errorf("expected IN_PROGRESS, got %s", order.Status)
		}
		if order.ClosingDate != nil {
			t.Error("an open order has no closing date")
		}
		if !order.Value.Equal(decimal.RequireFromString("1234.57")) {
			t.Errorf("expected value rounded to cents, got %s", order.Value)
		}
		if len(order.Items) != 1 || order.Items[0].ItemCode != 123456 {
			t.Errorf("expected the short item code to be skipped, got %+v", order.Items)
		}
	})

	t.Run("terminal_status_gets_closing_date", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		in := validOrder(50002)
		in.Status = models.CutPasswordCancelled
		order, err := svc.Create(ctx, user, in)
		testutil.AssertNoError(t, err)
		if order.ClosingDate == nil || !order.ClosingDate.Equal(models.Today()) {
			t.Errorf("expected closing date today, got %v", order.ClosingDate)
		}
	})

	t.Run("duplicate_names_existing_owner", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		alice := testutil.CreateTestUserWithRole(t, db, "alice", "USER")
		bob := testutil.CreateTestUser(t, db)

		_, err := svc.Create(ctx, testutil.Identity(alice), validOrder(50003))
		testutil.AssertNoError(t, err)

		_, err = svc.Create(ctx, testutil.Identity(bob), validOrder(50003))
		testutil.AssertAppError(t, err, "DUPLICATE")
		if !strings.Contains(err.Error(), "alice") {
			t.Errorf("expected the message to name alice, got %q", err.Error())
		}
	})

	t.Run("validation", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		user := testutil.Identity(testutil.CreateTestUser(t, db))

		cases := map[string]func(*CutPasswordInput){
			"small_order":    func(in *CutPasswordInput) { in.OrderNumber = 9999 },
			"small_load":     func(in *CutPasswordInput) { in.LoadNumber = 999 },
			"negative_value": func(in *CutPasswordInput) { in.Value = decimal.NewFromInt(-1) },
			"no_items":       func(in *CutPasswordInput) { in.Items = nil },
			"bad_status":     func(in *CutPasswordInput) { in.Status = "PAUSED" },
		}
		for name, mutate := range cases {
			t.Run(name, func(t *testing.T) {
				in := validOrder(60000)
				mutate(&in)
				_, err := svc.Create(ctx, user, in)
				testutil.AssertAppError(t, err, "INVALID_INPUT")
			})
		}
	})
}

func TestCutPasswordStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("finish_sets_closing_date_and_items", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		owner := testutil.CreateTestUser(t, db)
		order := testutil.CreateTestCutPasswordOrder(t, db, owner)

		ok, err := svc.UpdateStatus(ctx, testutil.Identity(owner), order.ID, "finished", ptr("ok"))
		testutil.AssertMutation(t, ok, err, true)

		got, err := svc.Get(ctx, testutil.Identity(owner), order.ID)
		testutil.AssertNoError(t, err)
		if got.Status != models.CutPasswordFinished {
			t.Errorf("expected FINISHED, got %s", got.Status)
		}
		if got.ClosingDate == nil || !got.ClosingDate.Equal(models.Today()) {
			t.Errorf("expected closing date today, got %v", got.ClosingDate)
		}
		for _, it := range got.Items {
			if it.Status != models.CutPasswordFinished {
				t.Errorf("item %d still %s", it.ID, it.Status)
			}
		}
	})

	t.Run("closed_order_cannot_change", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		owner := testutil.CreateTestUser(t, db)
		order := testutil.CreateTestCutPasswordOrder(t, db, owner)

		ok, err := svc.UpdateStatus(ctx, testutil.Identity(owner), order.ID, models.CutPasswordCancelled, nil)
		testutil.AssertMutation(t, ok, err, true)

		_, err = svc.UpdateStatus(ctx, testutil.Identity(owner), order.ID, models.CutPasswordFinished, nil)
		testutil.AssertAppError(t, err, "INVALID_STATUS_TRANSITION")
	})

	t.Run("back_to_in_progress_rejected", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		owner := testutil.CreateTestUser(t, db)
		order := testutil.CreateTestCutPasswordOrder(t, db, owner)

		_, err := svc.UpdateStatus(ctx, testutil.Identity(owner), order.ID, models.CutPasswordInProgress, nil)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("other_user_is_false", func(t *testing.T) {
		db, store, audit := setup(t)
		svc := NewCutPasswordService(store, audit)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		order := testutil.CreateTestCutPasswordOrder(t, db, owner)

		ok, err := svc.UpdateStatus(ctx, testutil.Identity(other), order.ID, models.CutPasswordFinished, nil)
		testutil.AssertMutation(t, ok, err, false)
	})
}

func TestCutPasswordQueries(t *testing.T) {
	ctx := context.Background()
	db, store, audit := setup(t)
	svc := NewCutPasswordService(store, audit)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	admin := testutil.CreateTestAdmin(t, db)

	a1 := testutil.CreateTestCutPasswordOrder(t, db, alice)
	testutil.CreateTestCutPasswordOrder(t, db, bob)
	closed := testutil.CreateTestCutPasswordOrder(t, db, alice)
	ok, err := svc.UpdateStatus(ctx, testutil.Identity(alice), closed.ID, models.CutPasswordFinished, nil)
	testutil.AssertMutation(t, ok, err, true)

	t.Run("in_progress_user_sees_own", func(t *testing.T) {
		orders, err := svc.ListInProgress(ctx, testutil.Identity(alice))
		testutil.AssertNoError(t, err)
		if len(orders) != 1 || orders[0].ID != a1.ID {
			t.Errorf("unexpected orders %v", orders)
		}
	})

	t.Run("in_progress_admin_sees_all", func(t *testing.T) {
		orders, err := svc.ListInProgress(ctx, testutil.Identity(admin))
		testutil.AssertNoError(t, err)
		if len(orders) != 2 {
			t.Errorf("expected 2 open orders, got %d", len(orders))
		}
	})

	t.Run("by_order_number", func(t *testing.T) {
		got, err := svc.GetByOrderNumber(ctx, testutil.Identity(bob), a1.OrderNumber)
		testutil.AssertNoError(t, err)
		if got.ID != a1.ID || len(got.Items) != 1 {
			t.Errorf("unexpected order %+v", got)
		}

		_, err = svc.GetByOrderNumber(ctx, testutil.Identity(bob), 1)
		testutil.AssertAppError(t, err, "NOT_FOUND")
	})

	t.Run("by_order_date", func(t *testing.T) {
		today := models.Today().Format("2006-01-02")
		r, err := filter.ParseRange(today, today)
		testutil.AssertNoError(t, err)
		orders, err := svc.ListByDateRange(ctx, testutil.Identity(admin), r, 0)
		testutil.AssertNoError(t, err)
		if len(orders) != 3 {
			t.Errorf("expected 3 orders dated today, got %d", len(orders))
		}
	})

	t.Run("delete_cascades", func(t *testing.T) {
		ok, err := svc.Delete(ctx, testutil.Identity(admin), a1.ID)
		testutil.AssertMutation(t, ok, err, true)
		items, err := svc.ListItems(ctx, testutil.Identity(admin), a1.ID)
		testutil.AssertNoError(t, err)
		if len(items) != 0 {
			t.Errorf("expected no items after delete, got %d", len(items))
		}
	})
}
