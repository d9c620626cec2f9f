package wargame

import (
	"context"
	"testing"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/internal/store/memstore"
)

func TestSubmitOrderJoinFactionSucceeds(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	mustPutFaction(t, s, &model.Faction{GuildID: testGuild, FactionID: "fac-1", LeaderID: "char-leader"})
	e := NewEngine(s, nil)

	result, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderJoinFaction, TargetFactionID: "fac-1"})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if result.Rejected {
		t.Fatalf("result rejected: %s", result.RejectionReason)
	}
	if result.OrderID == "" {
		t.Error("expected a non-empty OrderID")
	}

	got, err := s.GetOrder(ctx, testGuild, result.OrderID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != model.OrderPending {
		t.Errorf("status = %v, want OrderPending", got.Status)
	}
}

func TestSubmitOrderRejectsUnrecognizedType(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	e := NewEngine(s, nil)

	result, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderType("NOT_A_REAL_TYPE")})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if !result.Rejected {
		t.Error("expected rejection for an unrecognized order_type")
	}
}

func TestSubmitOrderRejectsInvalidRequest(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	e := NewEngine(s, nil)

	result, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderJoinFaction})
	if err != nil {
		t.Fatalf("SubmitOrder: %v", err)
	}
	if !result.Rejected {
		t.Error("expected rejection when no target faction is given")
	}
}

func TestSubmitOrderDetectsUnitConflictAndOverride(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	u := &model.Unit{GuildID: testGuild, UnitID: "unit-1", OwnerCharacterID: "char-1", CurrentTerritoryID: "terr-a"}
	if err := s.PutUnit(ctx, u); err != nil {
		t.Fatalf("PutUnit: %v", err)
	}
	if err := s.PutTerritory(ctx, &model.Territory{GuildID: testGuild, TerritoryID: "terr-a"}); err != nil {
		t.Fatalf("PutTerritory: %v", err)
	}
	e := NewEngine(s, nil)

	first, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderTransit, UnitIDs: []string{"unit-1"}, Path: []string{"terr-a"}})
	if err != nil {
		t.Fatalf("SubmitOrder (first): %v", err)
	}
	if first.Rejected || first.ConfirmationNeeded {
		t.Fatalf("first order should succeed cleanly: %+v", first)
	}

	second, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderTransit, UnitIDs: []string{"unit-1"}, Path: []string{"terr-a"}})
	if err != nil {
		t.Fatalf("SubmitOrder (second): %v", err)
	}
	if !second.ConfirmationNeeded {
		t.Fatalf("expected ConfirmationNeeded submitting a second order for the same unit, got %+v", second)
	}
	if len(second.ExistingOrders) != 1 || second.ExistingOrders[0].OrderID != first.OrderID {
		t.Errorf("ExistingOrders = %+v, want the first order", second.ExistingOrders)
	}

	third, err := e.SubmitOrder(ctx, testGuild, "char-1", OrderRequest{OrderType: OrderTransit, UnitIDs: []string{"unit-1"}, Path: []string{"terr-a"}, Override: true})
	if err != nil {
		t.Fatalf("SubmitOrder (override): %v", err)
	}
	if third.Rejected || third.ConfirmationNeeded {
		t.Fatalf("override should succeed: %+v", third)
	}

	gotFirst, err := s.GetOrder(ctx, testGuild, first.OrderID)
	if err != nil {
		t.Fatalf("GetOrder(first): %v", err)
	}
	if gotFirst.Status != model.OrderCancelled {
		t.Errorf("first order status = %v, want OrderCancelled after override", gotFirst.Status)
	}
}

func TestCancelOrderIsIdempotentAndEnforcesOwnership(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	o := &model.Order{GuildID: testGuild, OrderID: "order-1", OrderType: string(OrderResourceTransfer), SubmittedByID: "char-1", Status: model.OrderPending}
	if err := s.PutOrder(ctx, o); err != nil {
		t.Fatalf("PutOrder: %v", err)
	}
	e := NewEngine(s, nil)

	if err := e.CancelOrder(ctx, testGuild, "char-2", "order-1"); err == nil {
		t.Error("expected an error cancelling someone else's order")
	}
	if err := e.CancelOrder(ctx, testGuild, "char-1", "order-1"); err != nil {
		t.Fatalf("CancelOrder: %v", err)
	}
	got, err := s.GetOrder(ctx, testGuild, "order-1")
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.Status != model.OrderCancelled {
		t.Errorf("status = %v, want OrderCancelled", got.Status)
	}

	// Cancelling an already-cancelled order is a no-op success.
	if err := e.CancelOrder(ctx, testGuild, "char-1", "order-1"); err != nil {
		t.Errorf("re-cancelling should be a no-op success, got: %v", err)
	}
}

func TestCancelOrderRejectsTerminalOrder(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	o := &model.Order{GuildID: testGuild, OrderID: "order-1", OrderType: string(OrderResourceTransfer), SubmittedByID: "char-1", Status: model.OrderSuccess}
	if err := s.PutOrder(ctx, o); err != nil {
		t.Fatalf("PutOrder: %v", err)
	}
	e := NewEngine(s, nil)

	if err := e.CancelOrder(ctx, testGuild, "char-1", "order-1"); err == nil {
		t.Error("expected an error cancelling an already-terminal order")
	}
}
