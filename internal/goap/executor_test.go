package goap

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestExecutor(t *testing.T) {
	fire := []*Action{
		NewAction("ChopTree", nil, State{"HasWood": true}, 1),
		NewAction("LightFire", State{"HasWood": true}, State{"HasFire": true}, 1),
	}
	plan := &Plan{
		Goal:    NewGoal("MakeFire", nil, State{"HasFire": true}),
		Actions: fire,
		Cost:    2,
	}

	t.Run("Runs handlers in order and applies effects", func(t *testing.T) {
		var order []string
		executor := NewExecutor()
		executor.Handle("ChopTree", func(ctx context.Context, action *Action, ws State) error {
			order = append(order, action.Name())
			if ws.Get("HasWood") {
				t.Error("effects should be applied after the handler")
			}
			return nil
		})
		executor.Handle("LightFire", func(ctx context.Context, action *Action, ws State) error {
			order = append(order, action.Name())
			if !ws.Get("HasWood") {
				t.Error("earlier effects should be visible")
			}
			return nil
		})

		state := NewState()
		if err := executor.Execute(context.Background(), plan, state); err != nil {
			t.Fatalf("Execution failed: %v", err)
		}

		if !reflect.DeepEqual(order, []string{"ChopTree", "LightFire"}) {
			t.Errorf("unexpected handler order %v", order)
		}
		if !state.Get("HasFire") {
			t.Error("HasFire should be set")
		}
	})

	t.Run("Handler error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		executor := NewExecutor()
		executor.Handle("ChopTree", func(ctx context.Context, action *Action, ws State) error {
			return boom
		})

		state := NewState()
		err := executor.Execute(context.Background(), plan, state)
		if !errors.Is(err, boom) {
			t.Fatalf("expected wrapped boom, got %v", err)
		}
		if state.Has("HasWood") {
			t.Error("failed action should not apply its effects")
		}
	})

	t.Run("Strict preconditions", func(t *testing.T) {
		broken := &Plan{
			Goal:    plan.Goal,
			Actions: []*Action{fire[1]},
		}

		err := NewExecutor(WithStrictPreconditions()).Execute(context.Background(), broken, NewState())
		if !errors.Is(err, ErrPreconditionsUnmet) {
			t.Errorf("expected ErrPreconditionsUnmet, got %v", err)
		}

		state := NewState()
		if err := NewExecutor().Execute(context.Background(), broken, state); err != nil {
			t.Errorf("lenient executor should not fail: %v", err)
		}
		if !state.Get("HasFire") {
			t.Error("lenient executor should still apply effects")
		}
	})

	t.Run("Cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewExecutor().Execute(ctx, plan, NewState())
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
