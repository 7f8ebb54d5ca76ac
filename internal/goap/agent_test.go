package goap

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestAgent(t *testing.T) {
	goals := []*Goal{
		NewGoal("Eat", State{"Hungry": true}, State{"Hungry": false}),
		NewGoal("GetWood", State{"HasWood": false}, State{"HasWood": true}),
	}
	actions := []*Action{
		NewAction("Forage", nil, State{"Hungry": false}, 2),
		NewAction("ChopTree", nil, State{"HasWood": true}, 1),
	}

	t.Run("Runs until idle", func(t *testing.T) {
		agent := NewAgent(nil, nil, goals, actions)
		initial := State{"Hungry": true}

		var seen []string
		result, err := agent.Run(context.Background(), initial, 10, func(step Step) {
			seen = append(seen, step.Plan.Goal.Name())
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if result.Reason != StopIdle {
			t.Errorf("expected idle, got %s", result.Reason)
		}
		if !reflect.DeepEqual(seen, []string{"Eat", "GetWood"}) {
			t.Errorf("unexpected goal sequence %v", seen)
		}
		if !reflect.DeepEqual(result.Final, State{"Hungry": false, "HasWood": true}) {
			t.Errorf("unexpected final state %s", result.Final)
		}
		if !reflect.DeepEqual(initial, State{"Hungry": true}) {
			t.Error("initial state should not be modified")
		}
		if result.Steps[0].Before.Get("HasWood") || !result.Steps[1].After.Get("HasWood") {
			t.Error("step snapshots are wrong")
		}
	})

	t.Run("Stops when a plan does not change the world", func(t *testing.T) {
		// Always eligible and already satisfied: the empty plan repeats forever.
		idle := []*Goal{NewGoal("StayPut", nil, State{"Home": true})}
		agent := NewAgent(nil, nil, idle, nil)

		result, err := agent.Run(context.Background(), State{"Home": true}, 0, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Reason != StopStalled || len(result.Steps) != 1 {
			t.Errorf("expected stalled after one step, got %s with %d steps", result.Reason, len(result.Steps))
		}
	})

	t.Run("Max steps", func(t *testing.T) {
		flip := []*Goal{
			NewGoal("TurnOn", State{"On": false}, State{"On": true}),
			NewGoal("TurnOff", State{"On": true}, State{"On": false}),
		}
		toggles := []*Action{
			NewAction("SwitchOn", nil, State{"On": true}, 1),
			NewAction("SwitchOff", nil, State{"On": false}, 1),
		}

		result, err := NewAgent(nil, nil, flip, toggles).Run(context.Background(), State{}, 5, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Reason != StopMaxSteps || len(result.Steps) != 5 {
			t.Errorf("expected 5 steps and max_steps, got %d %s", len(result.Steps), result.Reason)
		}
	})

	t.Run("Executor failure is returned", func(t *testing.T) {
		executor := NewExecutor()
		executor.Handle("Forage", func(ctx context.Context, action *Action, ws State) error {
			return errors.New("no berries")
		})

		_, err := NewAgent(nil, executor, goals, actions).Run(context.Background(), State{"Hungry": true}, 10, nil)
		if err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := NewAgent(nil, nil, goals, actions).Run(ctx, State{"Hungry": true}, 10, nil)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.Reason != StopCancelled {
			t.Errorf("expected cancelled, got %s", result.Reason)
		}
	})
}
