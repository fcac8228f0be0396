package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/filter/internal/fault"
)

func TestPipelineRunsStepsInOrder(t *testing.T) {
	var order []string
	p := NewPipeline().
		Then("first", func(ctx context.Context) error {
			order = append(order, "first")
			return nil
		}).
		Then("second", func(ctx context.Context) error {
			order = append(order, "second")
			return nil
		}).
		Then("third", func(ctx context.Context) error {
			order = append(order, "third")
			return nil
		})

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("order = %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order = %v, want %v", order, want)
		}
	}
}

func TestPipelineShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	p := NewPipeline().
		Then("ok", func(ctx context.Context) error {
			ran = append(ran, "ok")
			return nil
		}).
		Then("fails", func(ctx context.Context) error {
			ran = append(ran, "fails")
			return boom
		}).
		Then("skipped", func(ctx context.Context) error {
			ran = append(ran, "skipped")
			return nil
		})

	err := p.Run(context.Background())
	if err == nil {
		t.Fatal("Run succeeded past a failing step")
	}
	if len(ran) != 2 {
		t.Errorf("ran = %v, later steps must not execute", ran)
	}

	var stepErr *fault.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("err = %T, want StepError", err)
	}
	if stepErr.Step != "fails" {
		t.Errorf("Step = %q", stepErr.Step)
	}
	if !errors.Is(err, boom) {
		t.Error("StepError does not wrap the step's error")
	}
}

func TestPipelineEmptyRunSucceeds(t *testing.T) {
	if err := NewPipeline().Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestPipelinePreservesTypedErrors(t *testing.T) {
	p := NewPipeline().Then("validate", func(ctx context.Context) error {
		return fault.Validationf("bad stage")
	})

	err := p.Run(context.Background())
	var verr *fault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want wrapped ValidationError", err)
	}
	if fault.ExitCode(err) != fault.ExitValidation {
		t.Errorf("ExitCode = %d", fault.ExitCode(err))
	}
}
