package app

import (
	"context"

	"github.com/example/filter/internal/fault"
)

// Step is one named, fallible stage of a multi-step operation. Steps pass
// values to each other through closures over the operation's state.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Pipeline sequences fallible steps. It is strictly short-circuiting: the
// first failure aborts all later steps and comes back wrapped in a
// fault.StepError naming the step that failed. Nothing is rolled back here;
// each component leaves recoverable state behind on its own (idempotent
// stores, replayable link operations), so a retry of the same command picks
// up where the failure happened.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Then appends a step.
func (p *Pipeline) Then(name string, run func(ctx context.Context) error) *Pipeline {
	p.steps = append(p.steps, Step{Name: name, Run: run})
	return p
}

// Run executes the steps in order, stopping at the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			return &fault.StepError{Step: step.Name, Err: err}
		}
	}
	return nil
}
