// Package pipeline provides the stage abstraction and the stage input and
// output types of a layerpaint run.
package pipeline

import (
	"context"
)

// Stage is one step of a run: script parsing, replay or export. Stages must
// return promptly with ctx.Err() once ctx is cancelled.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc adapts a function to Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}
