// Package replay drives a drawing session from a timed script, either
// deterministically against a manual clock or paced against the wall clock.
package replay

import (
	"context"
	"errors"
	"time"

	"github.com/user/layerpaint/pkg/adapters/frameloop"
	"github.com/user/layerpaint/pkg/pipeline"
	"github.com/user/layerpaint/pkg/ports"
	"github.com/user/layerpaint/pkg/session"
)

// maxSettleTicks bounds the ticks run after the last event to let deferred
// updates complete.
const maxSettleTicks = 8

// Stage replays scripts on a session. The session must have been created
// with loop as its frame scheduler, and with clock as its clock for
// deterministic replays.
type Stage struct {
	sess   *session.Session
	loop   *frameloop.Loop
	clock  *frameloop.ManualClock
	logger ports.Logger
}

// New creates a replay Stage. clock may be nil when only realtime replays
// are run.
func New(sess *session.Session, loop *frameloop.Loop, clock *frameloop.ManualClock, logger ports.Logger) *Stage {
	return &Stage{
		sess:   sess,
		loop:   loop,
		clock:  clock,
		logger: logger.WithComponent("replay"),
	}
}

// Execute implements pipeline.Stage. The document is reset to the script's
// canvas before the first step. Failing steps are logged and recorded in the
// result; the replay continues with the next step.
func (s *Stage) Execute(ctx context.Context, input pipeline.ReplayInput) (pipeline.ReplayResult, error) {
	script := input.Script
	result := pipeline.ReplayResult{Steps: len(script.Steps)}

	width, height := script.Width, script.Height
	if width == 0 || height == 0 {
		width, height = s.sess.Store().Size()
	}
	setup := event{step: -1, op: "new", run: func(sess *session.Session) error {
		return sess.NewDocument(width, height)
	}}
	events := append([]event{setup}, expand(script)...)
	if last := events[len(events)-1]; last.at > 0 {
		result.ScriptDuration = last.at
	}

	s.logger.Info("Replaying %s (%d steps)...", script.Name, len(script.Steps))

	var err error
	if input.Realtime {
		err = s.runRealtime(ctx, events, &result)
	} else {
		err = s.runManual(ctx, events, &result)
	}
	return result, err
}

func (s *Stage) runManual(ctx context.Context, events []event, result *pipeline.ReplayResult) error {
	if s.clock == nil {
		return errors.New("replay: deterministic replay needs a manual clock")
	}
	start := s.clock.Now()
	interval := s.loop.Interval()
	next := interval

	tick := func() {
		s.clock.Set(start.Add(next))
		s.loop.Tick()
		result.Ticks++
		next += interval
	}

	for _, ev := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		for next <= ev.at {
			tick()
		}
		s.clock.Set(start.Add(ev.at))
		if err := s.apply(ev, ev.run(s.sess), result); err != nil {
			return err
		}
	}
	for i := 0; i < maxSettleTicks && s.loop.Pending() > 0; i++ {
		tick()
	}
	result.Elapsed = result.ScriptDuration
	return nil
}

func (s *Stage) runRealtime(ctx context.Context, events []event, result *pipeline.ReplayResult) error {
	runCtx, cancel := context.WithCancel(ctx)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		s.loop.Run(runCtx)
	}()
	defer func() {
		cancel()
		<-runDone
	}()

	ticksBefore := s.loop.Ticks()
	start := time.Now()
	for _, ev := range events {
		if wait := time.Until(start.Add(ev.at)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}

		done := make(chan error, 1)
		s.loop.Post(func() { done <- ev.run(s.sess) })
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-done:
			if err := s.apply(ev, err, result); err != nil {
				return err
			}
		}
	}

	// Let one more tick run so a deferred update is not left behind.
	settled := make(chan struct{})
	s.loop.RequestFrame(func() { close(settled) })
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-settled:
	}

	result.Elapsed = time.Since(start)
	result.Ticks = s.loop.Ticks() - ticksBefore
	return nil
}

// apply records the outcome of one event. Only a failed document setup
// aborts the replay.
func (s *Stage) apply(ev event, err error, result *pipeline.ReplayResult) error {
	result.Events++
	if err == nil {
		return nil
	}
	if ev.step < 0 {
		return err
	}
	s.logger.Warn("Step %d (%s) failed: %s", ev.step, ev.op, err)
	result.Failures = append(result.Failures, pipeline.StepFailure{Index: ev.step, Op: ev.op, Error: err.Error()})
	return nil
}

var _ pipeline.Stage[pipeline.ReplayInput, pipeline.ReplayResult] = (*Stage)(nil)
