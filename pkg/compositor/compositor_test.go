package compositor

import (
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/user/layerpaint/pkg/adapters/ggsurface"
	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/mocks"
	"github.com/user/layerpaint/pkg/ports"
)

type fixture struct {
	store     *layers.Store
	comp      *Compositor
	clock     *mocks.Clock
	scheduler *mocks.FrameScheduler
	provider  *mocks.SurfaceProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := mocks.NewLogger()
	store, err := layers.NewStore(ggsurface.New(), log, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		store:     store,
		clock:     mocks.NewClock(),
		scheduler: mocks.NewFrameScheduler(),
		provider:  mocks.NewSurfaceProvider(),
	}
	f.comp = New(store, f.provider, f.scheduler, f.clock, log, 0)
	store.SetInvalidator(f.comp)
	return f
}

func (f *fixture) add(t *testing.T, name string) *layers.Layer {
	t.Helper()
	l, err := f.store.AddLayer(name)
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func fill(t *testing.T, l *layers.Layer, c color.RGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, l.Surface().Width(), l.Surface().Height()))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	if err := l.Surface().WritePixels(img); err != nil {
		t.Fatal(err)
	}
}

func outputAt(f *fixture, x, y int) color.NRGBA {
	return f.comp.Output().ReadPixels().NRGBAAt(x, y)
}

func TestCompositor_FirstUpdateRendersImmediately(t *testing.T) {
	f := newFixture(t)

	f.add(t, "Background")

	st := f.comp.Stats()
	if st.Renders != 1 || st.Immediate != 1 {
		t.Errorf("expected one immediate render, got %+v", st)
	}
	if f.comp.Pending() {
		t.Error("expected nothing pending")
	}
	if f.comp.Output() == nil {
		t.Fatal("expected output surface")
	}
}

func TestCompositor_CoalescesWithinOneTick(t *testing.T) {
	f := newFixture(t)
	l := f.add(t, "a")
	before := f.comp.Stats().Renders

	f.clock.Advance(time.Millisecond)
	const n = 25
	for i := 0; i < n; i++ {
		f.comp.MarkDirty(l.ID())
		f.comp.ScheduleUpdate()
	}

	if got := f.comp.Stats().Renders; got != before {
		t.Fatalf("expected no render before the tick, got %d new", got-before)
	}
	if f.scheduler.Requested != 1 {
		t.Errorf("expected one frame request, got %d", f.scheduler.Requested)
	}
	if f.comp.Stats().Coalesced != n-1 {
		t.Errorf("expected %d coalesced requests, got %d", n-1, f.comp.Stats().Coalesced)
	}

	f.scheduler.Tick()

	st := f.comp.Stats()
	if st.Renders-before != 1 || st.Deferred != 1 {
		t.Errorf("expected exactly one deferred render, got %+v", st)
	}
	if len(f.comp.Dirty()) != 0 {
		t.Errorf("expected dirty set cleared, got %v", f.comp.Dirty())
	}
}

func TestCompositor_ImmediateAfterThreshold(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")

	f.clock.Advance(DefaultThreshold)
	f.comp.ScheduleUpdate()

	st := f.comp.Stats()
	if st.Immediate != 2 || st.Renders != 2 {
		t.Errorf("expected two immediate renders, got %+v", st)
	}
	if f.scheduler.Requested != 0 {
		t.Errorf("expected no frame requests, got %d", f.scheduler.Requested)
	}
}

func TestCompositor_ForceUpdateCancelsPending(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	f.clock.Advance(time.Millisecond)
	f.comp.ScheduleUpdate()
	if !f.comp.Pending() {
		t.Fatal("expected a pending update")
	}

	if err := f.comp.ForceUpdate(); err != nil {
		t.Fatalf("ForceUpdate failed: %v", err)
	}

	if f.comp.Pending() {
		t.Error("expected pending update to be cancelled")
	}
	if f.scheduler.Cancelled != 1 {
		t.Errorf("expected one cancelled frame, got %d", f.scheduler.Cancelled)
	}
	if ran := f.scheduler.Tick(); ran != 0 {
		t.Errorf("expected no callbacks on tick, got %d", ran)
	}
	if st := f.comp.Stats(); st.Forced != 1 || st.Renders != 2 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestCompositor_FlushRunsPending(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	f.clock.Advance(time.Millisecond)
	f.comp.ScheduleUpdate()

	if err := f.comp.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if f.comp.Pending() || f.comp.Stats().Renders != 2 {
		t.Errorf("expected pending update flushed, got %+v", f.comp.Stats())
	}

	if err := f.comp.Flush(); err != nil || f.comp.Stats().Renders != 2 {
		t.Error("flush without pending update should do nothing")
	}
}

func TestCompositor_FailureResetsState(t *testing.T) {
	f := newFixture(t)
	fail := true
	f.provider.SurfaceHook = func(s *mocks.Surface) {
		s.DrawSurfaceFunc = func(src ports.Surface, at image.Point, opacity float64, mode ports.BlendMode) error {
			if fail {
				return errors.New("gpu on fire")
			}
			return s.Surface.DrawSurface(src, at, opacity, mode)
		}
	}

	// The failing render is triggered by a mutation; AddLayer must still succeed.
	l, err := f.store.AddLayer("a")
	if err != nil {
		t.Fatalf("mutation should not see composite errors: %v", err)
	}

	st := f.comp.Stats()
	if st.Failures != 1 || st.Renders != 0 {
		t.Errorf("expected one failure, got %+v", st)
	}
	if f.comp.Pending() || len(f.comp.Dirty()) != 0 {
		t.Error("expected scheduling state reset after failure")
	}

	fail = false
	f.clock.Advance(time.Millisecond)
	f.comp.MarkDirty(l.ID())
	f.comp.ScheduleUpdate()
	f.scheduler.Tick()
	if f.comp.Stats().Renders != 1 {
		t.Errorf("expected scheduling to recover, got %+v", f.comp.Stats())
	}

	fail = true
	if err := f.comp.ForceUpdate(); !errors.Is(err, ports.ErrCompositeFailure) {
		t.Errorf("expected ErrCompositeFailure from ForceUpdate, got %v", err)
	}
}

func TestCompositor_PanicIsContained(t *testing.T) {
	f := newFixture(t)
	f.provider.SurfaceHook = func(s *mocks.Surface) {
		s.DrawSurfaceFunc = func(ports.Surface, image.Point, float64, ports.BlendMode) error {
			panic("unexpected")
		}
	}

	f.add(t, "a")

	if f.comp.Stats().Failures != 1 {
		t.Errorf("expected panic to count as failure, got %+v", f.comp.Stats())
	}
	if err := f.comp.ForceUpdate(); !errors.Is(err, ports.ErrCompositeFailure) {
		t.Errorf("expected ErrCompositeFailure, got %v", err)
	}
}

func TestCompositor_RenderFull_OrderOpacityVisibility(t *testing.T) {
	f := newFixture(t)
	bottom := f.add(t, "bottom")
	fill(t, bottom, color.RGBA{R: 255, A: 255})
	top := f.add(t, "top")
	fill(t, top, color.RGBA{B: 255, A: 255})

	if err := f.comp.ForceUpdate(); err != nil {
		t.Fatal(err)
	}
	if px := outputAt(f, 5, 5); px != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("expected top layer on top, got %v", px)
	}

	f.store.SetOpacity(top.ID(), 0.5)
	f.comp.ForceUpdate()
	px := outputAt(f, 5, 5)
	if px.R < 126 || px.R > 129 || px.B < 126 || px.B > 129 {
		t.Errorf("expected half blend, got %v", px)
	}

	f.store.ToggleVisibility(top.ID())
	f.comp.ForceUpdate()
	if px := outputAt(f, 5, 5); px != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("expected hidden top layer skipped, got %v", px)
	}
}

func TestCompositor_EraserShowsLayersBeneath(t *testing.T) {
	f := newFixture(t)
	bottom := f.add(t, "bottom")
	fill(t, bottom, color.RGBA{G: 255, A: 255})
	top := f.add(t, "top")
	fill(t, top, color.RGBA{R: 255, A: 255})

	eraser := ports.StrokeStyle{
		Color:     color.Black,
		Width:     6,
		Cap:       ports.CapRound,
		Join:      ports.JoinRound,
		Alpha:     1,
		Composite: ports.CompositeDestinationOut,
	}
	if err := top.Surface().StrokeSegment(ports.Point{X: 10, Y: 0}, ports.Point{X: 10, Y: 20}, eraser); err != nil {
		t.Fatal(err)
	}

	if err := f.comp.RenderFull(); err != nil {
		t.Fatal(err)
	}
	if px := outputAt(f, 10, 10); px != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("expected bottom layer through the hole, got %v", px)
	}
	if px := outputAt(f, 2, 10); px != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("expected top layer outside the hole, got %v", px)
	}

	f.store.ToggleVisibility(bottom.ID())
	f.comp.RenderFull()
	if px := outputAt(f, 10, 10); px.A != 0 {
		t.Errorf("expected transparency at erased pixels, got %v", px)
	}
}

func TestCompositor_UnknownBlendRendersAsNormal(t *testing.T) {
	f := newFixture(t)
	bottom := f.add(t, "bottom")
	fill(t, bottom, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	top := f.add(t, "top")
	fill(t, top, color.RGBA{R: 20, G: 40, B: 60, A: 128})
	f.store.SetOpacity(top.ID(), 0.7)

	f.store.SetBlendMode(top.ID(), ports.BlendNormal)
	f.comp.ForceUpdate()
	want := outputAt(f, 3, 3)

	f.store.SetBlendMode(top.ID(), ports.BlendMode("nonexistent-mode"))
	f.comp.ForceUpdate()
	if got := outputAt(f, 3, 3); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestCompositor_FollowsDocumentResize(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")

	f.clock.Advance(time.Second)
	if err := f.store.Resize(40, 30); err != nil {
		t.Fatal(err)
	}

	out := f.comp.Output()
	if out.Width() != 40 || out.Height() != 30 {
		t.Errorf("expected output 40x30, got %dx%d", out.Width(), out.Height())
	}
}

func TestCompositor_Close(t *testing.T) {
	f := newFixture(t)
	f.add(t, "a")
	f.clock.Advance(time.Millisecond)
	f.comp.ScheduleUpdate()

	f.comp.Close()

	if f.scheduler.Pending() != 0 {
		t.Error("expected pending frame cancelled on close")
	}
	f.clock.Advance(time.Second)
	f.comp.ScheduleUpdate()
	if f.comp.Stats().Renders != 1 {
		t.Errorf("expected no renders after close, got %+v", f.comp.Stats())
	}
	if err := f.comp.ForceUpdate(); !errors.Is(err, ports.ErrCompositeFailure) {
		t.Errorf("expected error after close, got %v", err)
	}
}
