package layers

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/layerpaint/pkg/adapters/ggsurface"
	"github.com/user/layerpaint/pkg/mocks"
	"github.com/user/layerpaint/pkg/ports"
)

// recordingInvalidator counts compositor requests.
type recordingInvalidator struct {
	dirty   []ID
	updates int
}

func (r *recordingInvalidator) MarkDirty(id ID) { r.dirty = append(r.dirty, id) }
func (r *recordingInvalidator) ScheduleUpdate() { r.updates++ }

func newTestStore(t *testing.T) (*Store, *recordingInvalidator) {
	t.Helper()
	s, err := NewStore(ggsurface.New(), mocks.NewLogger(), 32, 24)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	inv := &recordingInvalidator{}
	s.SetInvalidator(inv)
	return s, inv
}

func mustAdd(t *testing.T, s *Store, name string) *Layer {
	t.Helper()
	l, err := s.AddLayer(name)
	if err != nil {
		t.Fatalf("AddLayer(%q) failed: %v", name, err)
	}
	return l
}

func paint(t *testing.T, l *Layer, c color.RGBA) {
	t.Helper()
	style := ports.StrokeStyle{Color: c, Width: 6, Cap: ports.CapRound, Join: ports.JoinRound, Alpha: 1}
	if err := l.Surface().StrokeSegment(ports.Point{X: 2, Y: 12}, ports.Point{X: 30, Y: 12}, style); err != nil {
		t.Fatalf("StrokeSegment failed: %v", err)
	}
}

func paintTranslucent(t *testing.T, l *Layer, c color.RGBA) {
	t.Helper()
	style := ports.StrokeStyle{Color: c, Width: 5, Cap: ports.CapRound, Join: ports.JoinRound, Alpha: 0.45}
	if err := l.Surface().StrokeSegment(ports.Point{X: 3, Y: 3}, ports.Point{X: 29, Y: 21}, style); err != nil {
		t.Fatalf("StrokeSegment failed: %v", err)
	}
}

// pixels copies the premultiplied buffer of every layer in order.
func pixels(s *Store) [][]byte {
	var out [][]byte
	for _, l := range s.Layers() {
		out = append(out, bytes.Clone(l.Surface().Image().(*image.RGBA).Pix))
	}
	return out
}

func names(s *Store) []string {
	var out []string
	for _, l := range s.Layers() {
		out = append(out, l.Name())
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func checkActive(t *testing.T, s *Store) {
	t.Helper()
	if s.ActiveID() == None {
		if s.Len() != 0 {
			t.Errorf("no active layer while %d layers exist", s.Len())
		}
		return
	}
	if _, ok := s.Layer(s.ActiveID()); !ok {
		t.Errorf("active id %d is not a present layer", s.ActiveID())
	}
}

func TestNewStore_InvalidDimension(t *testing.T) {
	_, err := NewStore(ggsurface.New(), mocks.NewLogger(), 0, 10)
	if !errors.Is(err, ports.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestStore_AddLayer_NewDocument(t *testing.T) {
	s, inv := newTestStore(t)

	l := mustAdd(t, s, "Background")

	if s.Len() != 1 {
		t.Fatalf("expected 1 layer, got %d", s.Len())
	}
	if s.ActiveID() != s.Layers()[0].ID() {
		t.Errorf("expected active %d, got %d", s.Layers()[0].ID(), s.ActiveID())
	}
	if l.Opacity() != 1.0 {
		t.Errorf("expected opacity 1.0, got %v", l.Opacity())
	}
	if l.BlendMode() != ports.BlendNormal {
		t.Errorf("expected normal blend mode, got %q", l.BlendMode())
	}
	if !l.Visible() {
		t.Error("expected visible layer")
	}
	if l.Surface().Width() != 32 || l.Surface().Height() != 24 {
		t.Errorf("expected surface 32x24, got %dx%d", l.Surface().Width(), l.Surface().Height())
	}
	if inv.updates != 1 {
		t.Errorf("expected 1 update request, got %d", inv.updates)
	}
}

func TestStore_AddLayer_DefaultName(t *testing.T) {
	s, _ := newTestStore(t)

	l := mustAdd(t, s, "")

	if l.Name() != "Layer 1" {
		t.Errorf("expected default name, got %q", l.Name())
	}
}

func TestStore_AddLayer_AllocationFailure(t *testing.T) {
	provider := mocks.NewSurfaceProvider()
	provider.NewSurfaceFunc = func(w, h int) (ports.Surface, error) {
		return nil, ports.ErrAllocation
	}
	s, err := NewStore(provider, mocks.NewLogger(), 10, 10)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.AddLayer("x"); !errors.Is(err, ports.ErrAllocation) {
		t.Errorf("expected ErrAllocation, got %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d layers", s.Len())
	}
}

func TestStore_IDsAreNeverReused(t *testing.T) {
	s, _ := newTestStore(t)

	a := mustAdd(t, s, "a")
	s.RemoveLayer(a.ID())
	s.Clear()
	b := mustAdd(t, s, "b")

	if b.ID() <= a.ID() {
		t.Errorf("expected id greater than %d, got %d", a.ID(), b.ID())
	}
}

func TestStore_ActiveLayerInvariant(t *testing.T) {
	s, _ := newTestStore(t)

	ops := []func(){
		func() { mustAdd(t, s, "a") },
		func() { mustAdd(t, s, "b") },
		func() { mustAdd(t, s, "c") },
		func() { s.SelectLayer(s.Layers()[0].ID()) },
		func() { s.RemoveLayer(s.Layers()[0].ID()) },
		func() { s.SelectLayer(999) },
		func() { s.RemoveLayer(s.ActiveID()) },
		func() { s.RemoveLayer(s.ActiveID()) },
		func() { s.RemoveLayer(s.ActiveID()) },
		func() { mustAdd(t, s, "d") },
		func() { s.Clear() },
	}

	for i, op := range ops {
		op()
		checkActive(t, s)
		if t.Failed() {
			t.Fatalf("invariant broken after op %d", i)
		}
	}
}

func TestStore_RemoveLayer(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustAdd(t, s, "a")
	b := mustAdd(t, s, "b")
	c := mustAdd(t, s, "c")
	surface := c.Surface()

	if err := s.RemoveLayer(c.ID()); err != nil {
		t.Fatalf("RemoveLayer failed: %v", err)
	}
	if s.ActiveID() != b.ID() {
		t.Errorf("expected topmost remaining layer %d to be active, got %d", b.ID(), s.ActiveID())
	}
	if !surface.Released() {
		t.Error("expected removed layer's surface to be released")
	}

	s.SelectLayer(b.ID())
	s.RemoveLayer(a.ID())
	if s.ActiveID() != b.ID() {
		t.Errorf("removing an inactive layer should keep active %d, got %d", b.ID(), s.ActiveID())
	}

	s.RemoveLayer(b.ID())
	if s.ActiveID() != None {
		t.Errorf("expected no active layer, got %d", s.ActiveID())
	}
}

func TestStore_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	mustAdd(t, s, "a")

	tests := []struct {
		name string
		call func() error
	}{
		{"remove", func() error { return s.RemoveLayer(42) }},
		{"select", func() error { return s.SelectLayer(42) }},
		{"opacity", func() error { return s.SetOpacity(42, 0.5) }},
		{"blend", func() error { _, err := s.SetBlendMode(42, ports.BlendScreen); return err }},
		{"toggle", func() error { _, err := s.ToggleVisibility(42); return err }},
		{"rename", func() error { return s.Rename(42, "x") }},
		{"reorder", func() error { return s.Reorder(42, s.ActiveID()) }},
		{"duplicate", func() error { _, err := s.DuplicateLayer(42); return err }},
		{"merge", func() error { return s.MergeDown(42) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ports.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
	if s.Len() != 1 {
		t.Errorf("expected store unchanged, got %d layers", s.Len())
	}
}

func TestStore_SetOpacity_Clamps(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{5.0, 1.0},
		{-1.0, 0.0},
		{0.25, 0.25},
	}

	for _, tt := range tests {
		s, _ := newTestStore(t)
		l := mustAdd(t, s, "a")
		if err := s.SetOpacity(l.ID(), tt.in); err != nil {
			t.Fatalf("SetOpacity failed: %v", err)
		}
		if l.Opacity() != tt.want {
			t.Errorf("SetOpacity(%v): got %v, want %v", tt.in, l.Opacity(), tt.want)
		}
	}
}

func TestStore_SetBlendMode_Fallback(t *testing.T) {
	s, _ := newTestStore(t)
	l := mustAdd(t, s, "a")

	got, err := s.SetBlendMode(l.ID(), ports.BlendMode("nonexistent-mode"))
	if err != nil {
		t.Fatalf("SetBlendMode failed: %v", err)
	}
	if got != ports.BlendNormal || l.BlendMode() != ports.BlendNormal {
		t.Errorf("expected fallback to normal, got %q / %q", got, l.BlendMode())
	}

	s.SetBlendMode(l.ID(), ports.BlendMultiply)
	if l.BlendMode() != ports.BlendMultiply {
		t.Errorf("expected multiply, got %q", l.BlendMode())
	}
}

func TestStore_MutationsMarkDirty(t *testing.T) {
	s, inv := newTestStore(t)
	l := mustAdd(t, s, "a")
	inv.dirty, inv.updates = nil, 0

	s.SetOpacity(l.ID(), 0.5)
	s.SetBlendMode(l.ID(), ports.BlendScreen)
	s.ToggleVisibility(l.ID())

	if len(inv.dirty) != 3 || inv.updates != 3 {
		t.Errorf("expected 3 dirty marks and 3 updates, got %d and %d", len(inv.dirty), inv.updates)
	}
	for _, id := range inv.dirty {
		if id != l.ID() {
			t.Errorf("unexpected dirty id %d", id)
		}
	}
}

func TestStore_ToggleVisibility(t *testing.T) {
	s, _ := newTestStore(t)
	l := mustAdd(t, s, "a")

	v, _ := s.ToggleVisibility(l.ID())
	if v || l.Visible() {
		t.Error("expected hidden layer")
	}
	v, _ = s.ToggleVisibility(l.ID())
	if !v || !l.Visible() {
		t.Error("expected visible layer")
	}
}

func TestStore_Reorder(t *testing.T) {
	tests := []struct {
		name    string
		dragged string
		target  string
		want    []string
	}{
		{"top below bottom", "d", "a", []string{"d", "a", "b", "c"}},
		{"bottom below top", "a", "d", []string{"b", "c", "a", "d"}},
		{"already below", "b", "c", []string{"a", "b", "c", "d"}},
		{"middle below bottom", "c", "a", []string{"c", "a", "b", "d"}},
		{"same id", "b", "b", []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore(t)
			for _, n := range []string{"a", "b", "c", "d"} {
				mustAdd(t, s, n)
			}
			dragged, _ := s.FindByName(tt.dragged)
			target, _ := s.FindByName(tt.target)

			if err := s.Reorder(dragged.ID(), target.ID()); err != nil {
				t.Fatalf("Reorder failed: %v", err)
			}
			if got := names(s); !equalNames(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}

			// Adjacency and idempotence.
			if tt.dragged != tt.target {
				order := s.Layers()
				for i, l := range order {
					if l.ID() == dragged.ID() && (i+1 >= len(order) || order[i+1].ID() != target.ID()) {
						t.Errorf("dragged layer is not directly below target: %v", names(s))
					}
				}
			}
			s.Reorder(dragged.ID(), target.ID())
			s.Reorder(dragged.ID(), target.ID())
			if got := names(s); !equalNames(got, tt.want) {
				t.Errorf("repeated reorder changed order: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStore_SnapshotRestore_RoundTrip(t *testing.T) {
	s, inv := newTestStore(t)
	bg := mustAdd(t, s, "Background")
	paint(t, bg, color.RGBA{R: 255, A: 255})
	fg := mustAdd(t, s, "Ink")
	paint(t, fg, color.RGBA{B: 255, A: 255})
	paintTranslucent(t, fg, color.RGBA{R: 200, G: 120, B: 10, A: 255})
	s.SetOpacity(fg.ID(), 0.4)
	s.SetBlendMode(fg.ID(), ports.BlendMultiply)
	s.ToggleVisibility(bg.ID())
	s.SetMetadata(fg.ID(), &Metadata{Type: "3d_reference"})
	s.SelectLayer(bg.ID())

	want := pixels(s)

	snap := s.Snapshot("test")
	if snap.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", snap.Len())
	}

	mustAdd(t, s, "extra")
	inv.updates = 0
	if err := s.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if inv.updates != 1 {
		t.Errorf("expected exactly one update request, got %d", inv.updates)
	}
	if got := names(s); !equalNames(got, []string{"Background", "Ink"}) {
		t.Fatalf("unexpected layers %v", got)
	}
	if s.ActiveID() != bg.ID() {
		t.Errorf("expected active %d, got %d", bg.ID(), s.ActiveID())
	}

	restored := s.Layers()
	if restored[0].Visible() || !restored[1].Visible() {
		t.Error("visibility not restored")
	}
	if restored[1].Opacity() != 0.4 || restored[1].BlendMode() != ports.BlendMultiply {
		t.Errorf("attributes not restored: %v %q", restored[1].Opacity(), restored[1].BlendMode())
	}
	if m := restored[1].Metadata(); m == nil || m.Type != "3d_reference" {
		t.Errorf("metadata not restored: %+v", m)
	}

	partial := 0
	for _, pix := range want {
		for p := 3; p < len(pix); p += 4 {
			if pix[p] > 0 && pix[p] < 255 {
				partial++
			}
		}
	}
	if partial == 0 {
		t.Fatal("expected semi-transparent pixels in fixture")
	}

	for round := 0; round < 4; round++ {
		if round > 0 {
			if err := s.Restore(s.Snapshot("again")); err != nil {
				t.Fatalf("round %d: Restore failed: %v", round, err)
			}
		}
		got := pixels(s)
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Fatalf("round %d: layer %d pixels differ after restore", round, i)
			}
		}
	}
}

func TestStore_Snapshot_SkipsEncodeFailures(t *testing.T) {
	provider := mocks.NewSurfaceProvider()
	count := 0
	provider.SurfaceHook = func(sf *mocks.Surface) {
		count++
		if count == 2 {
			sf.EncodePNGFunc = func() ([]byte, error) { return nil, errors.New("boom") }
		}
	}
	log := mocks.NewLogger()
	s, _ := NewStore(provider, log, 8, 8)
	mustAdd(t, s, "a")
	mustAdd(t, s, "b")
	mustAdd(t, s, "c")

	snap := s.Snapshot("lossy")

	if snap.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", snap.Len())
	}
	if snap.Records[0].Name != "a" || snap.Records[1].Name != "c" {
		t.Errorf("unexpected records %q, %q", snap.Records[0].Name, snap.Records[1].Name)
	}
	if log.Count(ports.LevelWarn) != 1 {
		t.Errorf("expected 1 warning, got %d", log.Count(ports.LevelWarn))
	}
}

func TestStore_Restore_SkipsCorruptLayers(t *testing.T) {
	s, inv := newTestStore(t)
	mustAdd(t, s, "a")
	mustAdd(t, s, "b")
	mustAdd(t, s, "c")
	snap := s.Snapshot("corrupt")
	snap.Records[1].Image = []byte("garbage")

	inv.updates = 0
	err := s.Restore(snap)

	if !errors.Is(err, ports.ErrDecode) {
		t.Errorf("expected ErrDecode in joined error, got %v", err)
	}
	if got := names(s); !equalNames(got, []string{"a", "c"}) {
		t.Errorf("expected corrupt layer skipped, got %v", got)
	}
	if inv.updates != 1 {
		t.Errorf("expected exactly one update request, got %d", inv.updates)
	}
	checkActive(t, s)
}

func TestStore_Restore_ParallelDecodeOrder(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetRestoreWorkers(4)
	var want []string
	for i := 0; i < 12; i++ {
		l := mustAdd(t, s, string(rune('a'+i)))
		want = append(want, l.Name())
	}
	snap := s.Snapshot("many")

	s.Clear()
	if err := s.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if got := names(s); !equalNames(got, want) {
		t.Errorf("paint order not preserved: %v", got)
	}
}

func TestStore_Restore_ResizesDocument(t *testing.T) {
	s, _ := newTestStore(t)
	l := mustAdd(t, s, "a")
	paint(t, l, color.RGBA{G: 255, A: 255})
	snap := s.Snapshot("before resize")

	if err := s.Resize(64, 64); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}
	if w, h := s.Size(); w != 64 || h != 64 {
		t.Fatalf("expected 64x64, got %dx%d", w, h)
	}

	s.Restore(snap)
	if w, h := s.Size(); w != 32 || h != 24 {
		t.Errorf("expected 32x24 after restore, got %dx%d", w, h)
	}
	if sf := s.Layers()[0].Surface(); sf.Width() != 32 || sf.Height() != 24 {
		t.Errorf("expected restored surface 32x24, got %dx%d", sf.Width(), sf.Height())
	}
}

func TestStore_Resize_PreservesContent(t *testing.T) {
	s, _ := newTestStore(t)
	l := mustAdd(t, s, "a")
	paint(t, l, color.RGBA{R: 255, A: 255})

	if err := s.Resize(64, 48); err != nil {
		t.Fatalf("Resize failed: %v", err)
	}

	px := l.Surface().ReadPixels().NRGBAAt(16, 12)
	if px.A != 255 || px.R != 255 {
		t.Errorf("expected stroke preserved, got %v", px)
	}
	if px := l.Surface().ReadPixels().NRGBAAt(50, 40); px.A != 0 {
		t.Errorf("expected transparent padding, got %v", px)
	}

	if err := s.Resize(-1, 5); !errors.Is(err, ports.ErrInvalidDimension) {
		t.Errorf("expected ErrInvalidDimension, got %v", err)
	}
}

func TestStore_DuplicateLayer(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustAdd(t, s, "a")
	paint(t, a, color.RGBA{R: 255, A: 255})
	mustAdd(t, s, "b")

	dup, err := s.DuplicateLayer(a.ID())
	if err != nil {
		t.Fatalf("DuplicateLayer failed: %v", err)
	}
	if got := names(s); !equalNames(got, []string{"a", "a copy", "b"}) {
		t.Errorf("unexpected order %v", got)
	}
	if s.ActiveID() != dup.ID() {
		t.Error("expected duplicate to be active")
	}
	if px := dup.Surface().ReadPixels().NRGBAAt(16, 12); px.R != 255 || px.A != 255 {
		t.Errorf("expected copied pixels, got %v", px)
	}
	if dup.Surface() == a.Surface() {
		t.Error("duplicate must own its surface")
	}
}

func TestStore_MergeDown(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustAdd(t, s, "a")
	b := mustAdd(t, s, "b")
	paint(t, b, color.RGBA{B: 255, A: 255})

	if err := s.MergeDown(a.ID()); !errors.Is(err, ErrNothingBelow) {
		t.Errorf("expected ErrNothingBelow, got %v", err)
	}

	if err := s.MergeDown(b.ID()); err != nil {
		t.Fatalf("MergeDown failed: %v", err)
	}
	if s.Len() != 1 || s.ActiveID() != a.ID() {
		t.Fatalf("expected only layer a active, got %v active %d", names(s), s.ActiveID())
	}
	if px := a.Surface().ReadPixels().NRGBAAt(16, 12); px.B != 255 || px.A != 255 {
		t.Errorf("expected merged pixels, got %v", px)
	}
}

func TestStore_Clear(t *testing.T) {
	s, _ := newTestStore(t)
	a := mustAdd(t, s, "a")
	b := mustAdd(t, s, "b")

	s.Clear()

	if s.Len() != 0 || s.ActiveID() != None {
		t.Errorf("expected empty store, got %d layers active %d", s.Len(), s.ActiveID())
	}
	if !a.Surface().Released() || !b.Surface().Released() {
		t.Error("expected surfaces to be released")
	}
}
