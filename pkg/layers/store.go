package layers

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/user/layerpaint/pkg/ports"
)

// Invalidator is notified when layer content or attributes change. The
// compositor implements it.
type Invalidator interface {
	// MarkDirty records that the layer needs recompositing.
	MarkDirty(id ID)

	// ScheduleUpdate requests a (possibly coalesced) recomposite.
	ScheduleUpdate()
}

type nopInvalidator struct{}

func (nopInvalidator) MarkDirty(ID)    {}
func (nopInvalidator) ScheduleUpdate() {}

// ErrNothingBelow is returned when merging down the bottom layer.
var ErrNothingBelow = errors.New("layerpaint: no layer below")

// Store owns the ordered layers of one document.
//
// Store is not safe for concurrent use; the host serializes calls.
type Store struct {
	provider ports.SurfaceProvider
	logger   ports.Logger
	inv      Invalidator

	width   int
	height  int
	layers  []*Layer
	active  ID
	nextID  ID
	workers int
}

// NewStore creates an empty store for a document of the given size.
func NewStore(provider ports.SurfaceProvider, logger ports.Logger, width, height int) (*Store, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: document %dx%d", ports.ErrInvalidDimension, width, height)
	}
	return &Store{
		provider: provider,
		logger:   logger.WithComponent("layers"),
		inv:      nopInvalidator{},
		width:    width,
		height:   height,
		nextID:   1,
		workers:  runtime.NumCPU(),
	}, nil
}

// SetInvalidator wires the compositor. A nil value disconnects it.
func (s *Store) SetInvalidator(inv Invalidator) {
	if inv == nil {
		inv = nopInvalidator{}
	}
	s.inv = inv
}

// SetRestoreWorkers sets the number of goroutines decoding layers on Restore.
func (s *Store) SetRestoreWorkers(n int) {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	s.workers = n
}

// Size returns the document size.
func (s *Store) Size() (width, height int) {
	return s.width, s.height
}

// Len returns the number of layers.
func (s *Store) Len() int {
	return len(s.layers)
}

// Layers returns the layers in paint order, bottom first.
func (s *Store) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// Layer looks up a layer by id.
func (s *Store) Layer(id ID) (*Layer, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.layers[i], true
	}
	return nil, false
}

// FindByName returns the topmost layer with the given name.
func (s *Store) FindByName(name string) (*Layer, bool) {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if s.layers[i].name == name {
			return s.layers[i], true
		}
	}
	return nil, false
}

// ActiveID returns the active layer id, or None.
func (s *Store) ActiveID() ID {
	return s.active
}

// ActiveLayer returns the active layer, or nil.
func (s *Store) ActiveLayer() *Layer {
	l, _ := s.Layer(s.active)
	return l
}

// AddLayer creates a transparent layer on top of the stack and makes it active.
// Only surface allocation can fail.
func (s *Store) AddLayer(name string) (*Layer, error) {
	surface, err := s.provider.NewSurface(s.width, s.height)
	if err != nil {
		return nil, fmt.Errorf("add layer %q: %w", name, err)
	}

	id := s.nextID
	s.nextID++
	if name == "" {
		name = fmt.Sprintf("Layer %d", id)
	}

	l := &Layer{
		id:        id,
		name:      name,
		surface:   surface,
		visible:   true,
		opacity:   1,
		blendMode: ports.BlendNormal,
	}
	s.layers = append(s.layers, l)
	s.active = id
	s.logger.Debug("Added layer %d (%s)", id, name)

	s.changed(id)
	return l, nil
}

// RemoveLayer removes a layer and releases its surface. When the active layer
// is removed, the topmost remaining layer becomes active.
func (s *Store) RemoveLayer(id ID) error {
	i := s.indexOf(id)
	if i < 0 {
		return s.notFound("remove layer", id)
	}

	s.layers[i].surface.Release()
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	if s.active == id {
		s.active = s.topID()
	}
	s.logger.Debug("Removed layer %d", id)

	s.changed(id)
	return nil
}

// SelectLayer makes a layer active.
func (s *Store) SelectLayer(id ID) error {
	if s.indexOf(id) < 0 {
		return s.notFound("select layer", id)
	}
	s.active = id
	return nil
}

// SetOpacity sets a layer's opacity, clamped to [0, 1].
func (s *Store) SetOpacity(id ID, value float64) error {
	l, ok := s.Layer(id)
	if !ok {
		return s.notFound("set opacity", id)
	}
	l.opacity = ClampOpacity(value)
	s.changed(id)
	return nil
}

// SetBlendMode sets a layer's blend mode and returns the mode in effect.
// Unsupported modes fall back to normal.
func (s *Store) SetBlendMode(id ID, mode ports.BlendMode) (ports.BlendMode, error) {
	l, ok := s.Layer(id)
	if !ok {
		return ports.BlendNormal, s.notFound("set blend mode", id)
	}
	effective := mode.Normalize()
	if effective != mode {
		s.logger.Warn("Unknown blend mode %q, using %s", string(mode), string(effective))
	}
	l.blendMode = effective
	s.changed(id)
	return effective, nil
}

// ToggleVisibility flips a layer's visibility and returns the new value.
func (s *Store) ToggleVisibility(id ID) (bool, error) {
	l, ok := s.Layer(id)
	if !ok {
		return false, s.notFound("toggle visibility", id)
	}
	l.visible = !l.visible
	s.changed(id)
	return l.visible, nil
}

// Rename changes a layer's display name.
func (s *Store) Rename(id ID, name string) error {
	l, ok := s.Layer(id)
	if !ok {
		return s.notFound("rename layer", id)
	}
	l.name = name
	return nil
}

// SetMetadata replaces a layer's metadata.
func (s *Store) SetMetadata(id ID, m *Metadata) error {
	l, ok := s.Layer(id)
	if !ok {
		return s.notFound("set metadata", id)
	}
	l.metadata = m.Clone()
	return nil
}

// Reorder moves dragged so that it sits directly below target in paint order.
// The insertion index is target's index once dragged has been taken out, so
// repeating the call changes nothing.
func (s *Store) Reorder(dragged, target ID) error {
	if dragged == target {
		return nil
	}
	from := s.indexOf(dragged)
	if from < 0 {
		return s.notFound("reorder", dragged)
	}
	if s.indexOf(target) < 0 {
		return s.notFound("reorder", target)
	}

	l := s.layers[from]
	rest := append(s.layers[:from:from], s.layers[from+1:]...)
	to := 0
	for i, other := range rest {
		if other.id == target {
			to = i
			break
		}
	}

	reordered := make([]*Layer, 0, len(s.layers))
	reordered = append(reordered, rest[:to]...)
	reordered = append(reordered, l)
	reordered = append(reordered, rest[to:]...)
	s.layers = reordered

	s.changed(dragged)
	return nil
}

// DuplicateLayer copies a layer directly above itself and makes the copy active.
func (s *Store) DuplicateLayer(id ID) (*Layer, error) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, s.notFound("duplicate layer", id)
	}
	src := s.layers[i]

	surface, err := s.provider.NewSurface(s.width, s.height)
	if err != nil {
		return nil, fmt.Errorf("duplicate layer %d: %w", id, err)
	}
	if err := surface.Load(src.surface.Image()); err != nil {
		surface.Release()
		return nil, fmt.Errorf("duplicate layer %d: %w", id, err)
	}

	dup := &Layer{
		id:        s.nextID,
		name:      src.name + " copy",
		surface:   surface,
		visible:   src.visible,
		opacity:   src.opacity,
		blendMode: src.blendMode,
		metadata:  src.metadata.Clone(),
	}
	s.nextID++

	s.layers = append(s.layers[:i+1], append([]*Layer{dup}, s.layers[i+1:]...)...)
	s.active = dup.id
	s.changed(dup.id)
	return dup, nil
}

// MergeDown composites a layer onto the one beneath it, using its opacity and
// blend mode, then removes it. The layer below becomes active.
func (s *Store) MergeDown(id ID) error {
	i := s.indexOf(id)
	if i < 0 {
		return s.notFound("merge down", id)
	}
	if i == 0 {
		return fmt.Errorf("merge down layer %d: %w", id, ErrNothingBelow)
	}
	top, below := s.layers[i], s.layers[i-1]

	if top.visible {
		if err := below.surface.DrawSurface(top.surface, image.Point{}, top.opacity, top.blendMode); err != nil {
			return fmt.Errorf("merge down layer %d: %w", id, err)
		}
	}

	top.surface.Release()
	s.layers = append(s.layers[:i], s.layers[i+1:]...)
	s.active = below.id
	s.inv.MarkDirty(id)
	s.changed(below.id)
	return nil
}

// Resize changes the document size and resizes every layer surface.
// Content is kept anchored at the top-left corner.
func (s *Store) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: document %dx%d", ports.ErrInvalidDimension, width, height)
	}
	for _, l := range s.layers {
		if err := l.surface.Resize(width, height); err != nil {
			return fmt.Errorf("resize layer %d: %w", l.id, err)
		}
		s.inv.MarkDirty(l.id)
	}
	s.width, s.height = width, height
	s.logger.Debug("Resized document to %dx%d", width, height)
	s.inv.ScheduleUpdate()
	return nil
}

// Clear releases every surface and empties the store. Ids are not reused.
func (s *Store) Clear() {
	for _, l := range s.layers {
		l.surface.Release()
		s.inv.MarkDirty(l.id)
	}
	s.layers = nil
	s.active = None
	s.inv.ScheduleUpdate()
}

// Snapshot serializes every layer. A layer whose surface fails to encode is
// left out with a warning; Snapshot itself never fails.
func (s *Store) Snapshot(label string) *Snapshot {
	snap := &Snapshot{
		Label:    label,
		Width:    s.width,
		Height:   s.height,
		ActiveID: s.active,
		Records:  make([]Record, 0, len(s.layers)),
	}
	for _, l := range s.layers {
		data, err := l.surface.EncodePNG()
		if err != nil {
			s.logger.Warn("Skipping layer %d (%s) in snapshot: %s", l.id, l.name, err)
			continue
		}
		snap.Records = append(snap.Records, Record{
			ID:        l.id,
			Name:      l.name,
			Visible:   l.visible,
			Opacity:   l.opacity,
			BlendMode: l.blendMode,
			Metadata:  l.metadata.Clone(),
			Image:     data,
		})
	}
	return snap
}

// decoded is the result of decoding one record.
type decoded struct {
	index int
	img   image.Image
	err   error
}

// Restore replaces the store content with a snapshot. Records are decoded
// concurrently; a record that fails to decode is skipped and reported in the
// returned error while the rest are restored. The compositor is asked for
// exactly one update once every record has been decoded or skipped.
func (s *Store) Restore(snap *Snapshot) error {
	if snap == nil {
		return errors.New("restore: nil snapshot")
	}

	results := s.decodeAll(snap.Records)

	for _, l := range s.layers {
		l.surface.Release()
		s.inv.MarkDirty(l.id)
	}
	s.layers = nil
	s.active = None
	if snap.Width > 0 && snap.Height > 0 {
		s.width, s.height = snap.Width, snap.Height
	}

	var errs []error
	seen := make(map[ID]bool, len(snap.Records))
	for i, rec := range snap.Records {
		if err := results[i].err; err != nil {
			s.logger.Warn("Skipping layer %d (%s) on restore: %s", rec.ID, rec.Name, err)
			errs = append(errs, fmt.Errorf("layer %d (%s): %w", rec.ID, rec.Name, err))
			continue
		}

		id := rec.ID
		if id <= None || seen[id] {
			id = s.nextID
		}
		seen[id] = true
		if id >= s.nextID {
			s.nextID = id + 1
		}

		surface, err := s.provider.NewSurface(s.width, s.height)
		if err != nil {
			s.inv.ScheduleUpdate()
			return fmt.Errorf("restore layer %d: %w", rec.ID, err)
		}
		if err := surface.Load(results[i].img); err != nil {
			surface.Release()
			errs = append(errs, fmt.Errorf("layer %d (%s): %w", rec.ID, rec.Name, err))
			continue
		}

		s.layers = append(s.layers, &Layer{
			id:        id,
			name:      rec.Name,
			surface:   surface,
			visible:   rec.Visible,
			opacity:   ClampOpacity(rec.Opacity),
			blendMode: rec.BlendMode.Normalize(),
			metadata:  rec.Metadata.Clone(),
		})
		s.inv.MarkDirty(id)
	}

	if s.indexOf(snap.ActiveID) >= 0 {
		s.active = snap.ActiveID
	} else {
		s.active = s.topID()
	}

	s.logger.Debug("Restored %d of %d layers", len(s.layers), len(snap.Records))
	s.inv.ScheduleUpdate()
	return errors.Join(errs...)
}

// decodeAll decodes record images with a worker pool. The result slice is
// indexed like records, so completion order does not matter.
func (s *Store) decodeAll(records []Record) []decoded {
	results := make([]decoded, len(records))
	if len(records) == 0 {
		return results
	}

	workers := s.workers
	if workers > len(records) {
		workers = len(records)
	}

	jobs := make(chan int, len(records))
	out := make(chan decoded, len(records))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				img, err := s.provider.DecodeImage(records[i].Image)
				out <- decoded{index: i, img: img, err: err}
			}
		}()
	}

	for i := range records {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(out)
	}()

	for d := range out {
		results[d.index] = d
	}
	return results
}

func (s *Store) indexOf(id ID) int {
	if id == None {
		return -1
	}
	for i, l := range s.layers {
		if l.id == id {
			return i
		}
	}
	return -1
}

func (s *Store) topID() ID {
	if len(s.layers) == 0 {
		return None
	}
	return s.layers[len(s.layers)-1].id
}

func (s *Store) changed(id ID) {
	s.inv.MarkDirty(id)
	s.inv.ScheduleUpdate()
}

func (s *Store) notFound(op string, id ID) error {
	s.logger.Warn("Layer %d not found (%s)", id, op)
	return fmt.Errorf("%s %d: %w", op, id, ports.ErrNotFound)
}
