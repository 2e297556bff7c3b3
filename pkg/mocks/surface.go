package mocks

import (
	"image"

	"github.com/user/layerpaint/pkg/adapters/ggsurface"
	"github.com/user/layerpaint/pkg/ports"
)

// SurfaceProvider wraps a real provider and lets tests replace any call.
// Surfaces it creates are wrapped in Surface so their calls can be replaced
// as well through SurfaceHook.
type SurfaceProvider struct {
	Base ports.SurfaceProvider

	NewSurfaceFunc  func(width, height int) (ports.Surface, error)
	DecodeImageFunc func(data []byte) (image.Image, error)
	EncodeImageFunc func(img image.Image) ([]byte, error)

	// SurfaceHook, when set, is called with every created surface.
	SurfaceHook func(s *Surface)

	Created int
}

// NewSurfaceProvider creates a provider backed by ggsurface.
func NewSurfaceProvider() *SurfaceProvider {
	return &SurfaceProvider{Base: ggsurface.New()}
}

func (m *SurfaceProvider) NewSurface(width, height int) (ports.Surface, error) {
	if m.NewSurfaceFunc != nil {
		return m.NewSurfaceFunc(width, height)
	}
	base, err := m.Base.NewSurface(width, height)
	if err != nil {
		return nil, err
	}
	m.Created++
	s := &Surface{Surface: base}
	if m.SurfaceHook != nil {
		m.SurfaceHook(s)
	}
	return s, nil
}

func (m *SurfaceProvider) DecodeImage(data []byte) (image.Image, error) {
	if m.DecodeImageFunc != nil {
		return m.DecodeImageFunc(data)
	}
	return m.Base.DecodeImage(data)
}

func (m *SurfaceProvider) EncodeImage(img image.Image) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img)
	}
	return m.Base.EncodeImage(img)
}

var _ ports.SurfaceProvider = (*SurfaceProvider)(nil)

// Surface wraps a real surface with replaceable calls.
type Surface struct {
	ports.Surface

	EncodePNGFunc   func() ([]byte, error)
	DrawSurfaceFunc func(src ports.Surface, at image.Point, opacity float64, mode ports.BlendMode) error
	ClearFunc       func() error

	DrawCalls int
}

func (m *Surface) EncodePNG() ([]byte, error) {
	if m.EncodePNGFunc != nil {
		return m.EncodePNGFunc()
	}
	return m.Surface.EncodePNG()
}

func (m *Surface) DrawSurface(src ports.Surface, at image.Point, opacity float64, mode ports.BlendMode) error {
	m.DrawCalls++
	if m.DrawSurfaceFunc != nil {
		return m.DrawSurfaceFunc(src, at, opacity, mode)
	}
	return m.Surface.DrawSurface(src, at, opacity, mode)
}

func (m *Surface) Clear() error {
	if m.ClearFunc != nil {
		return m.ClearFunc()
	}
	return m.Surface.Clear()
}

var _ ports.Surface = (*Surface)(nil)
