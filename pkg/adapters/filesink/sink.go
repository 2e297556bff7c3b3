// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"image"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/user/layerpaint/pkg/ports"
)

// Sink saves debug output under a base directory:
//
//	gestures/gesture-0001.png  composite after each gesture
//	layers/00-background.png   every layer at dump time
//	history.json               history labels
//	script.json                the replay script as parsed
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	provider ports.SurfaceProvider
}

// New creates a new FileSink. Images are encoded with provider.
func New(baseDir string, fs ports.FileSystem, provider ports.SurfaceProvider) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		provider: provider,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveGestureFrame saves the composite produced by a gesture.
func (s *Sink) SaveGestureFrame(index int, img image.Image) error {
	return s.saveImage("gestures", fmt.Sprintf("gesture-%04d.png", index), img)
}

// SaveLayerImage saves one layer. index is the paint order position.
func (s *Sink) SaveLayerImage(index int, name string, img image.Image) error {
	return s.saveImage("layers", fmt.Sprintf("%02d-%s.png", index, slug(name)), img)
}

// SaveHistoryJSON saves the history description.
func (s *Sink) SaveHistoryJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "history.json"), data)
}

// SaveScriptJSON saves the parsed replay script.
func (s *Sink) SaveScriptJSON(data []byte) error {
	return s.fs.WriteFile(filepath.Join(s.baseDir, "script.json"), data)
}

func (s *Sink) saveImage(sub, name string, img image.Image) error {
	dir := filepath.Join(s.baseDir, sub)
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	data, err := s.provider.EncodeImage(img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return s.fs.WriteFile(filepath.Join(dir, name), data)
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// slug turns a layer name into a file name fragment.
func slug(name string) string {
	s := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "layer"
	}
	return s
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
