// Package document reads and writes the persisted document file: a JSON
// object holding every layer as a base64 PNG plus its attributes.
package document

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/ports"
)

// Format is the value of the format field written by this version.
const Format = "layerpaint/v1"

// Document is the on-disk representation of a drawing.
type Document struct {
	Format   string          `json:"format"`
	ID       string          `json:"id"`
	Width    int             `json:"width"`
	Height   int             `json:"height"`
	SavedAt  time.Time       `json:"savedAt"`
	ActiveID layers.ID       `json:"activeLayerId"`
	Layers   []layers.Record `json:"layers"`
}

// FromSnapshot wraps a snapshot. An empty id gets a fresh UUID.
func FromSnapshot(snap *layers.Snapshot, id string, savedAt time.Time) *Document {
	if id == "" {
		id = uuid.NewString()
	}
	return &Document{
		Format:   Format,
		ID:       id,
		Width:    snap.Width,
		Height:   snap.Height,
		SavedAt:  savedAt.UTC(),
		ActiveID: snap.ActiveID,
		Layers:   snap.Records,
	}
}

// Snapshot converts the document back into a restorable snapshot.
func (d *Document) Snapshot() *layers.Snapshot {
	return &layers.Snapshot{
		Label:    "open document",
		Width:    d.Width,
		Height:   d.Height,
		ActiveID: d.ActiveID,
		Records:  d.Layers,
	}
}

// Encode serializes the document as indented JSON.
func Encode(d *Document) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode parses and validates a document.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: document: %v", ports.ErrDecode, err)
	}
	if d.Format != Format {
		return nil, fmt.Errorf("%w: unsupported document format %q", ports.ErrDecode, d.Format)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, fmt.Errorf("%w: document size %dx%d", ports.ErrInvalidDimension, d.Width, d.Height)
	}
	if _, err := uuid.Parse(d.ID); err != nil {
		return nil, fmt.Errorf("%w: document id %q: %v", ports.ErrDecode, d.ID, err)
	}
	return &d, nil
}

// Save writes the document to path, creating the parent directory.
func Save(fs ports.FileSystem, path string, d *Document) error {
	data, err := Encode(d)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if err := fs.WriteFile(path, data); err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

// Load reads and decodes the document at path.
func Load(fs ports.FileSystem, path string) (*Document, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	d, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}
