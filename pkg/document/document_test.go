package document

import (
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/mocks"
	"github.com/user/layerpaint/pkg/ports"
)

func sampleSnapshot() *layers.Snapshot {
	return &layers.Snapshot{
		Width:    32,
		Height:   16,
		ActiveID: 2,
		Records: []layers.Record{
			{ID: 1, Name: "Background", Visible: true, Opacity: 1, BlendMode: ports.BlendNormal, Image: []byte{0x89, 'P', 'N', 'G'}},
			{ID: 2, Name: "Ink", Visible: false, Opacity: 0.5, BlendMode: ports.BlendMultiply, Image: []byte{1, 2, 3},
				Metadata: &layers.Metadata{Type: "pose-render", Payload: json.RawMessage(`{"pose":"a"}`)}},
		},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	fs := mocks.NewFileSystem()
	saved := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	doc := FromSnapshot(sampleSnapshot(), "", saved)

	if err := Save(fs, "out/doc.json", doc); err != nil {
		t.Fatal(err)
	}
	got, err := Load(fs, "out/doc.json")
	if err != nil {
		t.Fatal(err)
	}

	if got.ID != doc.ID || got.Width != 32 || got.Height != 16 || !got.SavedAt.Equal(saved) {
		t.Errorf("unexpected header %+v", got)
	}
	snap := got.Snapshot()
	if snap.ActiveID != 2 || snap.Len() != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	ink := snap.Records[1]
	if ink.Name != "Ink" || ink.Visible || ink.Opacity != 0.5 || ink.BlendMode != ports.BlendMultiply {
		t.Errorf("unexpected record %+v", ink)
	}
	if string(ink.Image) != "\x01\x02\x03" || ink.Metadata == nil || ink.Metadata.Type != "pose-render" {
		t.Errorf("image bytes or metadata lost: %+v", ink)
	}
}

func TestEncode_Fields(t *testing.T) {
	data, err := Encode(FromSnapshot(sampleSnapshot(), "", time.Now()))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"format": "layerpaint/v1"`, `"activeLayerId": 2`, `"imageBytes": "AQID"`, `"blendMode": "multiply"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("encoded document missing %s", key)
		}
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"not json", `{`, ports.ErrDecode},
		{"wrong format", `{"format":"other","id":"6f1c1f0e-2d7a-4a57-9c59-7f9d1a1a2b3c","width":1,"height":1}`, ports.ErrDecode},
		{"bad size", `{"format":"layerpaint/v1","id":"6f1c1f0e-2d7a-4a57-9c59-7f9d1a1a2b3c","width":0,"height":1}`, ports.ErrInvalidDimension},
		{"bad id", `{"format":"layerpaint/v1","id":"x","width":1,"height":1}`, ports.ErrDecode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.data)); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(mocks.NewFileSystem(), "nope.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist for missing file, got %v", err)
	}
}
