package layers

import "github.com/user/layerpaint/pkg/ports"

// Record is the serialized form of one layer. Records never reference live
// surfaces; Image holds PNG bytes.
type Record struct {
	ID        ID              `json:"id"`
	Name      string          `json:"name"`
	Visible   bool            `json:"visible"`
	Opacity   float64         `json:"opacity"`
	BlendMode ports.BlendMode `json:"blendMode"`
	Metadata  *Metadata       `json:"metadata,omitempty"`
	Image     []byte          `json:"imageBytes"`
}

// Snapshot is an immutable, self-contained copy of a store: the layers in
// paint order (index 0 is the bottom), the active layer and the document size.
type Snapshot struct {
	Label    string   `json:"label,omitempty"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	ActiveID ID       `json:"activeLayerId"`
	Records  []Record `json:"layers"`
}

// Len returns the number of layers in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Bytes returns the total size of the encoded images.
func (s *Snapshot) Bytes() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Records {
		n += len(r.Image)
	}
	return n
}
