// Package scenedoc defines the serialized scene document: the JSON layout
// written on save and consumed on load. Entities are identified by their
// persistent ids, never by transient in-memory ids, so references inside a
// document stay valid across sessions.
package scenedoc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/meshforge/scenecore/codec"
)

// FormatVersion is written into every document and checked on decode.
const FormatVersion = 1

var ErrUnsupportedVersion = eris.New("unsupported scene document version")

// Metadata describes the document itself.
type Metadata struct {
	Name    string    `json:"name"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`
}

// EntityRecord is one serialized entity. Parent refers to another record's
// PersistentID; an empty Parent means the entity is a root. A record without
// a PersistentID gets a freshly generated one on load.
type EntityRecord struct {
	PersistentID string                     `json:"persistentId,omitempty"`
	Name         string                     `json:"name"`
	Parent       string                     `json:"parent,omitempty"`
	Tags         []string                   `json:"tags,omitempty"`
	Components   map[string]json.RawMessage `json:"components,omitempty"`
}

// Document is a complete scene snapshot.
type Document struct {
	Metadata Metadata       `json:"metadata"`
	Entities []EntityRecord `json:"entities"`
}

// New returns an empty document stamped with the current format version.
func New(name string) *Document {
	return &Document{
		Metadata: Metadata{
			Name:    name,
			Version: FormatVersion,
			SavedAt: time.Now().UTC(),
		},
	}
}

// Encode serializes the document to JSON.
func (d *Document) Encode() ([]byte, error) {
	data, err := codec.Encode(d)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return data, nil
}

// Decode parses a serialized document and rejects unknown format versions.
func Decode(data []byte) (*Document, error) {
	doc, err := codec.Decode[Document](data)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	if doc.Metadata.Version != FormatVersion {
		return nil, eris.Wrap(ErrUnsupportedVersion, fmt.Sprintf("version %d", doc.Metadata.Version))
	}
	return &doc, nil
}
