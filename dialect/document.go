package dialect

import (
	"encoding/json"
	"sort"
	"strconv"
	"time"

	"github.com/DanWilson00/mavwire/errors"
)

// SchemaVersion identifies the compiled metadata document format.
const SchemaVersion = "1.0.0"

// Document is the serializable form of a compiled Dialect. It is what the
// compile tool writes to disk and what runtime consumers can load without
// access to the definition documents.
type Document struct {
	SchemaVersion string                 `json:"schema_version"`
	GeneratedAt   time.Time              `json:"generated_at"`
	Dialect       DocumentInfo           `json:"dialect"`
	Enums         map[string]*EnumDoc    `json:"enums"`
	Messages      map[string]*MessageDoc `json:"messages"`
}

type DocumentInfo struct {
	Name    string `json:"name"`
	Version int    `json:"version"`
}

type EnumDoc struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Bitmask     bool                     `json:"bitmask"`
	Entries     map[string]*EnumEntryDoc `json:"entries"`
}

type EnumEntryDoc struct {
	Name        string `json:"name"`
	Value       uint64 `json:"value"`
	Description string `json:"description"`
}

type MessageDoc struct {
	ID            uint32      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	CRCExtra      uint8       `json:"crc_extra"`
	EncodedLength int         `json:"encoded_length"`
	Fields        []*FieldDoc `json:"fields"`
}

type FieldDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	BaseType    string `json:"base_type"`
	Offset      int    `json:"offset"`
	Size        int    `json:"size"`
	ArrayLength int    `json:"array_length"`
	Units       string `json:"units,omitempty"`
	Enum        string `json:"enum,omitempty"`
	Invalid     string `json:"invalid,omitempty"`
	Display     string `json:"display,omitempty"`
	Description string `json:"description"`
	Extension   bool   `json:"extension"`
}

// NewDocument snapshots a compiled Dialect into its document form.
func NewDocument(d *Dialect) *Document {
	doc := &Document{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   time.Now().UTC(),
		Dialect:       DocumentInfo{Name: d.Name, Version: d.Version},
		Enums:         make(map[string]*EnumDoc, len(d.Enums)),
		Messages:      make(map[string]*MessageDoc, len(d.Messages)),
	}

	for name, en := range d.Enums {
		ed := &EnumDoc{
			Name:        en.Name,
			Description: en.Description,
			Bitmask:     en.Bitmask,
			Entries:     make(map[string]*EnumEntryDoc, len(en.Entries)),
		}
		for _, entry := range en.Entries {
			ed.Entries[strconv.FormatUint(entry.Value, 10)] = &EnumEntryDoc{
				Name:        entry.Name,
				Value:       entry.Value,
				Description: entry.Description,
			}
		}
		doc.Enums[name] = ed
	}

	for id, m := range d.Messages {
		md := &MessageDoc{
			ID:            m.ID,
			Name:          m.Name,
			Description:   m.Description,
			CRCExtra:      m.CRCExtra,
			EncodedLength: m.EncodedLength,
			Fields:        make([]*FieldDoc, 0, len(m.Fields)),
		}
		for _, f := range m.Fields {
			md.Fields = append(md.Fields, &FieldDoc{
				Name:        f.Name,
				Type:        f.Type,
				BaseType:    f.BaseType.String(),
				Offset:      f.Offset,
				Size:        f.Size,
				ArrayLength: f.ArrayLength,
				Units:       f.Units,
				Enum:        f.Enum,
				Invalid:     f.Invalid,
				Display:     f.Display,
				Description: f.Description,
				Extension:   f.Extension,
			})
		}
		doc.Messages[strconv.FormatUint(uint64(id), 10)] = md
	}

	return doc
}

// Marshal renders the document as JSON. Pretty output is two-space
// indented for human inspection.
func (doc *Document) Marshal(pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// LoadDocument parses a previously marshaled document.
func LoadDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindStructuralParse, err, "malformed metadata document")
	}
	return &doc, nil
}

// Build reconstructs the runtime Dialect from the document. Field layout
// is taken as recorded; base types must come from the closed scalar set.
func (doc *Document) Build() (*Dialect, error) {
	d := &Dialect{
		Name:     doc.Dialect.Name,
		Version:  doc.Dialect.Version,
		Messages: make(map[uint32]*Message, len(doc.Messages)),
		Enums:    make(map[string]*Enum, len(doc.Enums)),
	}

	for name, ed := range doc.Enums {
		en := &Enum{
			Name:        ed.Name,
			Description: ed.Description,
			Bitmask:     ed.Bitmask,
			Entries:     make([]*EnumEntry, 0, len(ed.Entries)),
		}
		for _, entry := range ed.Entries {
			en.Entries = append(en.Entries, &EnumEntry{
				Value:       entry.Value,
				Name:        entry.Name,
				Description: entry.Description,
			})
		}
		sort.Slice(en.Entries, func(i, j int) bool {
			return en.Entries[i].Value < en.Entries[j].Value
		})
		d.Enums[name] = en
	}

	for _, md := range doc.Messages {
		m := &Message{
			ID:            md.ID,
			Name:          md.Name,
			Description:   md.Description,
			CRCExtra:      md.CRCExtra,
			EncodedLength: md.EncodedLength,
			Fields:        make([]*Field, 0, len(md.Fields)),
		}
		for _, fd := range md.Fields {
			base, err := ParseFieldType(fd.BaseType)
			if err != nil {
				return nil, errors.New(errors.PhaseLoad, errors.KindStructuralParse).
					Path(md.Name, fd.Name).
					Detail("unknown base type %q", fd.BaseType).
					Build()
			}
			m.Fields = append(m.Fields, &Field{
				Name:        fd.Name,
				Type:        fd.Type,
				BaseType:    base,
				Offset:      fd.Offset,
				Size:        fd.Size,
				ArrayLength: fd.ArrayLength,
				Units:       fd.Units,
				Enum:        fd.Enum,
				Invalid:     fd.Invalid,
				Display:     fd.Display,
				Description: fd.Description,
				Extension:   fd.Extension,
			})
		}
		d.Messages[md.ID] = m
	}

	return d, nil
}
