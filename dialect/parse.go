package dialect

import (
	"encoding/xml"
	"strings"

	"github.com/DanWilson00/mavwire/errors"
)

// xmlDocument is the raw shape of one protocol-definition document.
type xmlDocument struct {
	XMLName  xml.Name     `xml:"mavlink"`
	Includes []string     `xml:"include"`
	Version  string       `xml:"version"`
	Enums    []xmlEnum    `xml:"enums>enum"`
	Messages []xmlMessage `xml:"messages>message"`
}

type xmlEnum struct {
	Name        string     `xml:"name,attr"`
	Bitmask     bool       `xml:"bitmask,attr"`
	Description string     `xml:"description"`
	Entries     []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Value       string `xml:"value,attr"`
	Name        string `xml:"name,attr"`
	Description string `xml:"description"`
}

type xmlField struct {
	Type        string `xml:"type,attr"`
	Name        string `xml:"name,attr"`
	Units       string `xml:"units,attr"`
	Enum        string `xml:"enum,attr"`
	Invalid     string `xml:"invalid,attr"`
	Display     string `xml:"display,attr"`
	Description string `xml:",chardata"`
	Extension   bool   `xml:"-"`
}

type xmlMessage struct {
	ID          string
	Name        string
	Description string
	Fields      []xmlField
}

// UnmarshalXML walks the message block token by token so that fields
// declared after the extensions marker pick up the extension flag. Child
// ordering is significant and the stock struct decoder would lose it.
func (m *xmlMessage) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "id":
			m.ID = a.Value
		case "name":
			m.Name = a.Value
		}
	}

	extensions := false
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "description":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				m.Description = strings.TrimSpace(s)
			case "extensions":
				if err := d.Skip(); err != nil {
					return err
				}
				extensions = true
			case "field":
				var f xmlField
				if err := d.DecodeElement(&f, &t); err != nil {
					return err
				}
				f.Description = strings.TrimSpace(f.Description)
				f.Extension = extensions
				m.Fields = append(m.Fields, f)
			default:
				// deprecated, wip, and other markers are ignored
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// parseDefinition parses one definition document. Structural failures are
// fatal to the compile call.
func parseDefinition(name string, data []byte) (*xmlDocument, error) {
	var doc xmlDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, errors.StructuralParse(name, "malformed definition document", err)
	}
	return &doc, nil
}
