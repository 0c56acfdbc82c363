package dialect

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/DanWilson00/mavwire/errors"
	"github.com/DanWilson00/mavwire/x25"
)

// Compiler turns protocol-definition documents into layout metadata:
// canonical field order, byte offsets, the per-message integrity byte and
// encoded length. Includes are resolved recursively through the injected
// Resolver with a visited-name guard, so cyclic include graphs terminate.
//
// A Compiler is not safe for concurrent use. The Dialect it produces is.
type Compiler struct {
	resolver Resolver
	diags    []error
}

// NewCompiler creates a compiler backed by the given resolver.
func NewCompiler(r Resolver) *Compiler {
	return &Compiler{resolver: r}
}

// Diagnostics returns the non-fatal diagnostics (unresolved includes)
// collected by the most recent Compile call.
func (c *Compiler) Diagnostics() []error {
	return c.diags
}

// Compile resolves the named root document plus its includes and builds a
// Dialect. A missing include is a diagnostic, not an abort; a malformed
// document anywhere in the graph fails the whole call. On id or name
// collision the including document's own definition wins.
func (c *Compiler) Compile(ctx context.Context, name string) (*Dialect, error) {
	c.diags = nil

	d := &Dialect{
		Name:     dialectName(name),
		Messages: make(map[uint32]*Message),
		Enums:    make(map[string]*Enum),
	}
	visited := make(map[string]bool)

	if err := c.compileInto(ctx, name, true, visited, d); err != nil {
		return nil, err
	}

	Logger().Info("dialect compiled",
		zap.String("dialect", d.Name),
		zap.Int("messages", len(d.Messages)),
		zap.Int("enums", len(d.Enums)),
		zap.Int("diagnostics", len(c.diags)))

	return d, nil
}

func (c *Compiler) compileInto(ctx context.Context, name string, root bool, visited map[string]bool, d *Dialect) error {
	if visited[name] {
		return nil
	}
	visited[name] = true

	data, err := c.resolver.Resolve(ctx, name)
	if err != nil {
		if root {
			return errors.StructuralParse(name, "root document not resolved", err)
		}
		diag := errors.UnresolvedInclude(name, err)
		c.diags = append(c.diags, diag)
		Logger().Warn("include not resolved", zap.String("include", name), zap.Error(err))
		return nil
	}

	doc, err := parseDefinition(name, data)
	if err != nil {
		return err
	}

	if root && doc.Version != "" {
		v, err := strconv.Atoi(strings.TrimSpace(doc.Version))
		if err != nil {
			return errors.StructuralParse(name, "invalid version element", err)
		}
		d.Version = v
	}

	// This document's own definitions land before its includes are
	// walked, so first-wins insertion implements the parent-wins rule.
	for _, xm := range doc.Messages {
		msg, err := buildMessage(name, xm)
		if err != nil {
			return err
		}
		if _, taken := d.Messages[msg.ID]; taken {
			continue
		}
		if definesMessageName(d, msg.Name) {
			continue
		}
		d.Messages[msg.ID] = msg
	}
	for _, xe := range doc.Enums {
		en, err := buildEnum(name, xe)
		if err != nil {
			return err
		}
		if _, taken := d.Enums[en.Name]; taken {
			continue
		}
		d.Enums[en.Name] = en
	}

	for _, inc := range doc.Includes {
		inc = strings.TrimSpace(inc)
		if inc == "" {
			continue
		}
		if err := c.compileInto(ctx, inc, false, visited, d); err != nil {
			return err
		}
	}

	return nil
}

func definesMessageName(d *Dialect, name string) bool {
	for _, m := range d.Messages {
		if m.Name == name {
			return true
		}
	}
	return false
}

// dialectName strips directory and extension from a document name.
func dialectName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func buildMessage(doc string, xm xmlMessage) (*Message, error) {
	if xm.Name == "" {
		return nil, errors.StructuralParse(doc, "message without name attribute", nil)
	}
	id, err := strconv.ParseUint(strings.TrimSpace(xm.ID), 10, 32)
	if err != nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindStructuralParse).
			Path(doc, xm.Name).
			Detail("invalid message id %q", xm.ID).
			Cause(err).
			Build()
	}

	fields := make([]*Field, 0, len(xm.Fields))
	for _, xf := range xm.Fields {
		base, arrayLen, err := ParseTypeString(xf.Type)
		if err != nil {
			return nil, errors.New(errors.PhaseCompile, errors.KindStructuralParse).
				Path(doc, xm.Name, xf.Name).
				Detail("bad field type %q", xf.Type).
				Cause(err).
				Build()
		}
		fields = append(fields, &Field{
			Name:        xf.Name,
			Type:        xf.Type,
			BaseType:    base,
			Size:        base.Size(),
			ArrayLength: arrayLen,
			Units:       xf.Units,
			Enum:        xf.Enum,
			Invalid:     xf.Invalid,
			Display:     xf.Display,
			Description: xf.Description,
			Extension:   xf.Extension,
		})
	}

	msg := &Message{
		ID:          uint32(id),
		Name:        xm.Name,
		Description: xm.Description,
		Fields:      orderFields(fields),
	}
	assignOffsets(msg.Fields)
	msg.EncodedLength = encodedLength(msg.Fields)
	msg.CRCExtra = crcExtra(msg.Name, msg.Fields)
	return msg, nil
}

// orderFields puts fields in wire order: non-extension fields stable-sorted
// by descending scalar width, then extension fields in declaration order.
func orderFields(fields []*Field) []*Field {
	nonExt := make([]*Field, 0, len(fields))
	ext := make([]*Field, 0)
	for _, f := range fields {
		if f.Extension {
			ext = append(ext, f)
		} else {
			nonExt = append(nonExt, f)
		}
	}
	sort.SliceStable(nonExt, func(i, j int) bool {
		return nonExt[i].Size > nonExt[j].Size
	})
	return append(nonExt, ext...)
}

func assignOffsets(fields []*Field) {
	offset := 0
	for _, f := range fields {
		f.Offset = offset
		offset += f.ByteLength()
	}
}

func encodedLength(fields []*Field) int {
	n := 0
	for _, f := range fields {
		if !f.Extension {
			n += f.ByteLength()
		}
	}
	return n
}

// crcExtra derives the message integrity byte: a checksum over the message
// name and the reordered non-extension field types, names and array
// lengths, folded to one byte. It changes whenever the wire layout of the
// message changes, so sender and receiver definitions must agree.
func crcExtra(name string, ordered []*Field) uint8 {
	h := x25.New()
	h.WriteString(name + " ")
	for _, f := range ordered {
		if f.Extension {
			continue
		}
		h.WriteString(f.BaseType.String() + " ")
		h.WriteString(f.Name + " ")
		if f.ArrayLength > 1 {
			h.WriteByte(byte(f.ArrayLength))
		}
	}
	sum := h.Sum16()
	return uint8(sum&0xFF) ^ uint8(sum>>8)
}

func buildEnum(doc string, xe xmlEnum) (*Enum, error) {
	if xe.Name == "" {
		return nil, errors.StructuralParse(doc, "enum without name attribute", nil)
	}

	en := &Enum{
		Name:        xe.Name,
		Description: strings.TrimSpace(xe.Description),
		Bitmask:     xe.Bitmask,
		Entries:     make([]*EnumEntry, 0, len(xe.Entries)),
	}

	next := uint64(0)
	for _, xen := range xe.Entries {
		v := next
		if s := strings.TrimSpace(xen.Value); s != "" {
			parsed, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return nil, errors.New(errors.PhaseCompile, errors.KindStructuralParse).
					Path(doc, xe.Name, xen.Name).
					Detail("invalid entry value %q", xen.Value).
					Cause(err).
					Build()
			}
			v = parsed
		}
		next = v + 1
		en.Entries = append(en.Entries, &EnumEntry{
			Value:       v,
			Name:        xen.Name,
			Description: strings.TrimSpace(xen.Description),
		})
	}
	sort.SliceStable(en.Entries, func(i, j int) bool {
		return en.Entries[i].Value < en.Entries[j].Value
	})
	return en, nil
}
