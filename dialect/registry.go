package dialect

import "sort"

// Registry is an immutable index over one or more compiled dialects.
// Lookups by message id, message name and enum value are O(1) map reads.
// Construction applies the same owner-wins rule as the compiler: when two
// dialects define the same message id or name, the dialect given first
// keeps it. Safe for unsynchronized concurrent reads after construction.
type Registry struct {
	byID    map[uint32]*Message
	byName  map[string]*Message
	enums   map[string]*Enum
	entries map[string]map[uint64]string
}

// NewRegistry indexes the given dialects, earlier dialects winning on
// collision. Composing a vendor extension over a base dialect is
// NewRegistry(vendor, base).
func NewRegistry(dialects ...*Dialect) *Registry {
	r := &Registry{
		byID:    make(map[uint32]*Message),
		byName:  make(map[string]*Message),
		enums:   make(map[string]*Enum),
		entries: make(map[string]map[uint64]string),
	}
	for _, d := range dialects {
		ids := make([]uint32, 0, len(d.Messages))
		for id := range d.Messages {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for _, id := range ids {
			m := d.Messages[id]
			if _, taken := r.byID[m.ID]; taken {
				continue
			}
			if _, taken := r.byName[m.Name]; taken {
				continue
			}
			r.byID[m.ID] = m
			r.byName[m.Name] = m
		}
		for name, en := range d.Enums {
			if _, taken := r.enums[name]; taken {
				continue
			}
			r.enums[name] = en
			byValue := make(map[uint64]string, len(en.Entries))
			for _, entry := range en.Entries {
				byValue[entry.Value] = entry.Name
			}
			r.entries[name] = byValue
		}
	}
	return r
}

// Message returns the metadata for a message id.
func (r *Registry) Message(id uint32) (*Message, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// MessageNamed returns the metadata for a message name.
func (r *Registry) MessageNamed(name string) (*Message, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// Enum returns the named enum definition.
func (r *Registry) Enum(name string) (*Enum, bool) {
	en, ok := r.enums[name]
	return en, ok
}

// EntryName resolves an integer value of the named enum to its symbolic
// name through the value index built at construction.
func (r *Registry) EntryName(enumName string, value uint64) (string, bool) {
	name, ok := r.entries[enumName][value]
	return name, ok
}

// Messages returns all known messages ordered by id.
func (r *Registry) Messages() []*Message {
	out := make([]*Message, 0, len(r.byID))
	for _, m := range r.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered messages.
func (r *Registry) Len() int {
	return len(r.byID)
}
