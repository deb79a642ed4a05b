package decoder

import (
	"fmt"
	"sort"
)

// Table routes arbitration IDs to message definitions.
type Table struct {
	routes map[uint32]*MessageDef
	defs   []*MessageDef
}

// NewTable expands every definition's ID range and rejects overlaps and malformed fields.
func NewTable(defs []MessageDef) (*Table, error) {
	t := &Table{routes: make(map[uint32]*MessageDef)}
	for i := range defs {
		d := &defs[i]
		if err := d.validate(); err != nil {
			return nil, err
		}
		if d.unit(d.ID) < 0 {
			return nil, fmt.Errorf("message %s: unit base 0x%X above id 0x%X", d.Name, d.UnitBase, d.ID)
		}
		for k := 0; k < d.span(); k++ {
			id := d.ID + uint32(k)
			if prev, ok := t.routes[id]; ok {
				return nil, fmt.Errorf("0x%03X claimed by %s and %s: %w", id, prev.Name, d.Name, ErrOverlap)
			}
			t.routes[id] = d
		}
		t.defs = append(t.defs, d)
	}
	return t, nil
}

// Lookup returns the definition and unit index for id.
func (t *Table) Lookup(id uint32) (*MessageDef, int, bool) {
	d, ok := t.routes[id]
	if !ok {
		return nil, 0, false
	}
	return d, d.unit(id), true
}

// IDs lists every routed ID in ascending order.
func (t *Table) IDs() []uint32 {
	out := make([]uint32, 0, len(t.routes))
	for id := range t.routes {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (t *Table) Len() int { return len(t.defs) }
