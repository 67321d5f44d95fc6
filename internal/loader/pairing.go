package loader

import "fixview/internal/domain"

// Record is one resolved file of a test case.
type Record struct {
	Name string
	Data []byte
	Err  error
}

// Unit is what the browser shows for one file, or for a fixture together with its decoded companion.
type Unit struct {
	Name       string // Fixture name for pairs
	Raw        []byte
	Decoded    []byte
	HasRaw     bool
	HasDecoded bool
	Err        error // Failure of the raw file, if it was requested and failed
}

// Paired reports whether both views are available.
func (u Unit) Paired() bool {
	return u.HasRaw && u.HasDecoded
}

// Update announces a new or changed unit.
type Update struct {
	Unit    Unit
	Created bool // false when an existing unit changed in place
}

// unitName maps a file onto its display unit and reports whether it is the decoded half of a pair.
func unitName(name string) (string, bool) {
	if domain.IsCompanion(name) {
		return domain.FixtureOf(name), true
	}
	return name, false
}

// collector pairs files into units regardless of arrival order.
type collector struct {
	units map[string]*Unit
	order []string
}

func newCollector(files []string) *collector {
	c := &collector{units: make(map[string]*Unit)}
	seen := make(map[string]bool)
	for _, f := range files {
		name, _ := unitName(f)
		if !seen[name] {
			seen[name] = true
			c.order = append(c.order, name)
		}
	}
	return c
}

// add folds one record into its unit and returns the unit's new state.
func (c *collector) add(rec Record) Update {
	name, decoded := unitName(rec.Name)
	u, ok := c.units[name]
	if !ok {
		u = &Unit{Name: name}
		c.units[name] = u
	}

	switch {
	case decoded && rec.Err == nil:
		u.Decoded, u.HasDecoded = rec.Data, true
	case decoded:
		if !u.HasRaw {
			u.Err = rec.Err
		}
	case rec.Err == nil:
		u.Raw, u.HasRaw, u.Err = rec.Data, true, nil
	default:
		u.Err = rec.Err
	}
	return Update{Unit: *u, Created: !ok}
}

// list returns the units in file-list order.
func (c *collector) list() []Unit {
	out := make([]Unit, 0, len(c.units))
	for _, name := range c.order {
		if u, ok := c.units[name]; ok {
			out = append(out, *u)
		}
	}
	return out
}
