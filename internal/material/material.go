package material

// ID identifies one of the plate materials. Values match the host's
// material selector (1-based).
type ID int

const (
	Brass ID = iota + 1
	Bronze
	Iron
	Aluminium
	Gold
	Silver
	Copper
)

// Count is the number of entries in the table.
const Count = 7

// Properties are the elastic constants of a material.
type Properties struct {
	Density       float64 // rho, kg/m^3
	YoungsModulus float64 // E, Pa
	PoissonsRatio float64 // nu
}

var table = [Count]struct {
	name  string
	props Properties
}{
	{"brass", Properties{Density: 8530, YoungsModulus: 110e9, PoissonsRatio: 0.34}},
	{"bronze", Properties{Density: 8770, YoungsModulus: 103e9, PoissonsRatio: 0.34}},
	{"iron", Properties{Density: 7874, YoungsModulus: 211e9, PoissonsRatio: 0.26}},
	{"aluminium", Properties{Density: 2700, YoungsModulus: 70e9, PoissonsRatio: 0.33}},
	{"gold", Properties{Density: 19300, YoungsModulus: 79e9, PoissonsRatio: 0.42}},
	{"silver", Properties{Density: 10490, YoungsModulus: 83e9, PoissonsRatio: 0.37}},
	{"copper", Properties{Density: 8920, YoungsModulus: 120e9, PoissonsRatio: 0.36}},
}

// Valid reports whether id names an entry in the table.
func (id ID) Valid() bool {
	return id >= Brass && id <= Copper
}

func (id ID) String() string {
	if !id.Valid() {
		return "unknown"
	}
	return table[id-1].name
}

// Resolve returns the properties for id. ok is false for unknown ids; callers
// keep whatever properties they had before.
func Resolve(id ID) (props Properties, ok bool) {
	if !id.Valid() {
		return Properties{}, false
	}
	return table[id-1].props, true
}

// Apply overwrites *props with the entry for id. Unknown ids leave *props
// untouched and return false.
func Apply(id ID, props *Properties) bool {
	p, ok := Resolve(id)
	if ok {
		*props = p
	}
	return ok
}

// All returns every material id in table order.
func All() []ID {
	ids := make([]ID, Count)
	for i := range ids {
		ids[i] = ID(i + 1)
	}
	return ids
}

// Parse maps a material name to its id.
func Parse(name string) (ID, bool) {
	for i, e := range table {
		if e.name == name {
			return ID(i + 1), true
		}
	}
	return 0, false
}
