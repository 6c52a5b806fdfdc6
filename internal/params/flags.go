package params

import (
	"flag"
	"strings"
)

// Flags binds one command-line flag per parameter. Only flags that were set
// explicitly override a base parameter set.
type Flags struct {
	fs   *flag.FlagSet
	vals [Count]*float64
}

// RegisterFlags adds -<key> flags (underscores become dashes) to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	for i, s := range layout {
		usage := s.Name
		if s.Unit != "" {
			usage += " (" + s.Unit + ")"
		}
		f.vals[i] = fs.Float64(FlagName(s.ID), s.Default, usage)
	}
	return f
}

// FlagName is the command-line name of id.
func FlagName(id ID) string {
	s, _ := Lookup(id)
	return strings.ReplaceAll(s.Key, "_", "-")
}

// Apply returns base with every explicitly set flag applied, clamped.
func (f *Flags) Apply(base Values) Values {
	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	for i, s := range layout {
		if set[FlagName(s.ID)] {
			base[i] = s.Clamp(*f.vals[i])
		}
	}
	return base
}
