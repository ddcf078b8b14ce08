// Package enum implements a pflag.Value restricted to one value out of a
// fixed option set. The first option acts as the default.
package enum

import (
	"fmt"
	"slices"

	"github.com/spf13/pflag"
)

const Type = "enum"

// Flag holds the currently selected option.
type Flag struct {
	selected string
	options  []string
}

// New returns an enum flag over the given options. The first option is the
// default. Panics when no options are given, since an empty enum can never
// be set.
func New(options ...string) *Flag {
	if len(options) == 0 {
		panic("enum flag needs at least one option")
	}
	return &Flag{selected: options[0], options: options}
}

func (f *Flag) Type() string { return Type }

func (f *Flag) String() string { return f.selected }

func (f *Flag) Set(value string) error {
	if !slices.Contains(f.options, value) {
		return fmt.Errorf("expected one of %q", f.options)
	}
	f.selected = value
	return nil
}

// Var registers an enum flag on the flag set, appending the option list to
// the usage string.
func Var(f *pflag.FlagSet, name string, options []string, usage string) {
	f.Var(New(options...), name, usageWithOptions(usage, options))
}

// VarP is Var with a shorthand.
func VarP(f *pflag.FlagSet, name, shorthand string, options []string, usage string) {
	f.VarP(New(options...), name, shorthand, usageWithOptions(usage, options))
}

func usageWithOptions(usage string, options []string) string {
	sorted := slices.Clone(options)
	slices.Sort(sorted)
	return fmt.Sprintf("%s\n(must be one of %v)", usage, sorted)
}

// Get reads the current value of an enum flag registered on the flag set.
func Get(f *pflag.FlagSet, name string) (string, error) {
	flag := f.Lookup(name)
	if flag == nil {
		return "", fmt.Errorf("flag accessed but not defined: %s", name)
	}
	if flag.Value.Type() != Type {
		return "", fmt.Errorf("flag %s is a %s, not an enum", name, flag.Value.Type())
	}
	return flag.Value.String(), nil
}
