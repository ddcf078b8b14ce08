package enum

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("panics without options", func(t *testing.T) {
		assert.Panics(t, func() {
			New()
		})
	})

	t.Run("first option is the default", func(t *testing.T) {
		flag := New("table", "json", "yaml")
		assert.Equal(t, "table", flag.String())
	})
}

func TestFlag_Set(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expectError bool
	}{
		{name: "valid value", value: "json"},
		{name: "invalid value", value: "xml", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := New("table", "json", "yaml")
			err := flag.Set(tt.value)
			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, "table", flag.String())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.value, flag.String())
			}
		})
	}
}

func TestGet(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Var(fs, "output", []string{"table", "json", "yaml"}, "output format")

	t.Run("reads the set value", func(t *testing.T) {
		assert.NoError(t, fs.Set("output", "yaml"))

		value, err := Get(fs, "output")
		assert.NoError(t, err)
		assert.Equal(t, "yaml", value)
	})

	t.Run("errors on an unknown flag", func(t *testing.T) {
		_, err := Get(fs, "missing")
		assert.Error(t, err)
	})
}

func TestVar(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	options := []string{"table", "json", "yaml"}

	Var(fs, "output", options, "output format")
	assert.NotNil(t, fs.Lookup("output"))

	VarP(fs, "format", "f", options, "output format")
	flag := fs.Lookup("format")
	assert.NotNil(t, flag)
	assert.Equal(t, "f", flag.Shorthand)
}
