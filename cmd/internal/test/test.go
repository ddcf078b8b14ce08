// Package test provides helpers for exercising the dynalint CLI
// in-process: running a command with arguments and parsing its JSON log
// output.
package test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/dynalint/dynalint/cmd"
	"github.com/dynalint/dynalint/internal/flags/log"
)

// Options configure one in-process CLI run.
type Options struct {
	args   []string
	out    io.Writer
	errOut io.Writer
	format string
}

type Option func(*Options)

// WithArgs sets the command line arguments.
func WithArgs(args ...string) Option {
	return func(o *Options) {
		o.args = args
	}
}

// WithOutput captures standard output.
func WithOutput(out io.Writer) Option {
	return func(o *Options) {
		o.out = out
	}
}

// WithErrOutput captures the diagnostic stream.
func WithErrOutput(out io.Writer) Option {
	return func(o *Options) {
		o.errOut = out
	}
}

// WithLogFormat overrides the log format; JSON is the default so tests can
// parse entries.
func WithLogFormat(format string) Option {
	return func(o *Options) {
		o.format = format
	}
}

// Dynalint runs the CLI once with the given options and returns the
// executed command and its error.
func Dynalint(tb testing.TB, opts ...Option) (*cobra.Command, error) {
	tb.Helper()

	opt := Options{format: log.FormatJSON}
	for _, o := range opts {
		o(&opt)
	}

	instance := cmd.New()
	if len(opt.args) == 0 {
		opt.args = []string{"help"}
	}
	if opt.out != nil {
		instance.SetOut(opt.out)
	}
	if opt.errOut != nil {
		instance.SetErr(opt.errOut)
	}

	f := instance.PersistentFlags().Lookup(log.FormatFlagName)
	if err := f.Value.Set(opt.format); err != nil {
		return nil, fmt.Errorf("failed to set log format: %w", err)
	}

	instance.SetArgs(opt.args)
	return instance.ExecuteContextC(tb.Context())
}

// JSONLogEntry is one structured log line.
type JSONLogEntry struct {
	Time  string `json:"time"`
	Level string `json:"level"`
	Msg   string `json:"msg"`

	Extras map[string]any `json:"-"`
}

func (l *JSONLogEntry) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["time"].(string); ok {
		l.Time = v
	}
	if v, ok := raw["level"].(string); ok {
		l.Level = v
	}
	if v, ok := raw["msg"].(string); ok {
		l.Msg = v
	}
	delete(raw, "time")
	delete(raw, "level")
	delete(raw, "msg")
	l.Extras = raw
	return nil
}

// JSONLogReader collects output and splits it into JSON log entries and
// everything else.
type JSONLogReader struct {
	*bytes.Buffer
	Discarded *bytes.Buffer
}

// NewJSONLogReader returns an empty reader ready to capture output.
func NewJSONLogReader() *JSONLogReader {
	return &JSONLogReader{
		Buffer:    bytes.NewBuffer(nil),
		Discarded: bytes.NewBuffer(nil),
	}
}

// List parses the captured buffer; non-JSON lines land in Discarded.
func (logs *JSONLogReader) List() ([]*JSONLogEntry, error) {
	scanner := bufio.NewScanner(logs.Buffer)
	var entries []*JSONLogEntry
	for scanner.Scan() {
		data := scanner.Bytes()
		entry := JSONLogEntry{}
		if err := json.Unmarshal(data, &entry); err == nil {
			entries = append(entries, &entry)
		} else if _, err := logs.Discarded.Write(append(data, '\n')); err != nil {
			return nil, err
		}
	}
	return entries, scanner.Err()
}
