// Package log wires the logging flags into the CLI and constructs the
// slog.Logger the rest of the process uses.
package log

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	slogctx "github.com/veqryn/slog-context"

	"github.com/dynalint/dynalint/internal/flags/enum"
)

const (
	FormatFlagName = "logformat"
	FormatText     = "text"
	FormatJSON     = "json"

	LevelFlagName = "loglevel"
	LevelDebug    = "debug"
	LevelInfo     = "info"
	LevelWarn     = "warn"
	LevelError    = "error"

	OutputFlagName = "logoutput"
	OutputStdout   = "stdout"
	OutputStderr   = "stderr"
)

// RegisterLoggingFlags adds the logformat, loglevel and logoutput flags.
// They are meant to be registered persistently so every subcommand shares
// them.
func RegisterLoggingFlags(flagset *pflag.FlagSet) {
	enum.Var(flagset, FormatFlagName, []string{
		FormatText,
		FormatJSON,
	}, `set the log output format
   text: human-readable output for the console
   json: structured output for machine processing`)

	enum.Var(flagset, LevelFlagName, []string{
		LevelWarn,
		LevelDebug,
		LevelInfo,
		LevelError,
	}, `set the logging level
   debug: everything, including internal state
   info:  operational messages and above
   warn:  warnings and errors only (default)
   error: errors only`)

	enum.Var(flagset, OutputFlagName, []string{
		OutputStderr,
		OutputStdout,
	}, `set the log output destination
   stderr: keep logs separate from normal output (default)
   stdout: interleave logs with normal output`)
}

// GetBaseLogger builds the slog.Logger described by the command's flags.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := levelFromCommand(cmd)
	if err != nil {
		return nil, err
	}

	format, err := enum.Get(cmd.Flags(), FormatFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log format flag: %w", err)
	}

	output, err := enum.Get(cmd.Flags(), OutputFlagName)
	if err != nil {
		return nil, fmt.Errorf("failed to get the log output flag: %w", err)
	}

	var writer io.Writer
	switch output {
	case OutputStdout:
		writer = cmd.OutOrStdout()
	case OutputStderr:
		writer = cmd.ErrOrStderr()
	default:
		return nil, fmt.Errorf("invalid log output: %s", output)
	}

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: level})
	case FormatText:
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	// Attributes appended to the context travel into every record, so log
	// sites deep in the call tree inherit invocation-scoped fields.
	return slog.New(slogctx.NewHandler(handler, nil)), nil
}

func levelFromCommand(cmd *cobra.Command) (slog.Level, error) {
	name, err := enum.Get(cmd.Flags(), LevelFlagName)
	if err != nil {
		return slog.LevelWarn, fmt.Errorf("failed to get the log level flag: %w", err)
	}
	switch name {
	case LevelDebug:
		return slog.LevelDebug, nil
	case LevelInfo:
		return slog.LevelInfo, nil
	case LevelWarn:
		return slog.LevelWarn, nil
	case LevelError:
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", name)
	}
}
