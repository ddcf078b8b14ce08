// Package version implements the version subcommand.
package version

import (
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	dynalintcmd "github.com/dynalint/dynalint/cmd/internal/cmd"
	"github.com/dynalint/dynalint/internal/driver"
	"github.com/dynalint/dynalint/internal/flags/enum"
)

// BuildVersion can be set at build time to override the module version:
//
//	-ldflags "-X github.com/dynalint/dynalint/cmd/version.BuildVersion=1.2.3"
var BuildVersion = ""

const (
	formatText = "text"
	formatJSON = "json"
)

// Info is the version report.
type Info struct {
	Version       string `json:"version"`
	DriverVersion string `json:"driverVersion"`
	GoVersion     string `json:"goVersion"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "version",
		Short:             "Print the dynalint build version",
		Args:              cobra.NoArgs,
		RunE:              run,
		DisableAutoGenTag: true,
	}
	enum.VarP(cmd.Flags(), dynalintcmd.OutputFlag, "o", []string{formatText, formatJSON}, "output format")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	info := Info{
		Version:       BuildVersion,
		DriverVersion: driver.APIVersion,
	}
	if build, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = build.GoVersion
		if info.Version == "" {
			info.Version = build.Main.Version
		}
	}
	if info.Version == "" {
		info.Version = "(devel)"
	}

	format, err := enum.Get(cmd.Flags(), dynalintcmd.OutputFlag)
	if err != nil {
		return err
	}
	if format == formatJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "dynalint %s (driver interface %s, %s)\n",
		info.Version, info.DriverVersion, info.GoVersion)
	return err
}
