// Package list implements the list subcommand: print the discoverable
// libraries without building or executing anything.
package list

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	dynalintcmd "github.com/dynalint/dynalint/cmd/internal/cmd"
	clictx "github.com/dynalint/dynalint/internal/context"
	"github.com/dynalint/dynalint/internal/flags/enum"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// Entry is one listed artifact.
type Entry struct {
	Name      string `json:"name"`
	Toolchain string `json:"toolchain"`
	Location  string `json:"location"`
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the discoverable analysis libraries",
		Long: `List prints every library discoverable through the plugin library path,
optionally filtered by name or by an informational glob pattern. Nothing is
built and nothing is executed; source locations (--path, --git) apply to
check only and are rejected here.`,
		Example: `  # list everything
  dynalint list --all

  # list matching names only, without toolchain or location metadata
  dynalint list --all --pattern 'unused_*' --no-metadata`,
		Args:              cobra.NoArgs,
		RunE:              run,
		DisableAutoGenTag: true,
	}

	dynalintcmd.RegisterSelectionFlags(cmd.Flags())
	cmd.Flags().Bool(dynalintcmd.NoMetadataFlag, false, "print names only")
	enum.VarP(cmd.Flags(), dynalintcmd.OutputFlag, "o",
		[]string{outputTable, outputJSON, outputYAML}, "output format")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := clictx.FromContext(ctx)

	criteria, err := dynalintcmd.CriteriaFromFlags(cmd)
	if err != nil {
		return err
	}
	if criteria.Bypass() {
		return fmt.Errorf("--%s and --%s select sources for check; list covers the library path only",
			dynalintcmd.PathFlag, dynalintcmd.GitFlag)
	}
	if err := criteria.CompilePattern(); err != nil {
		return err
	}
	noMetadata, err := cmd.Flags().GetBool(dynalintcmd.NoMetadataFlag)
	if err != nil {
		return err
	}
	format, err := enum.Get(cmd.Flags(), dynalintcmd.OutputFlag)
	if err != nil {
		return err
	}

	names, byName, err := c.Index().All(ctx)
	if err != nil {
		return err
	}

	var entries []Entry
	for _, name := range names {
		if !criteria.Admits(name) || !criteria.MatchesPattern(name) {
			continue
		}
		for _, e := range byName[name] {
			entries = append(entries, Entry{Name: name, Toolchain: e.Toolchain, Location: e.Location})
		}
	}

	if noMetadata {
		seen := make(map[string]struct{})
		for _, e := range entries {
			if _, dup := seen[e.Name]; dup {
				continue
			}
			seen[e.Name] = struct{}{}
			fmt.Fprintln(cmd.OutOrStdout(), e.Name)
		}
		return nil
	}

	switch format {
	case outputJSON:
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(entries)
	case outputYAML:
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshaling listing as YAML failed: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	default:
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"NAME", "TOOLCHAIN", "LOCATION"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Name, e.Toolchain, e.Location})
		}
		t.Render()
		return nil
	}
}
