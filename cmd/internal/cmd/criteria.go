package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dynalint/dynalint/internal/artifact"
	"github.com/dynalint/dynalint/internal/selection"
)

// RegisterSelectionFlags adds the library selection flags shared by the
// check and list subcommands.
func RegisterSelectionFlags(flags *pflag.FlagSet) {
	flags.StringSlice(LibFlag, nil, "name of a library to select (repeatable)")
	flags.Bool(AllFlag, false, "select every discoverable library")
	flags.String(PathFlag, "", "select the libraries of one local source directory only")
	flags.String(GitFlag, "", "select the libraries of one remote source location only")
	flags.String(BranchFlag, "", "branch of the --git source")
	flags.String(TagFlag, "", "tag of the --git source")
	flags.String(RevFlag, "", "revision of the --git source")
	flags.String(PatternFlag, "", "informational name glob, used for listing only")
}

// CriteriaFromFlags builds the selection criteria from the registered
// selection flags.
func CriteriaFromFlags(cmd *cobra.Command) (selection.Criteria, error) {
	var c selection.Criteria
	var err error

	if c.Names, err = cmd.Flags().GetStringSlice(LibFlag); err != nil {
		return c, err
	}
	if c.All, err = cmd.Flags().GetBool(AllFlag); err != nil {
		return c, err
	}
	if c.All && len(c.Names) > 0 {
		return c, fmt.Errorf("--%s and --%s are mutually exclusive", AllFlag, LibFlag)
	}
	if c.Path, err = cmd.Flags().GetString(PathFlag); err != nil {
		return c, err
	}
	if c.Pattern, err = cmd.Flags().GetString(PatternFlag); err != nil {
		return c, err
	}

	url, err := cmd.Flags().GetString(GitFlag)
	if err != nil {
		return c, err
	}
	branch, err := cmd.Flags().GetString(BranchFlag)
	if err != nil {
		return c, err
	}
	tag, err := cmd.Flags().GetString(TagFlag)
	if err != nil {
		return c, err
	}
	rev, err := cmd.Flags().GetString(RevFlag)
	if err != nil {
		return c, err
	}

	refs := 0
	for _, v := range []string{branch, tag, rev} {
		if v != "" {
			refs++
		}
	}
	if refs > 1 {
		return c, fmt.Errorf("at most one of --%s, --%s and --%s may be set", BranchFlag, TagFlag, RevFlag)
	}
	if refs == 1 && url == "" {
		return c, fmt.Errorf("--%s, --%s and --%s require --%s", BranchFlag, TagFlag, RevFlag, GitFlag)
	}
	if url != "" {
		spec := artifact.RemoteSourceSpec{URL: url}
		switch {
		case branch != "":
			spec.Ref, spec.Kind = branch, artifact.RefBranch
		case tag != "":
			spec.Ref, spec.Kind = tag, artifact.RefTag
		case rev != "":
			spec.Ref, spec.Kind = rev, artifact.RefRevision
		}
		c.Remote = &spec
	}

	if c.Path != "" && c.Remote != nil {
		return c, fmt.Errorf("--%s and --%s are mutually exclusive", PathFlag, GitFlag)
	}

	return c, nil
}
