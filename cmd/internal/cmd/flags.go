package cmd

const (
	// WorkingDirectoryFlag selects the project directory the workspace
	// configuration is loaded from and checks run in.
	WorkingDirectoryFlag = "working-directory"

	// LibFlag names one library to select; repeatable.
	LibFlag = "lib"
	// AllFlag selects every discoverable library.
	AllFlag = "all"
	// PathFlag restricts candidates to one local source directory.
	PathFlag = "path"
	// GitFlag restricts candidates to one remote source location.
	GitFlag = "git"
	// BranchFlag, TagFlag and RevFlag pin the revision of a GitFlag
	// source; at most one may be set.
	BranchFlag = "branch"
	TagFlag    = "tag"
	RevFlag    = "rev"
	// PatternFlag is an informational name glob, used for listing only.
	PatternFlag = "pattern"

	// NoBuildFlag trusts that artifacts already exist and skips builds.
	NoBuildFlag = "no-build"
	// NoDepsFlag forwards the corresponding flag to the check tool.
	NoDepsFlag = "no-deps"
	// KeepGoingFlag runs every partition even after failures.
	KeepGoingFlag = "keep-going"

	// NoMetadataFlag lists names only.
	NoMetadataFlag = "no-metadata"
	// OutputFlag selects the listing output format.
	OutputFlag = "output"

	// EnvLibraryPath is the path list of prebuilt-artifact search
	// directories.
	EnvLibraryPath = "PLUGIN_LIBRARY_PATH"
)
