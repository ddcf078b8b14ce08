// Package wsconfig loads the workspace configuration that declares plugin
// artifact specs and names the ecosystem build tool. The configuration file
// is optional; defaults apply when it is absent.
package wsconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/dynalint/dynalint/internal/artifact"
	"github.com/dynalint/dynalint/internal/locator"
)

// The workspace configuration may live in exactly one of these locations,
// relative to the working directory. Declaring libraries in more than one
// at once is ambiguous provenance and therefore a ConfigurationError.
var candidateFiles = []string{
	"dynalint.yaml",
	filepath.Join(".config", "dynalint.yaml"),
}

const defaultBuildTool = "cargo"

// DefaultOutputDir is the build-output directory relative to a source root.
func DefaultOutputDir() string { return filepath.Join("target", "release") }

// ConfigurationError reports a bad or ambiguously declared configuration.
// It is unconditionally fatal.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// LibrarySpec is one declared artifact source. Exactly one of Path, File,
// Git or Pattern must be set.
type LibrarySpec struct {
	// Path is a local source directory, relative to the working directory.
	Path string `json:"path,omitempty"`
	// File is an already built artifact file, relative to the working
	// directory.
	File string `json:"file,omitempty"`
	// Git is a remote source location.
	Git string `json:"git,omitempty"`
	// Branch, Tag and Rev pin the revision of a Git source; at most one
	// may be set.
	Branch string `json:"branch,omitempty"`
	Tag    string `json:"tag,omitempty"`
	Rev    string `json:"rev,omitempty"`
	// Pattern is an informational name glob for listing.
	Pattern string `json:"pattern,omitempty"`
}

// Config is the declared workspace configuration.
type Config struct {
	// BuildTool is the ecosystem build tool invoked for source artifacts
	// and for driver builds.
	BuildTool string `json:"buildTool,omitempty"`
	// OutputDir is the build-output directory relative to a source root.
	OutputDir string `json:"outputDir,omitempty"`
	// Libraries are the artifact specs declared by the workspace.
	Libraries []LibrarySpec `json:"libraries,omitempty"`
}

// Load reads the workspace configuration below dir. A missing file yields
// the defaults. A file present in more than one candidate location is a
// ConfigurationError, as is an unparsable file or an invalid spec.
func Load(dir string) (*Config, error) {
	var path string
	for _, candidate := range candidateFiles {
		full := filepath.Join(dir, candidate)
		if _, err := os.Stat(full); err != nil {
			continue
		}
		if path != "" {
			return nil, &ConfigurationError{
				Msg: fmt.Sprintf("workspace configuration declared in both %s and %s", path, full),
			}
		}
		path = full
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("cannot read %s", path), Err: err}
		}
		if err := yaml.UnmarshalStrict(data, cfg); err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("cannot parse %s", path), Err: err}
		}
	}

	if cfg.BuildTool == "" {
		cfg.BuildTool = defaultBuildTool
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir()
	}

	for i := range cfg.Libraries {
		if err := cfg.Libraries[i].validate(); err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("invalid library spec %d", i), Err: err}
		}
	}

	return cfg, nil
}

func (l *LibrarySpec) validate() error {
	set := 0
	for _, v := range []string{l.Path, l.File, l.Git, l.Pattern} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("exactly one of path, file, git or pattern must be set")
	}
	refs := 0
	for _, v := range []string{l.Branch, l.Tag, l.Rev} {
		if v != "" {
			refs++
		}
	}
	if refs > 1 {
		return fmt.Errorf("at most one of branch, tag or rev may be set")
	}
	if refs == 1 && l.Git == "" {
		return fmt.Errorf("branch, tag and rev require git")
	}
	return nil
}

// Specs converts the declared libraries into artifact specs, resolving
// local paths against dir. Pattern specs are informational and skipped.
func (c *Config) Specs(dir string) []artifact.Spec {
	var specs []artifact.Spec
	for _, l := range c.Libraries {
		switch {
		case l.Path != "":
			path := l.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			specs = append(specs, artifact.LocalSourceSpec{Dir: path})
		case l.File != "":
			path := l.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			specs = append(specs, artifact.PrebuiltSpec{Path: path})
		case l.Git != "":
			spec := artifact.RemoteSourceSpec{URL: l.Git}
			switch {
			case l.Branch != "":
				spec.Ref, spec.Kind = l.Branch, artifact.RefBranch
			case l.Tag != "":
				spec.Ref, spec.Kind = l.Tag, artifact.RefTag
			case l.Rev != "":
				spec.Ref, spec.Kind = l.Rev, artifact.RefRevision
			}
			specs = append(specs, spec)
		}
	}
	return specs
}

// LibraryPathRoots parses the PLUGIN_LIBRARY_PATH style list of prebuilt
// artifact search directories. Every entry must be absolute and must exist;
// a violation is a ConfigurationError.
func LibraryPathRoots(pathList string) ([]locator.Root, error) {
	var roots []locator.Root
	for _, dir := range filepath.SplitList(pathList) {
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			return nil, &ConfigurationError{
				Msg: fmt.Sprintf("plugin library path entry %q is not absolute", dir),
			}
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, &ConfigurationError{
				Msg: fmt.Sprintf("plugin library path entry %q does not exist", dir),
				Err: err,
			}
		}
		roots = append(roots, locator.Root{Dir: dir, Required: true})
	}
	return roots, nil
}
