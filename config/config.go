// Package config loads gitversion settings from a file at the repository
// root.
//
// Files are written in CUE or YAML and validated against an embedded CUE
// schema, so typos in field names and out of range values are reported with
// their position instead of being silently ignored:
//
//	# .gitversion.yaml
//	prefix: my-lib@
//	match: ["v*"]
//	hashLength: 10
//	backend: cli
//	timeout: 5s
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/gitversion"
	"github.com/jmgilman/go/gitversion/cache"
	"github.com/jmgilman/go/gitversion/gitcli"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

// Backend names accepted in the backend field.
const (
	BackendGoGit = "go-git"
	BackendCLI   = "cli"
)

// FileNames lists the file names Discover looks for, in order of precedence.
var FileNames = []string{".gitversion.cue", ".gitversion.yaml", ".gitversion.yml"}

// File is the decoded content of a config file.
type File struct {
	Prefix     string   `json:"prefix,omitempty"`
	Match      []string `json:"match,omitempty"`
	SemverOnly bool     `json:"semverOnly,omitempty"`
	HashLength int      `json:"hashLength,omitempty"`
	Backend    string   `json:"backend,omitempty"`
	Timeout    string   `json:"timeout,omitempty"`

	timeout time.Duration
}

// Config returns the derivation settings of the file.
func (f *File) Config() gitversion.Config {
	return gitversion.Config{
		Prefix:     f.Prefix,
		Match:      f.Match,
		SemverOnly: f.SemverOnly,
		HashLength: f.HashLength,
	}
}

// TimeoutDuration returns the parsed timeout, zero when unset.
func (f *File) TimeoutDuration() time.Duration {
	return f.timeout
}

// BackendFactory returns the cache backend selected by the file.
func (f *File) BackendFactory() cache.BackendFactory {
	if f.Backend == BackendCLI {
		return cache.CLIBackend(gitcli.WithTimeout(f.timeout))
	}
	return cache.GoGitBackend()
}

// Discover loads the first file of FileNames present in root. It returns a
// nil File and an empty path when none exists.
func Discover(fs billy.Filesystem, root string) (*File, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(root, name)

		if _, err := fs.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, "", platformerrors.WrapWithContext(err, platformerrors.CodeCUELoadFailed,
				"failed to check for config file", map[string]interface{}{"path": path})
		}

		file, err := Load(fs, path)
		if err != nil {
			return nil, "", err
		}
		return file, path, nil
	}

	return nil, "", nil
}

// Load reads, validates and decodes the config file at path. Files ending in
// .cue are compiled as CUE; all others are parsed as YAML.
//
// Validation failures wrap gitversion.ErrInvalidConfig.
func Load(fs billy.Filesystem, path string) (*File, error) {
	data, err := util.ReadFile(fs, path)
	if err != nil {
		return nil, platformerrors.WrapWithContext(err, platformerrors.CodeCUELoadFailed,
			"failed to read config file", map[string]interface{}{"path": path})
	}

	ctx := cuecontext.New()

	value, err := compile(ctx, path, data)
	if err != nil {
		return nil, platformerrors.WrapWithContext(invalid(err), platformerrors.CodeCUEBuildFailed,
			fmt.Sprintf("failed to parse config file %s", path), map[string]interface{}{"path": path})
	}

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInternal, "embedded config schema is invalid")
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true), cue.All()); err != nil {
		return nil, platformerrors.WrapWithContext(invalid(err), platformerrors.CodeCUEValidationFailed,
			fmt.Sprintf("config file %s is invalid", path), map[string]interface{}{
				"path":    path,
				"details": cueerrors.Details(err, nil),
			})
	}

	var file File
	if err := unified.Decode(&file); err != nil {
		return nil, platformerrors.WrapWithContext(invalid(err), platformerrors.CodeCUEDecodeFailed,
			fmt.Sprintf("failed to decode config file %s", path), map[string]interface{}{"path": path})
	}

	if file.Timeout != "" {
		file.timeout, err = time.ParseDuration(file.Timeout)
		if err != nil {
			return nil, platformerrors.WrapWithContext(invalid(err), platformerrors.CodeInvalidConfig,
				fmt.Sprintf("config file %s has an invalid timeout", path), map[string]interface{}{"path": path})
		}
	}

	return &file, nil
}

func compile(ctx *cue.Context, path string, data []byte) (cue.Value, error) {
	if filepath.Ext(path) == ".cue" {
		value := ctx.CompileBytes(data, cue.Filename(path))
		return value, value.Err()
	}

	var fields map[string]interface{}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return cue.Value{}, err
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}

	value := ctx.Encode(fields)
	return value, value.Err()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", gitversion.ErrInvalidConfig, err)
}
