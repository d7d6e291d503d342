// Package commands implements the CLI commands for gitversion.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/gitversion"
	"github.com/jmgilman/go/gitversion/cache"
	"github.com/jmgilman/go/gitversion/config"
	"github.com/jmgilman/go/gitversion/gitcli"
	"github.com/jmgilman/go/gitversion/locate"
	"github.com/spf13/cobra"
)

// CLI represents the command line interface for gitversion.
type CLI struct {
	fs      billy.Filesystem
	rootCmd *cobra.Command
	flags   flags
}

type flags struct {
	dir        string
	prefix     string
	match      []string
	semverOnly bool
	hashLength int
	backend    string
	timeout    time.Duration
	configPath string
	timings    bool
	verbose    bool
}

// Option configures New.
type Option func(*CLI)

// WithFilesystem sets the filesystem repositories and config files are read
// from. Defaults to osfs.New("/"). The cli backend always reads the OS
// filesystem.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(c *CLI) {
		c.fs = fs
	}
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	c := &CLI{fs: osfs.New("/")}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd := &cobra.Command{
		Use:   "gitversion",
		Short: "Print the version derived from the enclosing git repository",
		Long: `Print a descriptive version for the git repository enclosing --dir.

The version is the nearest tag when HEAD is tagged and the tree is clean,
<tag>-<distance>-g<hash> when HEAD is past the tag, <tag>.dirty when the
tree has changes, and the abbreviated hash when no tag is reachable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := c.service(cmd)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), svc.Version())
			return c.printTimings(cmd.ErrOrStderr(), svc)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&c.flags.dir, "dir", "C", ".", "Directory to start the repository search from")
	pf.StringVar(&c.flags.prefix, "prefix", "", "Only consider tags with this prefix and strip it from the output")
	pf.StringArrayVar(&c.flags.match, "match", nil, "Only consider tags matching this glob (repeatable)")
	pf.BoolVar(&c.flags.semverOnly, "semver-only", false, "Only consider tags that are semantic versions")
	pf.IntVar(&c.flags.hashLength, "hash-length", gitversion.DefaultHashLength, "Length of the abbreviated commit hash")
	pf.StringVar(&c.flags.backend, "backend", config.BackendGoGit, "Git implementation to use: go-git or cli")
	pf.DurationVar(&c.flags.timeout, "timeout", 0, "Limit for each git invocation of the cli backend")
	pf.StringVar(&c.flags.configPath, "config", "", "Config file to load instead of discovering one at the repository root")
	pf.BoolVar(&c.flags.timings, "timings", false, "Print the timing record as JSON on stderr")
	pf.BoolVarP(&c.flags.verbose, "verbose", "v", false, "Log debug output on stderr")

	c.rootCmd = rootCmd
	rootCmd.AddCommand(c.newDetailsCmd())

	return c
}

// Execute runs the root command.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// service builds the cache service from the config file and flags. Flags
// that were set explicitly override file values.
func (c *CLI) service(cmd *cobra.Command) (*cache.Service, error) {
	level := slog.LevelWarn
	if c.flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	file, err := c.loadConfig(logger)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("prefix") {
		file.Prefix = c.flags.prefix
	}
	if changed("match") {
		file.Match = c.flags.match
	}
	if changed("semver-only") {
		file.SemverOnly = c.flags.semverOnly
	}
	if changed("hash-length") || file.HashLength == 0 {
		file.HashLength = c.flags.hashLength
	}
	if changed("backend") || file.Backend == "" {
		file.Backend = c.flags.backend
	}

	factory, err := c.backendFactory(file, changed("timeout"))
	if err != nil {
		return nil, err
	}

	return cache.New(c.flags.dir, file.Config(),
		cache.WithFilesystem(c.fs),
		cache.WithBackend(factory),
		cache.WithLogger(logger),
	)
}

// loadConfig loads --config, or the config file at the enclosing repository
// root. A relative --config is resolved against the working directory. A
// missing repository is left for cache.New to report.
func (c *CLI) loadConfig(logger *slog.Logger) (*config.File, error) {
	if c.flags.configPath != "" {
		path, err := filepath.Abs(c.flags.configPath)
		if err != nil {
			return nil, fmt.Errorf("resolve config path %q: %w", c.flags.configPath, err)
		}
		return config.Load(c.fs, path)
	}

	root, err := locate.Root(c.fs, c.flags.dir)
	if err != nil {
		return &config.File{}, nil //nolint:nilerr // reported by cache.New
	}

	file, path, err := config.Discover(c.fs, root)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return &config.File{}, nil
	}

	logger.Debug("loaded config file", "path", path)
	return file, nil
}

func (c *CLI) backendFactory(file *config.File, timeoutChanged bool) (cache.BackendFactory, error) {
	switch file.Backend {
	case config.BackendGoGit:
		return cache.GoGitBackend(), nil
	case config.BackendCLI:
		if timeoutChanged {
			return cache.CLIBackend(gitcli.WithTimeout(c.flags.timeout)), nil
		}
		return file.BackendFactory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: must be %s or %s", file.Backend, config.BackendGoGit, config.BackendCLI)
	}
}

func (c *CLI) printTimings(w io.Writer, svc *cache.Service) error {
	if !c.flags.timings {
		return nil
	}

	data, err := json.Marshal(svc.Timer())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, string(data))
	return nil
}
