package cache

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/gitversion"
	"github.com/jmgilman/go/gitversion/gitcli"
	"github.com/jmgilman/go/gitversion/gogit"
	"github.com/jmgilman/go/gitversion/locate"
	"github.com/jmgilman/go/gitversion/timing"
)

// OpCompute is the timer entry covering the whole derivation.
const OpCompute = "compute"

// BackendFactory opens a git backend for the repository whose working tree is
// root. fs is the filesystem the root was located in.
type BackendFactory func(root string, fs billy.Filesystem) (gitversion.Backend, error)

// GoGitBackend returns a factory opening repositories with go-git through
// the located filesystem.
func GoGitBackend(opts ...gogit.Option) BackendFactory {
	return func(root string, fs billy.Filesystem) (gitversion.Backend, error) {
		all := append([]gogit.Option{gogit.WithFilesystem(fs)}, opts...)
		return gogit.Open(root, all...)
	}
}

// CLIBackend returns a factory running the git binary in root. The located
// filesystem is not used; the root must exist on the OS filesystem.
func CLIBackend(opts ...gitcli.Option) BackendFactory {
	return func(root string, _ billy.Filesystem) (gitversion.Backend, error) {
		return gitcli.Open(root, opts...)
	}
}

// Option configures New.
type Option func(*options)

type options struct {
	fs      billy.Filesystem
	backend BackendFactory
	timer   *timing.Timer
	logger  *slog.Logger
}

// WithFilesystem sets the filesystem the repository is located in. Defaults
// to osfs.New("/").
func WithFilesystem(fs billy.Filesystem) Option {
	return func(opts *options) {
		opts.fs = fs
	}
}

// WithBackend sets how the repository is opened. Defaults to GoGitBackend().
func WithBackend(factory BackendFactory) Option {
	return func(opts *options) {
		opts.backend = factory
	}
}

// WithTimer sets the timer durations are recorded in, so several services
// can report into one record. Defaults to a new timer per service.
func WithTimer(timer *timing.Timer) Option {
	return func(opts *options) {
		opts.timer = timer
	}
}

// WithLogger sets the logger for debug output. Defaults to discarding.
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// Service holds the version details computed for one repository.
// All values are fixed at construction.
type Service struct {
	root    string
	version string
	details gitversion.VersionDetails
	timer   *timing.Timer
}

// New finds the repository enclosing startDir and computes its version.
//
// Errors wrap gitversion.ErrRepositoryNotFound when no repository encloses
// startDir, gitversion.ErrInvalidRepository when its metadata cannot be read,
// gitversion.ErrBackendQuery when a git query fails, and
// gitversion.ErrInvalidConfig when cfg is invalid.
func New(startDir string, cfg gitversion.Config, opts ...Option) (*Service, error) {
	options := &options{
		fs:      osfs.New("/"),
		backend: GoGitBackend(),
		timer:   timing.New(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.logger.With("start_dir", startDir)

	root, err := locate.Root(options.fs, startDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("located repository", "root", root)

	backend, err := options.backend(root, options.fs)
	if err != nil {
		return nil, err
	}
	logger.Debug("opened git backend", "backend", fmt.Sprintf("%T", backend))

	var details *gitversion.Details
	err = options.timer.Time(OpCompute, func() error {
		var err error
		details, err = gitversion.NewDetails(timing.WrapBackend(options.timer, backend), cfg)
		return err
	})
	if err != nil {
		return nil, err
	}

	timed := timing.WrapDetails(options.timer, details)
	svc := &Service{
		root:    root,
		version: timed.Version(),
		details: timed,
		timer:   options.timer,
	}

	logger.Debug("computed version",
		"version", svc.version,
		"last_tag", details.LastTag(),
		"distance", details.CommitDistance(),
		"elapsed", options.timer.Total(),
	)

	return svc, nil
}

// Version returns the version string computed at construction.
func (s *Service) Version() string {
	return s.version
}

// Details returns the computed version details. Accessor calls are recorded
// in Timer.
func (s *Service) Details() gitversion.VersionDetails {
	return s.details
}

// Timer returns the timing record of the computation and later accessor
// calls.
func (s *Service) Timer() *timing.Timer {
	return s.timer
}

// Root returns the repository root the version was computed for.
func (s *Service) Root() string {
	return s.root
}
