package gogit

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/go-git/go-git/v5/storage/filesystem/dotgit"
	"github.com/jmgilman/go/gitversion"
)

const (
	dotGit        = ".git"
	gitdirPrefix  = "gitdir:"
	commondirFile = "commondir"
)

// Repository is a read-only view of a git repository answering the queries
// of gitversion.Backend.
type Repository struct {
	root string
	repo *gogit.Repository
	fs   billy.Filesystem
}

var _ gitversion.Backend = (*Repository)(nil)

// Option configures Open.
type Option func(*options)

type options struct {
	fs billy.Filesystem
}

// WithFilesystem sets the billy filesystem the repository is read from. Paths
// passed to Open are resolved inside it. Defaults to osfs.New("/").
//
// Example:
//
//	repo, err := gogit.Open("/project", gogit.WithFilesystem(memfs.New()))
func WithFilesystem(fs billy.Filesystem) Option {
	return func(opts *options) {
		opts.fs = fs
	}
}

// Open opens the repository whose working tree is root. root must contain a
// .git directory or a .git file pointing at the git directory.
//
// Returns an error wrapping gitversion.ErrInvalidRepository if the metadata
// cannot be read as a repository.
func Open(root string, opts ...Option) (*Repository, error) {
	// Apply options with defaults
	options := &options{
		fs: osfs.New("/"),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Create a filesystem scoped to the working tree
	worktreeFs, err := options.fs.Chroot(root)
	if err != nil {
		return nil, gitversion.NewInvalidRepositoryError(root, classifyError(err))
	}

	dotGitFs, err := resolveDotGit(options.fs, root)
	if err != nil {
		return nil, gitversion.NewInvalidRepositoryError(root, classifyError(err))
	}

	storage := filesystem.NewStorage(dotGitFs, cache.NewObjectLRUDefault())

	repo, err := gogit.Open(storage, worktreeFs)
	if err != nil {
		return nil, gitversion.NewInvalidRepositoryError(root, classifyError(err))
	}

	return &Repository{
		root: root,
		repo: repo,
		fs:   worktreeFs,
	}, nil
}

// resolveDotGit returns a filesystem scoped to the git directory of root,
// following a .git file and a commondir file when present.
func resolveDotGit(fs billy.Filesystem, root string) (billy.Filesystem, error) {
	dotGitPath := filepath.Join(root, dotGit)

	stat, err := fs.Stat(dotGitPath)
	if err != nil {
		return nil, err
	}

	// Standard repository with .git directory
	if stat.IsDir() {
		return fs.Chroot(dotGitPath)
	}

	// Linked worktree or submodule: .git is a file naming the git directory
	content, err := util.ReadFile(fs, dotGitPath)
	if err != nil {
		return nil, err
	}

	line := strings.TrimSpace(string(content))
	if !strings.HasPrefix(line, gitdirPrefix) {
		return nil, fmt.Errorf("%s: missing %q line", dotGitPath, gitdirPrefix)
	}

	gitDir := strings.TrimSpace(strings.TrimPrefix(line, gitdirPrefix))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}

	gitDirFs, err := fs.Chroot(gitDir)
	if err != nil {
		return nil, err
	}

	// Linked worktrees share objects and refs with the main repository
	common, err := util.ReadFile(gitDirFs, commondirFile)
	if err != nil {
		return gitDirFs, nil //nolint:nilerr // no commondir means a self-contained git directory
	}

	commonDir := strings.TrimSpace(string(common))
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(gitDir, commonDir)
	}

	commonFs, err := fs.Chroot(commonDir)
	if err != nil {
		return nil, err
	}

	return dotgit.NewRepositoryFilesystem(gitDirFs, commonFs), nil
}

// Root returns the working tree directory the repository was opened from.
func (r *Repository) Root() string {
	return r.root
}

// Underlying returns the underlying go-git Repository for advanced operations
// not covered by this wrapper.
func (r *Repository) Underlying() *gogit.Repository {
	return r.repo
}

// Filesystem returns the billy.Filesystem scoped to the working tree.
func (r *Repository) Filesystem() billy.Filesystem {
	return r.fs
}
