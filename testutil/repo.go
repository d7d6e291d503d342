// Package testutil builds git repositories for tests. Repositories live on
// any billy filesystem, typically memfs, and are written with go-git so no
// git binary is needed.
package testutil

import (
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// Repo is a test repository with a working tree rooted at Root inside FS.
type Repo struct {
	// FS is the filesystem the repository was created in, not scoped to Root.
	FS billy.Filesystem

	// Root is the working tree directory inside FS.
	Root string

	// Repo is the underlying go-git repository.
	Repo *gogit.Repository

	commits int
}

// NewMemoryRepo creates a repository at root inside a fresh memory
// filesystem.
//
// Example:
//
//	repo, err := testutil.NewMemoryRepo("/project")
//	if err != nil {
//	    t.Fatal(err)
//	}
//	hash, err := repo.Commit("Initial commit")
func NewMemoryRepo(root string) (*Repo, error) {
	return NewRepo(memfs.New(), root)
}

// NewRepo initializes a repository at root inside fs with HEAD on
// DefaultBranch. The repository has no commits.
func NewRepo(fs billy.Filesystem, root string) (*Repo, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		//nolint:wrapcheck // Test utility - simple file operation error
		return nil, err
	}

	worktreeFs, err := fs.Chroot(root)
	if err != nil {
		//nolint:wrapcheck // Test utility - simple file operation error
		return nil, err
	}

	dotGitFs, err := worktreeFs.Chroot(".git")
	if err != nil {
		//nolint:wrapcheck // Test utility - simple file operation error
		return nil, err
	}

	storage := filesystem.NewStorage(dotGitFs, cache.NewObjectLRUDefault())
	repo, err := gogit.Init(storage, worktreeFs)
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return nil, err
	}

	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(DefaultBranch))
	if err := repo.Storer.SetReference(head); err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return nil, err
	}

	return &Repo{FS: fs, Root: root, Repo: repo}, nil
}

// Path joins elem onto Root.
func (r *Repo) Path(elem ...string) string {
	return filepath.Join(append([]string{r.Root}, elem...)...)
}

// Commit records an empty commit on top of HEAD and returns its hash.
func (r *Repo) Commit(message string) (string, error) {
	return r.commit(message, nil)
}

// Merge records a commit whose first parent is HEAD and whose remaining
// parents are the given hashes, and returns its hash.
func (r *Repo) Merge(message string, parents ...string) (string, error) {
	head, err := r.Repo.Head()
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return "", err
	}

	hashes := []plumbing.Hash{head.Hash()}
	for _, p := range parents {
		hashes = append(hashes, plumbing.NewHash(p))
	}
	return r.commit(message, hashes)
}

func (r *Repo) commit(message string, parents []plumbing.Hash) (string, error) {
	wt, err := r.Repo.Worktree()
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return "", err
	}

	sig := &object.Signature{
		Name:  TestAuthor,
		Email: TestEmail,
		When:  Epoch.Add(time.Duration(r.commits) * time.Minute),
	}
	r.commits++

	hash, err := wt.Commit(message, &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		Parents:           parents,
		AllowEmptyCommits: true,
	})
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return "", err
	}

	return hash.String(), nil
}

// Tag creates a lightweight tag pointing at commit.
func (r *Repo) Tag(name, commit string) error {
	_, err := r.Repo.CreateTag(name, plumbing.NewHash(commit), nil)
	//nolint:wrapcheck // Test utility - errors from go-git are transparent
	return err
}

// AnnotatedTag creates an annotated tag object for target. Target is usually a
// commit but may be another tag object, see TagHash.
func (r *Repo) AnnotatedTag(name, target, message string) error {
	_, err := r.Repo.CreateTag(name, plumbing.NewHash(target), &gogit.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  TestAuthor,
			Email: TestEmail,
			When:  Epoch,
		},
		Message: message,
	})
	//nolint:wrapcheck // Test utility - errors from go-git are transparent
	return err
}

// TagHash returns the hash refs/tags/<name> points at. For annotated tags this
// is the tag object rather than the commit.
func (r *Repo) TagHash(name string) (string, error) {
	ref, err := r.Repo.Tag(name)
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return "", err
	}
	return ref.Hash().String(), nil
}

// WriteFile writes content to path relative to Root, leaving it untracked or
// modified in the working tree.
func (r *Repo) WriteFile(path, content string) error {
	//nolint:wrapcheck // Test utility - simple file operation error
	return util.WriteFile(r.FS, r.Path(path), []byte(content), 0o644)
}

// Stage adds path to the index.
func (r *Repo) Stage(path string) error {
	wt, err := r.Repo.Worktree()
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return err
	}

	_, err = wt.Add(path)
	//nolint:wrapcheck // Test utility - errors from go-git are transparent
	return err
}

// CommitFile writes path, stages it and commits it.
func (r *Repo) CommitFile(path, content, message string) (string, error) {
	if err := r.WriteFile(path, content); err != nil {
		return "", err
	}
	if err := r.Stage(path); err != nil {
		return "", err
	}
	return r.Commit(message)
}

// Checkout switches HEAD to branch, creating it at the current HEAD when
// create is true.
func (r *Repo) Checkout(branch string, create bool) error {
	wt, err := r.Repo.Worktree()
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return err
	}

	//nolint:wrapcheck // Test utility - errors from go-git are transparent
	return wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
		Create: create,
	})
}

// Detach points HEAD directly at commit.
func (r *Repo) Detach(commit string) error {
	wt, err := r.Repo.Worktree()
	if err != nil {
		//nolint:wrapcheck // Test utility - errors from go-git are transparent
		return err
	}

	//nolint:wrapcheck // Test utility - errors from go-git are transparent
	return wt.Checkout(&gogit.CheckoutOptions{Hash: plumbing.NewHash(commit)})
}
