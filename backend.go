package gitversion

import "iter"

// Backend answers the repository queries needed to derive a version.
//
// Implementations are expected to return errors built with
// NewInvalidRepositoryError or NewQueryError. Any other error is wrapped as
// an ErrBackendQuery failure by NewDetails.
//
// The gogit and gitcli packages provide implementations backed by the go-git
// library and the git binary respectively.
type Backend interface {
	// Head returns the full hash of the commit HEAD points to.
	Head() (string, error)

	// Branch returns the short name of the checked out branch, or an empty
	// string when HEAD is detached.
	Branch() (string, error)

	// IsClean reports whether the working tree has no staged, unstaged or
	// untracked changes.
	IsClean() (bool, error)

	// Tags returns tag names grouped by the full hash of the commit they
	// point to. Annotated tags are peeled to their commit.
	Tags() (map[string][]string, error)

	// FirstParentHistory yields full commit hashes starting at HEAD and
	// following first parents only.
	FirstParentHistory() iter.Seq2[string, error]
}
