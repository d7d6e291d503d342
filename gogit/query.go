package gogit

import (
	"errors"
	"fmt"
	"iter"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/jmgilman/go/gitversion"
)

// maxTagDepth bounds how many tag objects are followed when peeling a tag
// that points at another tag.
const maxTagDepth = 16

// Head returns the full hash of the commit HEAD resolves to.
//
// Returns an error wrapping gitversion.ErrInvalidRepository when HEAD is
// unborn (no commits on the checked out branch).
func (r *Repository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", gitversion.NewInvalidRepositoryError(r.root, fmt.Errorf("HEAD does not point at a commit: %w", err))
		}
		return "", wrapError(err, "head")
	}
	return ref.Hash().String(), nil
}

// Branch returns the short name of the checked out branch, or an empty string
// when HEAD is detached.
func (r *Repository) Branch() (string, error) {
	ref, err := r.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", wrapError(err, "branch")
	}

	if ref.Type() != plumbing.SymbolicReference {
		return "", nil
	}
	return ref.Target().Short(), nil
}

// IsClean reports whether the working tree has no staged, unstaged, or
// untracked changes. Repositories without a working tree are clean.
func (r *Repository) IsClean() (bool, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		if errors.Is(err, gogit.ErrIsBareRepository) {
			return true, nil
		}
		return false, wrapError(err, "status")
	}

	status, err := wt.Status()
	if err != nil {
		return false, wrapError(err, "status")
	}
	return status.IsClean(), nil
}

// Tags returns every tag name keyed by the hash of the commit it points at.
// Annotated tags are peeled to their commit; tags of trees or blobs are
// skipped.
func (r *Repository) Tags() (map[string][]string, error) {
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return nil, wrapError(err, "tags")
	}

	tags := make(map[string][]string)
	err = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		commit, ok, err := r.peel(ref.Hash())
		if err != nil {
			return fmt.Errorf("peel tag %q: %w", ref.Name().Short(), err)
		}
		if ok {
			tags[commit] = append(tags[commit], ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err, "tags")
	}

	return tags, nil
}

// peel follows annotated tag objects starting at hash until it reaches a
// non-tag object. ok is false when that object is not a commit.
func (r *Repository) peel(hash plumbing.Hash) (string, bool, error) {
	for range maxTagDepth {
		tagObj, err := r.repo.TagObject(hash)
		if errors.Is(err, plumbing.ErrObjectNotFound) {
			// Not an annotated tag, must be lightweight
			return hash.String(), true, nil
		}
		if err != nil {
			return "", false, err
		}

		switch tagObj.TargetType {
		case plumbing.CommitObject:
			return tagObj.Target.String(), true, nil
		case plumbing.TagObject:
			hash = tagObj.Target
		default:
			return "", false, nil
		}
	}
	return "", false, fmt.Errorf("tag chain at %s exceeds %d objects", hash, maxTagDepth)
}

// FirstParentHistory yields commit hashes starting at HEAD and following only
// the first parent of each commit. Iteration ends at a root commit or at the
// boundary of a shallow clone.
//
// Example:
//
//	for hash, err := range repo.FirstParentHistory() {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(hash)
//	}
func (r *Repository) FirstParentHistory() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		head, err := r.repo.Head()
		if err != nil {
			yield("", wrapError(err, "history"))
			return
		}

		shallow, err := r.shallowCommits()
		if err != nil {
			yield("", wrapError(err, "history"))
			return
		}

		commit, err := r.repo.CommitObject(head.Hash())
		if err != nil {
			yield("", wrapError(err, "history"))
			return
		}

		for {
			if !yield(commit.Hash.String(), nil) {
				return
			}
			if commit.NumParents() == 0 || shallow[commit.Hash] {
				return
			}

			commit, err = commit.Parent(0)
			if err != nil {
				yield("", wrapError(err, "history"))
				return
			}
		}
	}
}

func (r *Repository) shallowCommits() (map[plumbing.Hash]bool, error) {
	hashes, err := r.repo.Storer.Shallow()
	if err != nil {
		return nil, err
	}

	shallow := make(map[plumbing.Hash]bool, len(hashes))
	for _, h := range hashes {
		shallow[h] = true
	}
	return shallow, nil
}
