package gogit

import (
	"errors"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/gitversion"
)

// wrapError classifies a go-git error and reports it as a failed query.
// If err is nil, returns nil.
func wrapError(err error, op string) error {
	if err == nil {
		return nil
	}
	return gitversion.NewQueryError(op, classifyError(err))
}

// classifyError maps go-git errors to platform error types while keeping the
// original error reachable through errors.Is. Unknown errors are passed
// through unchanged to preserve their original information.
func classifyError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gogit.ErrRepositoryNotExists):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "repository does not exist")
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "reference not found")
	case errors.Is(err, plumbing.ErrObjectNotFound):
		return platformerrors.Wrap(err, platformerrors.CodeNotFound, "object not found")
	case errors.Is(err, gogit.ErrIsBareRepository):
		return platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "repository has no working tree")
	}

	// Pass through unknown errors unchanged to preserve original information
	return err
}
