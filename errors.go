package gitversion

import (
	"errors"
	"fmt"

	platformerrors "github.com/jmgilman/go/errors"
)

// Sentinel errors identifying each failure kind. Returned errors wrap one of
// these and can be matched with errors.Is.
var (
	ErrRepositoryNotFound = errors.New("no enclosing git repository found")
	ErrInvalidRepository  = errors.New("invalid git repository")
	ErrBackendQuery       = errors.New("git backend query failed")
	ErrInvalidConfig      = errors.New("invalid version configuration")
)

// NewRepositoryNotFoundError reports that no .git entry exists at or above
// startDir.
func NewRepositoryNotFoundError(startDir string) error {
	return platformerrors.WrapWithContext(
		ErrRepositoryNotFound,
		platformerrors.CodeNotFound,
		fmt.Sprintf("cannot find '.git' directory in %s or any parent directory", startDir),
		map[string]interface{}{"start_dir": startDir},
	)
}

// NewInvalidRepositoryError reports that the repository at root could not be
// opened or has no commits. The backend diagnostic is kept as the cause.
func NewInvalidRepositoryError(root string, cause error) error {
	err := ErrInvalidRepository
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidRepository, cause)
	}
	return platformerrors.WrapWithContext(
		err,
		platformerrors.CodeInvalidConfig,
		fmt.Sprintf("cannot read git repository at %s", root),
		map[string]interface{}{"root": root},
	)
}

// NewQueryError reports that the backend failed while running op.
func NewQueryError(op string, cause error) error {
	err := ErrBackendQuery
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrBackendQuery, cause)
	}
	return platformerrors.WrapWithContext(
		err,
		platformerrors.CodeExecutionFailed,
		fmt.Sprintf("git %s query failed", op),
		map[string]interface{}{"operation": op},
	)
}

// newConfigError reports a Config validation failure.
func newConfigError(format string, args ...interface{}) error {
	return platformerrors.Wrap(
		ErrInvalidConfig,
		platformerrors.CodeInvalidConfig,
		fmt.Sprintf(format, args...),
	)
}

// classified reports whether err already carries one of the package sentinels.
func classified(err error) bool {
	return errors.Is(err, ErrRepositoryNotFound) ||
		errors.Is(err, ErrInvalidRepository) ||
		errors.Is(err, ErrBackendQuery) ||
		errors.Is(err, ErrInvalidConfig)
}

// queryError passes classified errors through and wraps anything else from a
// third-party Backend as a query failure.
func queryError(op string, err error) error {
	if err == nil || classified(err) {
		return err
	}
	return NewQueryError(op, err)
}
