package gitcli

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/jmgilman/go/exec"
	"github.com/jmgilman/go/gitversion"
)

// Repository answers gitversion.Backend queries by running git in root.
type Repository struct {
	root    string
	git     exec.Executor
	timeout time.Duration
}

var _ gitversion.Backend = (*Repository)(nil)

// Option configures Open.
type Option func(*options)

type options struct {
	executor exec.Executor
	timeout  time.Duration
}

// WithExecutor sets the executor git is run through. The executor receives
// "git" as the first argument of every Run call.
func WithExecutor(executor exec.Executor) Option {
	return func(opts *options) {
		opts.executor = executor
	}
}

// WithTimeout bounds every git invocation. Zero disables the limit.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		opts.timeout = timeout
	}
}

// Open verifies that root is inside a git repository and returns a backend
// bound to it.
func Open(root string, opts ...Option) (*Repository, error) {
	options := &options{}
	for _, opt := range opts {
		opt(options)
	}

	executor := options.executor
	if executor == nil {
		executor = exec.New(
			exec.WithInheritEnv(),
			exec.WithDisableColors(),
			exec.WithEnv(map[string]string{
				"GIT_OPTIONAL_LOCKS": "0",
				"LC_ALL":             "C",
			}),
		)
	}

	repo := &Repository{
		root:    root,
		git:     exec.NewWrapper(executor, "git"),
		timeout: options.timeout,
	}

	if _, err := repo.run("rev-parse", "--git-dir"); err != nil {
		return nil, gitversion.NewInvalidRepositoryError(root, err)
	}

	return repo, nil
}

// Root returns the directory git is run in.
func (r *Repository) Root() string {
	return r.root
}

// Head returns the full hash of the commit HEAD resolves to.
func (r *Repository) Head() (string, error) {
	out, err := r.run("rev-parse", "--verify", "--quiet", "HEAD^{commit}")
	if err != nil {
		if exitCode(err) == 1 {
			return "", gitversion.NewInvalidRepositoryError(r.root, errors.New("HEAD does not point at a commit"))
		}
		return "", gitversion.NewQueryError("head", err)
	}
	return strings.TrimSpace(out), nil
}

// Branch returns the short name of the checked out branch, or an empty string
// when HEAD is detached.
func (r *Repository) Branch() (string, error) {
	out, err := r.run("symbolic-ref", "--quiet", "--short", "HEAD")
	if err != nil {
		if exitCode(err) == 1 {
			return "", nil
		}
		return "", gitversion.NewQueryError("branch", err)
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether git status lists no changes, untracked files
// included.
func (r *Repository) IsClean() (bool, error) {
	out, err := r.run("status", "--porcelain", "--untracked-files=normal")
	if err != nil {
		return false, gitversion.NewQueryError("status", err)
	}
	return strings.TrimSpace(out) == "", nil
}

const tagFormat = "%(objectname)%09%(objecttype)%09%(*objectname)%09%(*objecttype)%09%(refname:strip=2)"

// chainedTag is a tag whose annotated object points at another tag object.
// for-each-ref only peels one level, so these are resolved separately.
type chainedTag struct {
	name   string
	object string
}

// Tags returns every tag name keyed by the hash of the commit it points at.
// Annotated tags are peeled, including tags of tags; tags that end at a tree
// or blob are skipped.
func (r *Repository) Tags() (map[string][]string, error) {
	out, err := r.run("for-each-ref", "--format="+tagFormat, "refs/tags")
	if err != nil {
		return nil, gitversion.NewQueryError("tags", err)
	}

	tags, chained, err := parseTags(out)
	if err != nil {
		return nil, gitversion.NewQueryError("tags", err)
	}

	for _, tag := range chained {
		commit, ok, err := r.peel(tag.object)
		if err != nil {
			return nil, gitversion.NewQueryError("tags", fmt.Errorf("peel tag %q: %w", tag.name, err))
		}
		if ok {
			tags[commit] = append(tags[commit], tag.name)
		}
	}
	return tags, nil
}

// peel resolves object to the commit at the end of its tag chain. ok is false
// when the chain ends at a tree or blob.
func (r *Repository) peel(object string) (string, bool, error) {
	out, err := r.run("rev-parse", "--verify", "--quiet", object+"^{commit}")
	if err != nil {
		if exitCode(err) == 1 {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(out), true, nil
}

func parseTags(out string) (map[string][]string, []chainedTag, error) {
	tags := make(map[string][]string)
	var chained []chainedTag
	for line := range strings.Lines(out) {
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, "\t", 5)
		if len(fields) != 5 {
			return nil, nil, fmt.Errorf("unexpected for-each-ref line %q", line)
		}
		object, objectType, peeled, peeledType, name := fields[0], fields[1], fields[2], fields[3], fields[4]

		switch {
		case peeledType == "commit":
			tags[peeled] = append(tags[peeled], name)
		case peeledType == "tag":
			chained = append(chained, chainedTag{name: name, object: peeled})
		case objectType == "commit":
			tags[object] = append(tags[object], name)
		}
	}
	return tags, chained, nil
}

// FirstParentHistory yields commit hashes from HEAD following first parents.
func (r *Repository) FirstParentHistory() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		out, err := r.run("rev-list", "--first-parent", "HEAD")
		if err != nil {
			yield("", gitversion.NewQueryError("history", err))
			return
		}

		for line := range strings.Lines(out) {
			hash := strings.TrimSpace(line)
			if hash == "" {
				continue
			}
			if !yield(hash, nil) {
				return
			}
		}
	}
}

// run executes git with args in the repository root and returns stdout.
// Failures carry the trimmed stderr of the invocation.
func (r *Repository) run(args ...string) (string, error) {
	executor := r.git.WithDir(r.root)
	if r.timeout > 0 {
		executor = executor.WithTimeout(r.timeout.String())
	}

	result, err := executor.Run(args...)
	if err != nil {
		var execErr *exec.ExecError
		if errors.As(err, &execErr) {
			if stderr := strings.TrimSpace(execErr.Stderr); stderr != "" {
				return "", fmt.Errorf("%w: %s", err, stderr)
			}
		}
		return "", err
	}

	return result.Stdout, nil
}

// exitCode returns the exit code of a failed git invocation, or -1 when the
// process did not run to completion.
func exitCode(err error) int {
	var execErr *exec.ExecError
	if errors.As(err, &execErr) {
		return execErr.ExitCode
	}
	return -1
}
