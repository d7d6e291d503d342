package gitcli

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/jmgilman/go/exec"
	"github.com/jmgilman/go/gitversion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	hashA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	hashB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	hashT = "7777777777777777777777777777777777777777"
	hashU = "8888888888888888888888888888888888888888"
	hashV = "9999999999999999999999999999999999999999"
)

// mockExecutor records configuration calls and serves Run from expectations.
type mockExecutor struct {
	mock.Mock
	dirs     []string
	timeouts []string
}

func (m *mockExecutor) WithEnv(map[string]string) exec.Executor  { return m }
func (m *mockExecutor) WithContext(context.Context) exec.Executor { return m }
func (m *mockExecutor) WithDisableColors() exec.Executor          { return m }
func (m *mockExecutor) WithInheritEnv() exec.Executor             { return m }
func (m *mockExecutor) WithStdout(io.Writer) exec.Executor        { return m }
func (m *mockExecutor) WithStderr(io.Writer) exec.Executor        { return m }
func (m *mockExecutor) WithPassthrough() exec.Executor            { return m }
func (m *mockExecutor) Clone() exec.Executor                      { return m }

func (m *mockExecutor) WithDir(dir string) exec.Executor {
	m.dirs = append(m.dirs, dir)
	return m
}

func (m *mockExecutor) WithTimeout(timeout string) exec.Executor {
	m.timeouts = append(m.timeouts, timeout)
	return m
}

func (m *mockExecutor) Run(args ...string) (*exec.Result, error) {
	ret := m.Called(args)
	result, _ := ret.Get(0).(*exec.Result)
	return result, ret.Error(1)
}

func (m *mockExecutor) expect(stdout string, args ...string) {
	m.On("Run", append([]string{"git"}, args...)).Return(&exec.Result{Stdout: stdout}, nil).Once()
}

func (m *mockExecutor) fail(exitCode int, stderr string, args ...string) {
	full := append([]string{"git"}, args...)
	m.On("Run", full).Return(&exec.Result{Stderr: stderr, ExitCode: exitCode}, &exec.ExecError{
		Command:  full,
		ExitCode: exitCode,
		Stderr:   stderr,
		Err:      errors.New("exit status"),
	}).Once()
}

func openMock(t *testing.T, opts ...Option) (*Repository, *mockExecutor) {
	t.Helper()
	m := &mockExecutor{}
	m.expect(".git\n", "rev-parse", "--git-dir")

	repo, err := Open("/project", append([]Option{WithExecutor(m)}, opts...)...)
	require.NoError(t, err)
	return repo, m
}

func TestOpen(t *testing.T) {
	repo, m := openMock(t)
	assert.Equal(t, "/project", repo.Root())
	assert.Equal(t, []string{"/project"}, m.dirs)
	assert.Empty(t, m.timeouts)
	m.AssertExpectations(t)
}

func TestOpen_NotARepository(t *testing.T) {
	m := &mockExecutor{}
	m.fail(128, "fatal: not a git repository", "rev-parse", "--git-dir")

	_, err := Open("/tmp", WithExecutor(m))
	require.Error(t, err)
	assert.ErrorIs(t, err, gitversion.ErrInvalidRepository)
	assert.Contains(t, err.Error(), "not a git repository")
}

func TestWithTimeout(t *testing.T) {
	repo, m := openMock(t, WithTimeout(1500*time.Millisecond))
	m.expect("", "status", "--porcelain", "--untracked-files=normal")

	_, err := repo.IsClean()
	require.NoError(t, err)
	assert.Equal(t, []string{"1.5s", "1.5s"}, m.timeouts)
}

func TestHead(t *testing.T) {
	repo, m := openMock(t)
	m.expect(hashA+"\n", "rev-parse", "--verify", "--quiet", "HEAD^{commit}")

	head, err := repo.Head()
	require.NoError(t, err)
	assert.Equal(t, hashA, head)
}

func TestHead_Unborn(t *testing.T) {
	repo, m := openMock(t)
	m.fail(1, "", "rev-parse", "--verify", "--quiet", "HEAD^{commit}")

	_, err := repo.Head()
	require.Error(t, err)
	assert.ErrorIs(t, err, gitversion.ErrInvalidRepository)
}

func TestHead_Failure(t *testing.T) {
	repo, m := openMock(t)
	m.fail(128, "fatal: bad object", "rev-parse", "--verify", "--quiet", "HEAD^{commit}")

	_, err := repo.Head()
	require.Error(t, err)
	assert.ErrorIs(t, err, gitversion.ErrBackendQuery)
	assert.Contains(t, err.Error(), "fatal: bad object")
}

func TestBranch(t *testing.T) {
	repo, m := openMock(t)
	m.expect("feature/login\n", "symbolic-ref", "--quiet", "--short", "HEAD")
	m.fail(1, "", "symbolic-ref", "--quiet", "--short", "HEAD")

	branch, err := repo.Branch()
	require.NoError(t, err)
	assert.Equal(t, "feature/login", branch)

	branch, err = repo.Branch()
	require.NoError(t, err)
	assert.Empty(t, branch, "detached HEAD has no branch")
}

func TestIsClean(t *testing.T) {
	repo, m := openMock(t)
	m.expect("", "status", "--porcelain", "--untracked-files=normal")
	m.expect("?? notes.txt\n", "status", "--porcelain", "--untracked-files=normal")

	clean, err := repo.IsClean()
	require.NoError(t, err)
	assert.True(t, clean)

	clean, err = repo.IsClean()
	require.NoError(t, err)
	assert.False(t, clean)
}

func TestTags(t *testing.T) {
	repo, m := openMock(t)
	out := hashA + "\tcommit\t\t\tv1.0.0\n" +
		hashT + "\ttag\t" + hashB + "\tcommit\tv2.0.0\n" +
		hashB + "\tcommit\t\t\trelease/2.0\n" +
		hashT + "\ttag\t" + hashA + "\ttree\ttree-tag\n"
	m.expect(out, "for-each-ref", "--format="+tagFormat, "refs/tags")

	tags, err := repo.Tags()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		hashA: {"v1.0.0"},
		hashB: {"v2.0.0", "release/2.0"},
	}, tags)
}

func TestTags_PeelsTagChains(t *testing.T) {
	repo, m := openMock(t)
	out := hashA + "\tcommit\t\t\tv1.0.0\n" +
		hashU + "\ttag\t" + hashT + "\ttag\tv2.0.0\n" +
		hashV + "\ttag\t" + hashU + "\ttag\ttree-chain\n"
	m.expect(out, "for-each-ref", "--format="+tagFormat, "refs/tags")
	m.expect(hashB+"\n", "rev-parse", "--verify", "--quiet", hashT+"^{commit}")
	m.fail(1, "", "rev-parse", "--verify", "--quiet", hashU+"^{commit}")

	tags, err := repo.Tags()
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		hashA: {"v1.0.0"},
		hashB: {"v2.0.0"},
	}, tags)
	m.AssertExpectations(t)
}

func TestTags_PeelFailure(t *testing.T) {
	repo, m := openMock(t)
	m.expect(hashU+"\ttag\t"+hashT+"\ttag\tv2.0.0\n", "for-each-ref", "--format="+tagFormat, "refs/tags")
	m.fail(128, "fatal: bad object", "rev-parse", "--verify", "--quiet", hashT+"^{commit}")

	_, err := repo.Tags()
	require.Error(t, err)
	assert.ErrorIs(t, err, gitversion.ErrBackendQuery)
	assert.Contains(t, err.Error(), "v2.0.0")
}

func TestTags_Malformed(t *testing.T) {
	repo, m := openMock(t)
	m.expect("garbage\n", "for-each-ref", "--format="+tagFormat, "refs/tags")

	_, err := repo.Tags()
	require.Error(t, err)
	assert.ErrorIs(t, err, gitversion.ErrBackendQuery)
}

func TestFirstParentHistory(t *testing.T) {
	repo, m := openMock(t)
	m.expect(hashA+"\n"+hashB+"\n", "rev-list", "--first-parent", "HEAD")

	var hashes []string
	for hash, err := range repo.FirstParentHistory() {
		require.NoError(t, err)
		hashes = append(hashes, hash)
	}
	assert.Equal(t, []string{hashA, hashB}, hashes)
}

func TestFirstParentHistory_Failure(t *testing.T) {
	repo, m := openMock(t)
	m.fail(128, "fatal: ambiguous argument", "rev-list", "--first-parent", "HEAD")

	var errs []error
	for _, err := range repo.FirstParentHistory() {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], gitversion.ErrBackendQuery)
}
