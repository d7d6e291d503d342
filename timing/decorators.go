package timing

import (
	"iter"
	"time"

	"github.com/jmgilman/go/gitversion"
)

// Operation names recorded by the decorators.
const (
	OpVersion        = "Version"
	OpBranchName     = "BranchName"
	OpGitHash        = "GitHash"
	OpGitHashFull    = "GitHashFull"
	OpIsCleanTag     = "IsCleanTag"
	OpCommitDistance = "CommitDistance"
	OpLastTag        = "LastTag"

	OpGitHead    = "git.Head"
	OpGitBranch  = "git.Branch"
	OpGitIsClean = "git.IsClean"
	OpGitTags    = "git.Tags"
	OpGitHistory = "git.FirstParentHistory"
)

// measure records the time since start under op. Used as
// defer measure(timer, op, timer.clock()).
func measure(timer *Timer, op string, start time.Time) {
	timer.Record(op, timer.clock().Sub(start))
}

// details forwards to a VersionDetails and times every accessor.
type details struct {
	timer *Timer
	next  gitversion.VersionDetails
}

// WrapDetails returns a VersionDetails that forwards every call to next and
// records its duration in timer under the method name.
func WrapDetails(timer *Timer, next gitversion.VersionDetails) gitversion.VersionDetails {
	return &details{timer: timer, next: next}
}

func (d *details) Version() string {
	defer measure(d.timer, OpVersion, d.timer.clock())
	return d.next.Version()
}

func (d *details) BranchName() string {
	defer measure(d.timer, OpBranchName, d.timer.clock())
	return d.next.BranchName()
}

func (d *details) GitHash() string {
	defer measure(d.timer, OpGitHash, d.timer.clock())
	return d.next.GitHash()
}

func (d *details) GitHashFull() string {
	defer measure(d.timer, OpGitHashFull, d.timer.clock())
	return d.next.GitHashFull()
}

func (d *details) IsCleanTag() bool {
	defer measure(d.timer, OpIsCleanTag, d.timer.clock())
	return d.next.IsCleanTag()
}

func (d *details) CommitDistance() int {
	defer measure(d.timer, OpCommitDistance, d.timer.clock())
	return d.next.CommitDistance()
}

func (d *details) LastTag() string {
	defer measure(d.timer, OpLastTag, d.timer.clock())
	return d.next.LastTag()
}

// backend forwards to a Backend and times every query.
type backend struct {
	timer *Timer
	next  gitversion.Backend
}

// WrapBackend returns a Backend that forwards every query to next and records
// its duration in timer under the git.* operation names. History is timed
// from the first pull until iteration stops, so only the commits actually
// walked are paid for.
func WrapBackend(timer *Timer, next gitversion.Backend) gitversion.Backend {
	return &backend{timer: timer, next: next}
}

func (b *backend) Head() (string, error) {
	defer measure(b.timer, OpGitHead, b.timer.clock())
	return b.next.Head()
}

func (b *backend) Branch() (string, error) {
	defer measure(b.timer, OpGitBranch, b.timer.clock())
	return b.next.Branch()
}

func (b *backend) IsClean() (bool, error) {
	defer measure(b.timer, OpGitIsClean, b.timer.clock())
	return b.next.IsClean()
}

func (b *backend) Tags() (map[string][]string, error) {
	defer measure(b.timer, OpGitTags, b.timer.clock())
	return b.next.Tags()
}

func (b *backend) FirstParentHistory() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer measure(b.timer, OpGitHistory, b.timer.clock())
		for hash, err := range b.next.FirstParentHistory() {
			if !yield(hash, err) {
				return
			}
		}
	}
}
