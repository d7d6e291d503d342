package gitversion

// VersionDetails is an immutable snapshot of the version information derived
// from a repository. Implementations must be safe for concurrent readers.
type VersionDetails interface {
	// Version returns the descriptive version string.
	Version() string

	// BranchName returns the checked out branch, or an empty string when HEAD
	// is detached.
	BranchName() string

	// GitHash returns the abbreviated hash of HEAD.
	GitHash() string

	// GitHashFull returns the full hash of HEAD.
	GitHashFull() string

	// IsCleanTag reports whether HEAD is tagged and the working tree is clean.
	IsCleanTag() bool

	// CommitDistance returns the number of first-parent commits between the
	// last tag and HEAD. It is zero when no tag is reachable.
	CommitDistance() int

	// LastTag returns the nearest reachable tag with any configured prefix
	// removed, or an empty string when none is reachable.
	LastTag() string
}

// Details is the VersionDetails computed from a Backend by NewDetails.
// All fields are fixed at construction.
type Details struct {
	version  string
	branch   string
	hash     string
	hashFull string
	cleanTag bool
	distance int
	lastTag  string
}

var _ VersionDetails = (*Details)(nil)

// NewDetails queries the backend and derives the version. Construction is
// all-or-nothing: the first failing query aborts it and no Details is returned.
//
// Example:
//
//	repo, err := gogit.Open("/path/to/project")
//	if err != nil {
//	    return err
//	}
//	details, err := gitversion.NewDetails(repo, gitversion.Config{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(details.Version()) // v1.2.3-4-gabcdef0
func NewDetails(backend Backend, cfg Config) (*Details, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	full, err := backend.Head()
	if err != nil {
		return nil, queryError("head", err)
	}

	branch, err := backend.Branch()
	if err != nil {
		return nil, queryError("branch", err)
	}

	clean, err := backend.IsClean()
	if err != nil {
		return nil, queryError("status", err)
	}

	tags, err := backend.Tags()
	if err != nil {
		return nil, queryError("tags", err)
	}

	nearest, err := findNearestTag(backend, indexTags(tags, cfg))
	if err != nil {
		return nil, err
	}

	short := abbreviate(full, cfg.hashLength())

	return &Details{
		version:  describe(nearest, short, clean),
		branch:   branch,
		hash:     short,
		hashFull: full,
		cleanTag: clean && nearest.found && nearest.distance == 0,
		distance: nearest.distance,
		lastTag:  nearest.name,
	}, nil
}

// Version returns the descriptive version string.
func (d *Details) Version() string { return d.version }

// BranchName returns the checked out branch or an empty string.
func (d *Details) BranchName() string { return d.branch }

// GitHash returns the abbreviated hash of HEAD.
func (d *Details) GitHash() string { return d.hash }

// GitHashFull returns the full hash of HEAD.
func (d *Details) GitHashFull() string { return d.hashFull }

// IsCleanTag reports whether HEAD is tagged and the working tree is clean.
func (d *Details) IsCleanTag() bool { return d.cleanTag }

// CommitDistance returns the first-parent distance from the last tag to HEAD.
func (d *Details) CommitDistance() int { return d.distance }

// LastTag returns the nearest reachable tag or an empty string.
func (d *Details) LastTag() string { return d.lastTag }

// Summary is a plain value copy of a VersionDetails, suitable for encoding.
type Summary struct {
	Version        string `json:"version"`
	BranchName     string `json:"branchName,omitempty"`
	GitHash        string `json:"gitHash"`
	GitHashFull    string `json:"gitHashFull"`
	IsCleanTag     bool   `json:"isCleanTag"`
	CommitDistance int    `json:"commitDistance"`
	LastTag        string `json:"lastTag,omitempty"`
}

// Summarize copies every accessor of d into a Summary.
func Summarize(d VersionDetails) Summary {
	return Summary{
		Version:        d.Version(),
		BranchName:     d.BranchName(),
		GitHash:        d.GitHash(),
		GitHashFull:    d.GitHashFull(),
		IsCleanTag:     d.IsCleanTag(),
		CommitDistance: d.CommitDistance(),
		LastTag:        d.LastTag(),
	}
}
