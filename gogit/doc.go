// Package gogit implements gitversion.Backend on top of go-git.
//
// The repository is opened through a billy filesystem, so the same code runs
// against the OS filesystem (osfs, the default) and in-memory filesystems
// (memfs) used by tests. No git binary is required.
//
// # Opening Repositories
//
// Open accepts the directory that contains the .git entry. Both layouts are
// supported:
//
//  1. A .git directory holding the repository itself
//  2. A .git file containing "gitdir: <path>", as written for linked
//     worktrees and submodules; a commondir file inside the referenced
//     directory is honoured
//
// Examples:
//
//	// Open from the local filesystem
//	repo, err := gogit.Open("/path/to/project")
//
//	// Open from a memory filesystem (for testing)
//	repo, err := gogit.Open("/project", gogit.WithFilesystem(fs))
//
// # Escape Hatches
//
// Underlying returns the go-git repository and Filesystem the billy
// filesystem scoped to the working tree, for operations not covered here.
package gogit
