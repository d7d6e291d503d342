// Package gitversion derives a descriptive version string from the state of a
// git repository.
//
// The package defines the VersionDetails capability, the Backend contract a
// git implementation must satisfy, and Details, the concrete computation that
// turns backend answers into a version. Backends live in the gogit (go-git
// library) and gitcli (spawned git binary) sub-packages. The cache package
// ties everything together for callers that need the version once per build.
//
// # Version Strings
//
// The version is derived from the nearest tag on the first-parent history of
// HEAD:
//
//	v1.2.3               HEAD is tagged and the working tree is clean
//	v1.2.3-4-gabcdef0    four commits past v1.2.3, clean working tree
//	v1.2.3.dirty         a tag is reachable but the working tree is dirty
//	abcdef0              no tag reachable, clean working tree
//	abcdef0.dirty        no tag reachable, dirty working tree
//
// When several tags point at the same commit, the lexicographically greatest
// tag name wins.
//
// # Configuration
//
// Config narrows the set of tags that participate:
//
//	details, err := gitversion.NewDetails(backend, gitversion.Config{
//	    Prefix: "my-service@",         // only tags starting with my-service@
//	    Match:  []string{"v*"},        // glob applied after the prefix is removed
//	    SemverOnly: true,              // ignore tags that are not semantic versions
//	})
//
// # Error Handling
//
// Errors are platform errors from github.com/jmgilman/go/errors wrapping one of
// the package sentinels, so both codes and errors.Is work:
//
//   - ErrRepositoryNotFound: no .git entry above the start directory
//   - ErrInvalidRepository: .git exists but cannot be read as a repository
//   - ErrBackendQuery: the backend failed while answering a query
//   - ErrInvalidConfig: Config failed validation
package gitversion
