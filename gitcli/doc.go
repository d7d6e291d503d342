// Package gitcli implements gitversion.Backend by running the git binary.
//
// Every query is a single git invocation executed through the
// github.com/jmgilman/go/exec library with colors disabled and optional
// locks turned off, so reads never contend with a concurrent git process for
// the index lock. Use this backend when repositories rely on features go-git
// does not understand, such as partial clones or extensions.
//
// Example:
//
//	repo, err := gitcli.Open("/path/to/project", gitcli.WithTimeout(5*time.Second))
//	if err != nil {
//	    return err
//	}
//	details, err := gitversion.NewDetails(repo, gitversion.Config{})
package gitcli
