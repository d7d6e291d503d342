// Package locate finds the git repository enclosing a directory.
//
// The search walks from a start directory towards the filesystem root and
// stops at the first directory holding a .git entry. Only existence is
// checked, so the .git file used by linked worktrees and submodules counts
// the same as a .git directory.
//
// All lookups go through a billy.Filesystem, which defaults to the OS
// filesystem and can be replaced with memfs in tests.
package locate

import (
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/jmgilman/go/gitversion"
)

// DotGit is the name of the git metadata entry.
const DotGit = ".git"

// Scan returns the path of the nearest .git entry at or above startDir.
// Relative start directories are resolved against the working directory of
// the process.
//
// When no ancestor holds one, Scan returns the .git candidate at the
// filesystem root, which does not exist. Callers must check existence; Root
// does so.
//
// A nil fs selects the OS filesystem.
func Scan(fs billy.Filesystem, startDir string) string {
	if fs == nil {
		fs = osfs.New("/")
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = filepath.Clean(startDir)
	}
	for {
		candidate := filepath.Join(dir, DotGit)
		if exists(fs, candidate) {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return candidate
		}
		dir = parent
	}
}

// Root returns the directory containing the nearest .git entry at or above
// startDir. Relative start directories are resolved against the working
// directory of the process.
//
// Returns an error wrapping gitversion.ErrRepositoryNotFound when the scan
// reaches the filesystem root without finding one.
//
// Example:
//
//	root, err := locate.Root(nil, "/home/user/project/src/pkg")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(root) // /home/user/project
func Root(fs billy.Filesystem, startDir string) (string, error) {
	if fs == nil {
		fs = osfs.New("/")
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", gitversion.NewRepositoryNotFoundError(startDir)
	}
	startDir = abs

	gitPath := Scan(fs, startDir)
	if !exists(fs, gitPath) {
		return "", gitversion.NewRepositoryNotFoundError(startDir)
	}

	return filepath.Dir(gitPath), nil
}

// exists treats any stat failure as absence, including permission errors on
// intermediate directories.
func exists(fs billy.Filesystem, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}
