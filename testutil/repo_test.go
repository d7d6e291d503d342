package testutil

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryRepo(t *testing.T) {
	repo, err := NewMemoryRepo("/project")
	require.NoError(t, err)

	info, err := repo.FS.Stat("/project/.git")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	head, err := repo.Repo.Reference(plumbing.HEAD, false)
	require.NoError(t, err)
	assert.Equal(t, plumbing.NewBranchReferenceName(DefaultBranch), head.Target())
}

func TestRepo_Commit(t *testing.T) {
	repo, err := NewMemoryRepo("/project")
	require.NoError(t, err)

	first, err := repo.Commit("first")
	require.NoError(t, err)
	second, err := repo.Commit("first")
	require.NoError(t, err)

	assert.Len(t, first, 40)
	assert.NotEqual(t, first, second, "identical messages must still produce distinct commits")

	commit, err := repo.Repo.CommitObject(plumbing.NewHash(second))
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{plumbing.NewHash(first)}, commit.ParentHashes)
}

func TestRepo_Merge(t *testing.T) {
	repo, err := NewMemoryRepo("/project")
	require.NoError(t, err)

	base, err := repo.Commit("base")
	require.NoError(t, err)
	require.NoError(t, repo.Checkout("feature", true))
	side, err := repo.Commit("side")
	require.NoError(t, err)
	require.NoError(t, repo.Checkout(DefaultBranch, false))

	merge, err := repo.Merge("merge feature", side)
	require.NoError(t, err)

	commit, err := repo.Repo.CommitObject(plumbing.NewHash(merge))
	require.NoError(t, err)
	assert.Equal(t, []plumbing.Hash{plumbing.NewHash(base), plumbing.NewHash(side)}, commit.ParentHashes)
}

func TestRepo_Tags(t *testing.T) {
	repo, err := NewMemoryRepo("/project")
	require.NoError(t, err)
	hash, err := repo.Commit("release")
	require.NoError(t, err)

	require.NoError(t, repo.Tag(TestTagName, hash))
	require.NoError(t, repo.AnnotatedTag(TestTagName2, hash, TestTagMessage))

	light, err := repo.Repo.Tag(TestTagName)
	require.NoError(t, err)
	assert.Equal(t, hash, light.Hash().String())

	annotated, err := repo.Repo.Tag(TestTagName2)
	require.NoError(t, err)
	tagObj, err := repo.Repo.TagObject(annotated.Hash())
	require.NoError(t, err)
	assert.Equal(t, hash, tagObj.Target.String())

	lightHash, err := repo.TagHash(TestTagName)
	require.NoError(t, err)
	assert.Equal(t, hash, lightHash)

	annotatedHash, err := repo.TagHash(TestTagName2)
	require.NoError(t, err)
	assert.Equal(t, annotated.Hash().String(), annotatedHash)
}

func TestRepo_WriteFileMakesTreeDirty(t *testing.T) {
	repo, err := NewMemoryRepo("/project")
	require.NoError(t, err)
	_, err = repo.CommitFile("README.md", "# Test\n", "add readme")
	require.NoError(t, err)

	wt, err := repo.Repo.Worktree()
	require.NoError(t, err)
	status, err := wt.Status()
	require.NoError(t, err)
	assert.True(t, status.IsClean())

	require.NoError(t, repo.WriteFile("README.md", "# Changed\n"))
	status, err = wt.Status()
	require.NoError(t, err)
	assert.False(t, status.IsClean())
}

func TestRepo_Detach(t *testing.T) {
	repo, err := NewMemoryRepo("/project")
	require.NoError(t, err)
	hash, err := repo.Commit("first")
	require.NoError(t, err)

	require.NoError(t, repo.Detach(hash))

	head, err := repo.Repo.Reference(plumbing.HEAD, false)
	require.NoError(t, err)
	assert.Equal(t, plumbing.HashReference, head.Type())
	assert.Equal(t, hash, head.Hash().String())
}
