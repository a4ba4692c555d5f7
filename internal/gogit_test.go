package internal

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGitRepo(t *testing.T) (*GitProfileRepository, Scope) {
	t.Helper()
	scope := NewProjectScope(t.TempDir())

	require.NoError(t, InitRepository(scope))

	repo, err := NewGitProfileRepository(scope)
	require.NoError(t, err)
	return repo, scope
}

func mustProfile(t *testing.T, name string, pref Preference) *Profile {
	t.Helper()
	n, err := NewProfileName(name)
	require.NoError(t, err)
	return NewProfile(n, pref)
}

func TestGitProfileRepositorySaveAndGet(t *testing.T) {
	repo, _ := setupGitRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustProfile(t, "summer", natureSummer)))

	got, err := repo.Get(ctx, "summer")
	require.NoError(t, err)
	assert.Equal(t, ProfileName("summer"), got.Name)
	assert.Equal(t, natureSummer, got.Preference)

	exists, err := repo.Exists(ctx, "summer")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGitProfileRepositoryGetNotFound(t *testing.T) {
	repo, _ := setupGitRepo(t)

	_, err := repo.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitProfileRepositoryDelete(t *testing.T) {
	repo, _ := setupGitRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustProfile(t, "gone", natureSummer)))
	_, err := repo.Commit(ctx, "set: gone")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "gone"))

	exists, err := repo.Exists(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, repo.Delete(ctx, "gone"), ErrNotFound)
}

func TestGitProfileRepositoryList(t *testing.T) {
	repo, _ := setupGitRepo(t)
	ctx := context.Background()

	for _, name := range []string{"trip-b", "trip-a", "family"} {
		require.NoError(t, repo.Save(ctx, mustProfile(t, name, natureSummer)))
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ProfileName("family"), all[0].Name)
	assert.Equal(t, ProfileName("trip-a"), all[1].Name)

	trips, err := repo.List(ctx, "trip")
	require.NoError(t, err)
	assert.Len(t, trips, 2)
}

func TestGitProfileRepositoryCommitAndLog(t *testing.T) {
	repo, _ := setupGitRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustProfile(t, "summer", natureSummer)))
	c, err := repo.Commit(ctx, "set: summer")
	require.NoError(t, err)
	assert.Equal(t, "set: summer", c.Message)
	assert.Len(t, c.ShortHash(), 7)

	_, err = repo.Commit(ctx, "again")
	assert.ErrorIs(t, err, ErrNothingToCommit)

	commits, err := repo.Log(ctx, 0)
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "set: summer", commits[0].Message)
	assert.True(t, strings.HasPrefix(commits[1].Message, "init:"))

	limited, err := repo.Log(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestGitProfileRepositoryDiff(t *testing.T) {
	repo, _ := setupGitRepo(t)
	ctx := context.Background()

	diff, err := repo.Diff(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, diff)

	require.NoError(t, repo.Save(ctx, mustProfile(t, "summer", natureSummer)))

	diff, err = repo.Diff(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, diff, "+++ b/summer.yaml")
	assert.Contains(t, diff, "+type: Nature")

	_, err = repo.Commit(ctx, "set: summer")
	require.NoError(t, err)

	changed := natureSummer
	changed.Budget = "Low"
	require.NoError(t, repo.Save(ctx, mustProfile(t, "summer", changed)))

	diff, err = repo.Diff(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/summer.yaml")
	assert.Contains(t, diff, "-budget: Medium")
	assert.Contains(t, diff, "+budget: Low")

	_, err = repo.Commit(ctx, "set: summer cheaper")
	require.NoError(t, err)

	diff, err = repo.Diff(ctx, "HEAD~1")
	require.NoError(t, err)
	assert.Contains(t, diff, "+budget: Low")
}
