package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/filesystem"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBranch = "main"
	DefaultAuthor = "wander"
	DefaultEmail  = "wander@local"

	profileExt   = ".yaml"
	initFilename = ".wander-init"
)

var (
	_ ProfileRepository = (*GitProfileRepository)(nil)
	_ HistoryRepository = (*GitProfileRepository)(nil)
)

// GitProfileRepository stores one YAML file per profile and versions them with git.
// Profile files are read and written through the worktree filesystem.
type GitProfileRepository struct {
	repo     *git.Repository
	worktree *git.Worktree
	files    billy.Filesystem
}

func openStorage(scope Scope) (*filesystem.Storage, billy.Filesystem) {
	dot := osfs.New(scope.HistoryPath())
	return filesystem.NewStorage(dot, cache.NewObjectLRUDefault()), osfs.New(scope.ProfilePath())
}

func NewGitProfileRepository(scope Scope) (*GitProfileRepository, error) {
	if _, err := os.Stat(scope.HistoryPath()); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("profiles not initialized in %s (run wander init)", scope.StatePath)
	}

	storage, files := openStorage(scope)
	repo, err := git.Open(storage, files)
	if err != nil {
		return nil, fmt.Errorf("open profile history: %w", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open profile worktree: %w", err)
	}

	return &GitProfileRepository{repo: repo, worktree: worktree, files: files}, nil
}

func InitRepository(scope Scope) error {
	for _, dir := range []string{scope.ProfilePath(), scope.HistoryPath()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	storage, wt := openStorage(scope)

	repo, err := git.Init(storage, wt)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}

	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}
	cfg.Init.DefaultBranch = DefaultBranch
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}

	if err := util.WriteFile(wt, initFilename, []byte("wander profiles initialized\n"), 0644); err != nil {
		return fmt.Errorf("write init file: %w", err)
	}

	if _, err := worktree.Add(initFilename); err != nil {
		return fmt.Errorf("stage init file: %w", err)
	}

	_, err = worktree.Commit("init: initialize wander profiles", &git.CommitOptions{
		Author: signature(),
	})
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	return nil
}

// ProfileRepository implementation

func fileName(name ProfileName) string { return name.String() + profileExt }

func (r *GitProfileRepository) Get(_ context.Context, name ProfileName) (*Profile, error) {
	info, err := r.files.Stat(fileName(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat profile %s: %w", name, err)
	}
	return r.readProfile(name, info)
}

func (r *GitProfileRepository) Save(_ context.Context, p *Profile) error {
	data, err := yaml.Marshal(p.Preference)
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", p.Name, err)
	}
	if err := util.WriteFile(r.files, fileName(p.Name), data, 0644); err != nil {
		return fmt.Errorf("write profile %s: %w", p.Name, err)
	}
	if _, err := r.worktree.Add(fileName(p.Name)); err != nil {
		return fmt.Errorf("stage profile %s: %w", p.Name, err)
	}
	return nil
}

func (r *GitProfileRepository) Delete(ctx context.Context, name ProfileName) error {
	exists, err := r.Exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	if _, err := r.worktree.Remove(fileName(name)); err != nil {
		return fmt.Errorf("remove profile %s: %w", name, err)
	}
	return nil
}

// List returns the profiles whose names start with prefix, sorted by name.
// Files that are not valid profile names are skipped.
func (r *GitProfileRepository) List(_ context.Context, prefix string) ([]*Profile, error) {
	infos, err := r.files.ReadDir("/")
	if err != nil {
		return nil, fmt.Errorf("read profiles: %w", err)
	}

	var profiles []*Profile
	for _, info := range infos {
		base, ok := strings.CutSuffix(info.Name(), profileExt)
		if info.IsDir() || !ok || !strings.HasPrefix(base, prefix) {
			continue
		}
		name, err := NewProfileName(base)
		if err != nil {
			continue
		}
		p, err := r.readProfile(name, info)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

func (r *GitProfileRepository) Exists(_ context.Context, name ProfileName) (bool, error) {
	_, err := r.files.Stat(fileName(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, err
	}
}

// HistoryRepository implementation

func (r *GitProfileRepository) Commit(ctx context.Context, message string) (*Commit, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}
	if status.IsClean() {
		return nil, ErrNothingToCommit
	}

	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author: signature(),
	})
	if err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	commit, err := r.repo.CommitObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get commit: %w", err)
	}

	return toCommit(commit), nil
}

func (r *GitProfileRepository) Log(ctx context.Context, limit int) ([]*Commit, error) {
	iter, err := r.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	defer iter.Close()

	var commits []*Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(commits) >= limit {
			return io.EOF
		}
		commits = append(commits, toCommit(c))
		return nil
	})
	if err != nil && err != io.EOF {
		return nil, err
	}

	return commits, nil
}

// Diff shows uncommitted changes when ref is empty, otherwise the changes
// between ref and HEAD.
func (r *GitProfileRepository) Diff(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return r.diffWorktreeVsHead()
	}
	return r.diffHeadVsRef(ref)
}

// diffWorktreeVsHead renders staged and unstaged profile edits against HEAD.
func (r *GitProfileRepository) diffWorktreeVsHead() (string, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return "", fmt.Errorf("profile status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	head, err := r.headTree()
	if err != nil {
		return "", err
	}

	paths := make([]string, 0, len(status))
	for path := range status {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var buf strings.Builder
	for _, path := range paths {
		oldName, newName := "a/"+path, "b/"+path
		var oldText, newText string

		code := status[path].Staging
		if code == git.Unmodified {
			code = status[path].Worktree
		}
		if code != git.Added && code != git.Untracked {
			if oldText, err = treeFileContents(head, path); err != nil {
				continue
			}
		} else {
			oldName = "/dev/null"
		}
		if code != git.Deleted {
			data, err := util.ReadFile(r.files, path)
			if err != nil {
				continue
			}
			newText = string(data)
		} else {
			newName = "/dev/null"
		}
		if oldText == newText {
			continue
		}

		fmt.Fprintf(&buf, "--- %s\n+++ %s\n", oldName, newName)
		writeLineDiff(&buf, oldText, newText)
	}
	return buf.String(), nil
}

func (r *GitProfileRepository) diffHeadVsRef(ref string) (string, error) {
	headTree, err := r.headTree()
	if err != nil {
		return "", err
	}

	resolved, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve ref: %w", err)
	}

	targetCommit, err := r.repo.CommitObject(*resolved)
	if err != nil {
		return "", fmt.Errorf("get target commit: %w", err)
	}

	targetTree, err := targetCommit.Tree()
	if err != nil {
		return "", fmt.Errorf("get target tree: %w", err)
	}

	changes, err := targetTree.Diff(headTree)
	if err != nil {
		return "", fmt.Errorf("diff trees: %w", err)
	}

	patch, err := changes.Patch()
	if err != nil {
		return "", fmt.Errorf("get patch: %w", err)
	}

	return patch.String(), nil
}

// helpers

func (r *GitProfileRepository) headTree() (*object.Tree, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("get HEAD: %w", err)
	}

	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("get HEAD commit: %w", err)
	}

	tree, err := headCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("get HEAD tree: %w", err)
	}
	return tree, nil
}

func (r *GitProfileRepository) readProfile(name ProfileName, info os.FileInfo) (*Profile, error) {
	data, err := util.ReadFile(r.files, fileName(name))
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", name, err)
	}

	var pref Preference
	if err := yaml.Unmarshal(data, &pref); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", name, err)
	}
	return &Profile{Name: name, Preference: pref, CreatedAt: info.ModTime(), UpdatedAt: info.ModTime()}, nil
}

func treeFileContents(tree *object.Tree, path string) (string, error) {
	f, err := tree.File(path)
	if err != nil {
		return "", err
	}
	return f.Contents()
}

// writeLineDiff writes a line-oriented unified-style body for old -> new.
func writeLineDiff(buf *strings.Builder, oldText, newText string) {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n") {
			fmt.Fprintf(buf, "%s%s\n", prefix, line)
		}
	}
}

func signature() *object.Signature {
	return &object.Signature{
		Name:  DefaultAuthor,
		Email: DefaultEmail,
		When:  time.Now(),
	}
}

func toCommit(c *object.Commit) *Commit {
	var parents []string
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return &Commit{
		Hash:      c.Hash.String(),
		Message:   strings.TrimSpace(c.Message),
		Author:    c.Author.Name,
		Timestamp: c.Author.When,
		Parents:   parents,
	}
}
