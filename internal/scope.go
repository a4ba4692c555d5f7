package internal

import (
	"os"
	"path/filepath"
)

const StateDirName = ".wander"

type ScopeType string

const (
	ScopeGlobal  ScopeType = "global"
	ScopeProject ScopeType = "project"
)

type Scope struct {
	Type      ScopeType
	Path      string // directory holding the state directory
	StatePath string // .wander directory path
}

func NewProjectScope(dir string) Scope {
	return Scope{
		Type:      ScopeProject,
		Path:      dir,
		StatePath: filepath.Join(dir, StateDirName),
	}
}

func (s Scope) ConfigPath() string {
	return filepath.Join(s.StatePath, "config.yaml")
}

func (s Scope) CatalogPath() string {
	return filepath.Join(s.StatePath, "catalog.yaml")
}

// ProfilePath is the worktree of the profile history repository.
func (s Scope) ProfilePath() string {
	return filepath.Join(s.StatePath, "profiles")
}

// HistoryPath holds the git object store for profiles.
func (s Scope) HistoryPath() string {
	return filepath.Join(s.StatePath, "history")
}

func (s Scope) Initialized() bool {
	info, err := os.Stat(s.StatePath)
	return err == nil && info.IsDir()
}

type ScopeResolver struct {
	homeDir string
	workDir string
}

func NewScopeResolver() *ScopeResolver {
	home, _ := os.UserHomeDir()
	return &ScopeResolver{homeDir: home}
}

// NewScopeResolverAt resolves scopes as if started in workDir with the given home.
func NewScopeResolverAt(homeDir, workDir string) *ScopeResolver {
	return &ScopeResolver{homeDir: homeDir, workDir: workDir}
}

func (r *ScopeResolver) Global() Scope {
	return Scope{
		Type:      ScopeGlobal,
		Path:      r.homeDir,
		StatePath: filepath.Join(r.homeDir, StateDirName),
	}
}

func (r *ScopeResolver) Project() (Scope, bool) {
	cwd := r.workDir
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return Scope{}, false
		}
	}
	return r.findProjectScope(cwd)
}

func (r *ScopeResolver) findProjectScope(dir string) (Scope, bool) {
	for {
		scope := NewProjectScope(dir)
		if scope.Initialized() && scope.StatePath != r.Global().StatePath {
			return scope, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Scope{}, false
		}
		dir = parent
	}
}

// Resolve picks the scope for a --scope hint. Without a hint the nearest
// project scope wins over the global one.
func (r *ScopeResolver) Resolve(explicit string) Scope {
	if explicit == string(ScopeGlobal) {
		return r.Global()
	}
	if scope, ok := r.Project(); ok {
		return scope
	}
	return r.Global()
}

func (r *ScopeResolver) Cascade() []Scope {
	scopes := []Scope{}
	if scope, ok := r.Project(); ok {
		scopes = append(scopes, scope)
	}
	scopes = append(scopes, r.Global())
	return scopes
}
