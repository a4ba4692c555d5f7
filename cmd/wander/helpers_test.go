package main

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/4thel00z/wander/internal"
	"github.com/stretchr/testify/require"
)

// setupApp creates an initialized project scope in a temp dir, chdirs into it
// and returns an app whose global scope lives in a separate temp home.
func setupApp(t *testing.T) (*app, internal.Scope) {
	t.Helper()
	dir := t.TempDir()

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(dir))

	scope := internal.NewProjectScope(dir)
	require.NoError(t, internal.InitRepository(scope))
	require.NoError(t, internal.SaveConfig(scope, internal.DefaultConfig()))

	resolver := internal.NewScopeResolverAt(t.TempDir(), dir)
	return newApp(resolver, io.Discard), scope
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test", a)
	root.SetArgs(args)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)

	err := root.Execute()
	return out.String(), err
}
