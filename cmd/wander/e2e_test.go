package main

import (
	"encoding/json"
	"io"
	"os"
	"testing"

	"github.com/4thel00z/wander/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE2EFullWorkflow(t *testing.T) {
	chdirTemp(t)
	wd, _ := os.Getwd()
	a := newApp(internal.NewScopeResolverAt(t.TempDir(), wd), io.Discard)

	// 1. init with an editable catalog
	_, err := run(t, a, "init", "--with-catalog")
	require.NoError(t, err)

	// 2. options come from the project catalog file
	out, err := run(t, a, "catalog", "options", "--json")
	require.NoError(t, err)
	var opts map[string][]string
	require.NoError(t, json.Unmarshal([]byte(out), &opts))
	assert.Equal(t, []string{"Medium", "High", "Low"}, opts["budget"])

	// 3. save a profile and rank with it
	_, err = run(t, a, "profile", "set", "family-summer",
		"--type", "Nature", "--season", "Summer", "--budget", "Medium", "--family", "--girls")
	require.NoError(t, err)

	out, err = run(t, a, "recommend", "--profile", "family-summer", "--json", "-n", "3")
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, "Ratti Gali Lake", recs[0]["name"])
	assert.Equal(t, 1.0, recs[0]["score"])
	assert.Equal(t, "Hunza", recs[1]["name"])
	assert.Equal(t, "Naltar Valley", recs[2]["name"])

	// 4. history has the init and the profile commit
	out, err = run(t, a, "log", "--json")
	require.NoError(t, err)
	var commits []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &commits))
	require.Len(t, commits, 2)
	assert.Equal(t, "set: family-summer", commits[0]["message"])

	// 5. profiles list as JSON
	out, err = run(t, a, "profile", "list", "--json")
	require.NoError(t, err)
	var profiles []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "family-summer", profiles[0]["name"])
}

func TestE2ELogLevelFlag(t *testing.T) {
	a, _ := setupApp(t)

	_, err := run(t, a, "--log-level", "debug", "catalog")
	require.NoError(t, err)
	assert.Equal(t, "debug", a.logLevel)
}
