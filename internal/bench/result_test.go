package bench

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSet() *ResultSet {
	return &ResultSet{
		Flake: "input-output-hk/devx",
		Entries: []Entry{
			{Shell: "ghc925", Record: Record{Bootstrap: 12.5, Reload: 3.21}},
			{Shell: "ghc8107", Record: Record{Bootstrap: 9.87, Reload: 2.1, Failures: 2}},
		},
	}
}

func TestResultSet_MarshalJSONKeepsOrder(t *testing.T) {
	data, err := json.Marshal(sampleSet())
	require.NoError(t, err)
	assert.Equal(t,
		`{"ghc925":{"bootstrap":12.5,"reload":3.21},"ghc8107":{"bootstrap":9.87,"reload":2.1,"failures":2}}`,
		string(data))

	empty, err := json.Marshal(&ResultSet{Flake: "x"})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestResultSet_UnmarshalJSONKeepsOrder(t *testing.T) {
	var set ResultSet
	err := json.Unmarshal([]byte(`{"b":{"bootstrap":1.5,"reload":2},"a":{"bootstrap":0.25,"reload":0,"failures":1}}`), &set)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Shell: "b", Record: Record{Bootstrap: 1.5, Reload: 2}},
		{Shell: "a", Record: Record{Bootstrap: 0.25, Failures: 1}},
	}, set.Entries)

	assert.Error(t, json.Unmarshal([]byte(`[1, 2]`), &set))
	assert.Error(t, json.Unmarshal([]byte(`{"a": "nope"}`), &set))
}

func TestResultSet_Accessors(t *testing.T) {
	set := sampleSet()
	assert.Equal(t, []string{"ghc925", "ghc8107"}, set.Shells())
	assert.Equal(t, 2, set.Failures())

	rec, ok := set.Get("ghc8107")
	require.True(t, ok)
	assert.Equal(t, 9.87, rec.Bootstrap)
}

func TestRun_Totals(t *testing.T) {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	run := &Run{
		StartTime: start,
		EndTime:   start.Add(90 * time.Second),
		Sets:      []*ResultSet{sampleSet(), sampleSet()},
	}
	assert.Equal(t, 90*time.Second, run.Duration())
	assert.Equal(t, 4, run.Failures())
}
