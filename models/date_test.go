package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d.Start())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), d.End())
	assert.Equal(t, "2024-01-01", d.String())

	_, err = ParseDate("01/02/2024")
	assert.Error(t, err)
	_, err = ParseDate("2024-02-30")
	assert.Error(t, err)
}

func TestNewDateTruncates(t *testing.T) {
	local := time.Date(2024, 3, 5, 23, 59, 0, 0, time.FixedZone("X", 3*3600))
	assert.Equal(t, "2024-03-05", NewDate(local).String())
}

func TestDateJSON(t *testing.T) {
	var todo Todo
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2024-06-30"}`), &todo))
	require.NotNil(t, todo.Deadline)
	assert.Equal(t, "2024-06-30", todo.Deadline.String())

	out, err := json.Marshal(todo)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"deadline":"2024-06-30"`)

	todo.Deadline = nil
	out, err = json.Marshal(todo)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"deadline":null`)

	assert.Error(t, json.Unmarshal([]byte(`{"deadline":"tomorrow"}`), &todo))
	assert.Error(t, json.Unmarshal([]byte(`{"deadline":20240101}`), &todo))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-01", d.String())

	require.NoError(t, d.Scan("2024-02-03 00:00:00+00:00"))
	assert.Equal(t, "2024-02-03", d.String())

	require.NoError(t, d.Scan([]byte("2024-04-05")))
	assert.Equal(t, "2024-04-05", d.String())

	assert.Error(t, d.Scan(int64(5)))
	assert.Error(t, d.Scan("2024"))
}

func TestOptionalDate(t *testing.T) {
	var absent TodoPatch
	require.NoError(t, json.Unmarshal([]byte(`{"title":"abc"}`), &absent))
	assert.False(t, absent.Deadline.Set)

	var cleared TodoPatch
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":null}`), &cleared))
	assert.True(t, cleared.Deadline.Set)
	assert.Nil(t, cleared.Deadline.Date)

	var set TodoPatch
	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2024-01-01"}`), &set))
	assert.True(t, set.Deadline.Set)
	require.NotNil(t, set.Deadline.Date)
	assert.Equal(t, "2024-01-01", set.Deadline.Date.String())
}
