package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNullString(t *testing.T) {
	assert.True(t, NewNullString("hello").Valid)
	assert.Equal(t, "hello", NewNullString("hello").String)
	assert.False(t, NewNullString("").Valid)
}

func TestNewNullTime(t *testing.T) {
	now := time.Now()

	nt := NewNullTime(now)
	assert.True(t, nt.Valid)
	assert.Equal(t, now, nt.Time)
}

func TestNullTimeJSON(t *testing.T) {
	when := time.Date(2025, time.March, 7, 14, 5, 0, 0, time.UTC)

	data, err := json.Marshal(NewNullTime(when))
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-07T14:05:00Z"`, string(data))

	data, err = json.Marshal(NullTime{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestNullStringJSON(t *testing.T) {
	data, err := json.Marshal(NewNullString("abc"))
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(data))

	data, err = json.Marshal(NullString{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}
