package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	var req struct {
		Notes  Optional[string] `json:"notes"`
		Seed   Optional[int64]  `json:"seed"`
		Prompt Optional[string] `json:"prompt"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"notes":null,"seed":9007199254740993}`), &req))

	assert.True(t, req.Notes.Set)
	assert.Nil(t, req.Notes.Value)
	require.True(t, req.Seed.Set)
	assert.Equal(t, int64(9007199254740993), *req.Seed.Value)
	assert.False(t, req.Prompt.Set)

	fallback := "from source"
	assert.Nil(t, req.Notes.Or(&fallback))
	assert.Equal(t, &fallback, req.Prompt.Or(&fallback))

	err := json.Unmarshal([]byte(`{"seed":"7"}`), &req)
	assert.Error(t, err)
}
