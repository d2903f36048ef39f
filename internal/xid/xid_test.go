package xid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesPrefixAndIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := New("SALE")
		require.True(t, strings.HasPrefix(id, "SALE_"), id)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestNewIsTimeOrdered(t *testing.T) {
	first := New("TRANS")
	second := New("TRANS")
	assert.Less(t, first, second)
}
