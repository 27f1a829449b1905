package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnSet_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b ColumnSet
		want []string
	}{
		{"both empty", NewColumnSet(), NewColumnSet(), []string{}},
		{"empty right", NewColumnSet("id", "value"), NewColumnSet(), []string{}},
		{"overlap", NewColumnSet("value", "0", "id", "1", "1000"), NewColumnSet("id", "value", "name"), []string{"id", "value"}},
		{"disjoint", NewColumnSet("a"), NewColumnSet("b"), []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Intersect(tt.b).Sorted())
			assert.Equal(t, tt.want, tt.b.Intersect(tt.a).Sorted())
		})
	}
}

func TestColumnSet_AddIsIdempotent(t *testing.T) {
	s := NewColumnSet("id", "id")
	s.Add("id")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("id"))
	assert.False(t, s.Has("ID"))
}
