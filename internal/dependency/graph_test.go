package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGraphRelated(t *testing.T) {
	g := New()
	g.Add("redis", "context7")
	g.Add("context7")

	assert.Equal(t, []string{"context7"}, g.Related("redis"))
	assert.Nil(t, g.Related("context7"))
	assert.Nil(t, g.Related("unknown"))

	// Returned slice is a copy.
	deps := g.Related("redis")
	deps[0] = "mutated"
	assert.Equal(t, []string{"context7"}, g.Related("redis"))
}

func TestGraphAddDropsSelfAndDuplicates(t *testing.T) {
	g := New()
	g.Add("redis", "redis", "context7", "context7", "")

	assert.Equal(t, []string{"context7"}, g.Related("redis"))
	assert.True(t, g.Has("redis"))
	assert.False(t, g.Has("context7"))
}

func TestGraphDependents(t *testing.T) {
	g := New()
	g.Add("redis", "context7")
	g.Add("postgres", "context7")
	g.Add("context7")

	assert.Equal(t, []string{"postgres", "redis"}, g.Dependents("context7"))
	assert.Empty(t, g.Dependents("redis"))
}

func TestActivationOrder(t *testing.T) {
	g := New()
	g.Add("redis", "context7")
	g.Add("postgres", "context7")
	g.Add("playwright")
	g.Add("context7")

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "dependency moves ahead of dependent",
			in:   []string{"redis", "context7"},
			want: []string{"context7", "redis"},
		},
		{
			name: "unrelated servers keep incoming order",
			in:   []string{"playwright", "redis"},
			want: []string{"playwright", "redis"},
		},
		{
			name: "shared dependency emitted once and first",
			in:   []string{"redis", "postgres", "context7"},
			want: []string{"context7", "redis", "postgres"},
		},
		{
			name: "dependency absent from request is ignored",
			in:   []string{"redis", "playwright"},
			want: []string{"redis", "playwright"},
		},
		{
			name: "duplicates collapse",
			in:   []string{"redis", "redis", "context7"},
			want: []string{"context7", "redis"},
		},
		{
			name: "empty request",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.ActivationOrder(tt.in))
		})
	}
}

func TestActivationOrderCycle(t *testing.T) {
	g := New()
	g.Add("a", "b")
	g.Add("b", "a")

	// A cycle cannot be ordered; the incoming order is kept.
	assert.Equal(t, []string{"a", "b"}, g.ActivationOrder([]string{"a", "b"}))
}

func TestActivationOrderChain(t *testing.T) {
	g := New()
	g.Add("c", "b")
	g.Add("b", "a")
	g.Add("a")

	assert.Equal(t, []string{"a", "b", "c"}, g.ActivationOrder([]string{"c", "b", "a"}))
}
