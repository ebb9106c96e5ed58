package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDSet_Immutable(t *testing.T) {
	empty := IDSet{}
	one := empty.With("a")
	two := one.With("b")

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, []string{"a"}, one.IDs())
	assert.Equal(t, []string{"a", "b"}, two.IDs())

	without := two.Without("a")
	assert.Equal(t, []string{"b"}, without.IDs())
	assert.True(t, two.Has("a"))
}

func TestIDSet_Toggle(t *testing.T) {
	s := NewIDSet("x")
	s = s.Toggle("x")
	assert.False(t, s.Has("x"))
	s = s.Toggle("x")
	assert.True(t, s.Has("x"))
}

func TestIDSet_Rename(t *testing.T) {
	s := NewIDSet("old", "keep")
	renamed := s.Rename("old", "new")
	assert.Equal(t, []string{"keep", "new"}, renamed.IDs())
	assert.Equal(t, []string{"keep", "old"}, s.IDs())

	assert.Equal(t, []string{"keep", "old"}, s.Rename("absent", "new").IDs())
}
