package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_StaleAfterDestroy(t *testing.T) {
	tests := []struct {
		name    string
		release func(refs []*Ref)
	}{
		{"release in creation order", func(refs []*Ref) {
			for _, r := range refs {
				r.Release()
			}
		}},
		{"release in reverse order", func(refs []*Ref) {
			for i := len(refs) - 1; i >= 0; i-- {
				refs[i].Release()
			}
		}},
		{"release middle first", func(refs []*Ref) {
			refs[1].Release()
			refs[0].Release()
			refs[2].Release()
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newTestTree(t)
			root := tree.NewRootWith("root", plain{})
			c, err := root.AddChild("plain")
			require.NoError(t, err)
			id := c.ID()

			refs := []*Ref{c.Ref(), c.Ref(), NewRef(c)}
			for _, r := range refs {
				assert.Same(t, c, r.Get())
			}

			c.Kill()
			root.Cycle(0)

			for _, r := range refs {
				assert.Nil(t, r.Get())
				assert.False(t, r.Valid())
				assert.Equal(t, id, r.ID(), "identity survives the job")
			}
			assert.Equal(t, uint64(0), tree.Stats().LivenessReleased, "block held by outstanding refs")

			tt.release(refs)

			assert.Equal(t, uint64(1), tree.Stats().LivenessReleased)
			tree.Dispose(root)
			final := tree.Stats()
			assert.Equal(t, final.LivenessAllocated, final.LivenessReleased)
		})
	}
}

func TestRef_ReleasedOnceWithoutWatchers(t *testing.T) {
	tree := newTestTree(t)
	root := tree.NewRootWith("root", plain{})
	c, err := root.AddChild("plain")
	require.NoError(t, err)

	c.Kill()
	root.Cycle(0)

	stats := tree.Stats()
	assert.Equal(t, uint64(2), stats.LivenessAllocated)
	assert.Equal(t, uint64(1), stats.LivenessReleased)
}

func TestRef_Clone(t *testing.T) {
	tree := newTestTree(t)
	root := tree.NewRootWith("root", plain{})
	c, err := root.AddChild("plain")
	require.NoError(t, err)

	r := c.Ref()
	clone := r.Clone()
	r.Release()

	assert.Nil(t, r.Get())
	assert.Same(t, c, clone.Get())

	c.Kill()
	root.Cycle(0)
	assert.Nil(t, clone.Get())
	assert.Equal(t, uint64(0), tree.Stats().LivenessReleased, "child block waits for the clone")

	clone.Release()
	assert.Equal(t, uint64(1), tree.Stats().LivenessReleased)
}

func TestRef_Move(t *testing.T) {
	tree := newTestTree(t)
	root := tree.NewRootWith("root", plain{})

	r := root.Ref()
	m := r.Move()

	assert.Nil(t, r.Get())
	assert.Equal(t, ID(0), r.ID())
	assert.Same(t, root, m.Get())

	m.Release()
	tree.Dispose(root)
	stats := tree.Stats()
	assert.Equal(t, stats.LivenessAllocated, stats.LivenessReleased)
}

func TestRef_Set(t *testing.T) {
	tree := newTestTree(t)
	root := tree.NewRootWith("root", plain{})
	a, err := root.AddChild("plain")
	require.NoError(t, err)
	b, err := root.AddChild("plain")
	require.NoError(t, err)

	r := NewRef(a)
	r.Set(a)
	r.Set(b)
	assert.Same(t, b, r.Get())

	// a is no longer watched, so its block goes as soon as it is destroyed.
	a.Kill()
	root.Cycle(0)
	assert.Equal(t, uint64(1), tree.Stats().LivenessReleased)

	r.Set(nil)
	assert.Nil(t, r.Get())
	assert.Equal(t, ID(0), r.ID())
}

func TestRef_Nil(t *testing.T) {
	var r *Ref
	assert.Nil(t, r.Get())
	assert.False(t, r.Valid())
	assert.Equal(t, ID(0), r.ID())
	assert.NotPanics(t, func() { r.Release() })
	assert.Nil(t, r.Clone().Get())
	assert.Nil(t, r.Move().Get())

	empty := NewRef(nil)
	assert.False(t, empty.Valid())
}

func TestRef_KilledButNotDestroyed(t *testing.T) {
	tree := newTestTree(t)
	root := tree.NewRootWith("root", plain{})
	c, err := root.AddChild("plain")
	require.NoError(t, err)

	r := c.Ref()
	defer r.Release()
	c.Kill()

	require.Same(t, c, r.Get())
	assert.True(t, r.Get().IsKilled())
}
