package assoc

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identity hashes keys to themselves so tests can shape the tree.
func identity(k uint64) uint64 { return k }

// collide sends every key to the same hash.
func collide(string) uint64 { return 42 }

func keys[K comparable, V any](s *Store[K, V]) []K {
	var out []K
	s.Each(func(k K, _ V) bool {
		out = append(out, k)
		return true
	})
	return out
}

func TestStore_Add_InsertOrFetch(t *testing.T) {
	s := NewString[int]()

	p := s.Add("tick", 1)
	require.NotNil(t, p)
	assert.Equal(t, 1, *p)

	// Second add returns the stored value, not the new one.
	q := s.Add("tick", 2)
	assert.Same(t, p, q)
	assert.Equal(t, 1, *q)
	assert.Equal(t, 1, s.Len())
}

func TestStore_Add_PointerIsMutable(t *testing.T) {
	s := NewString[int]()
	*s.Add("count", 0) += 5
	*s.Add("count", 0) += 5

	v, ok := s.Get("count")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestStore_Get_Missing(t *testing.T) {
	s := NewString[string]()
	v, ok := s.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, "", v)
	assert.Nil(t, s.Lookup("nope"))
	assert.False(t, s.Has("nope"))
}

func TestStore_Remove_Missing(t *testing.T) {
	s := NewString[int]()
	s.Add("a", 1)
	s.Remove("b")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has("a"))
}

func TestStore_Remove_StructuralCases(t *testing.T) {
	//        50
	//      /    \
	//    30      70
	//   /  \    /
	//  20  40  60
	build := func() *Store[uint64, string] {
		s := New[uint64, string](identity)
		for _, k := range []uint64{50, 30, 70, 20, 40, 60} {
			s.Add(k, fmt.Sprint(k))
		}
		return s
	}

	tests := []struct {
		name   string
		remove uint64
		want   []uint64
	}{
		{"leaf", 20, []uint64{30, 40, 50, 60, 70}},
		{"one child", 70, []uint64{20, 30, 40, 50, 60}},
		{"two children", 30, []uint64{20, 40, 50, 60, 70}},
		{"root with two children", 50, []uint64{20, 30, 40, 60, 70}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := build()
			s.Remove(tt.remove)
			assert.Equal(t, tt.want, keys(s))
			assert.Equal(t, 5, s.Len())
			assert.False(t, s.Has(tt.remove))
			for _, k := range tt.want {
				v, ok := s.Get(k)
				require.True(t, ok, "key %d lost after removing %d", k, tt.remove)
				assert.Equal(t, fmt.Sprint(k), v)
			}
		})
	}
}

func TestStore_Collisions_FormChain(t *testing.T) {
	s := New[string, int](collide)
	s.Add("alpha", 1)
	s.Add("beta", 2)
	s.Add("gamma", 3)

	assert.Equal(t, 3, s.Len())
	for k, want := range map[string]int{"alpha": 1, "beta": 2, "gamma": 3} {
		v, ok := s.Get(k)
		require.True(t, ok, k)
		assert.Equal(t, want, v)
	}

	// Duplicate detection still works inside the chain.
	assert.Equal(t, 2, *s.Add("beta", 99))

	s.Remove("beta")
	assert.False(t, s.Has("beta"))
	assert.True(t, s.Has("alpha"))
	assert.True(t, s.Has("gamma"))
}

func TestStore_Remove_TwoChildrenWithCollidingSuccessor(t *testing.T) {
	// 10 is removed; its right subtree holds two keys with hash 20,
	// chained down lte. Both must stay reachable.
	hash := map[string]uint64{"root": 10, "left": 5, "first": 20, "second": 20}
	s := New[string, int](func(k string) uint64 { return hash[k] })
	s.Add("root", 0)
	s.Add("left", 1)
	s.Add("first", 2)
	s.Add("second", 3)

	s.Remove("root")

	assert.Equal(t, 3, s.Len())
	for _, k := range []string{"left", "first", "second"} {
		assert.True(t, s.Has(k), k)
	}
}

func TestStore_Each_StopsEarly(t *testing.T) {
	s := New[uint64, int](identity)
	for i := uint64(1); i <= 10; i++ {
		s.Add(i, int(i))
	}

	var seen []uint64
	s.Each(func(k uint64, _ int) bool {
		seen = append(seen, k)
		return k < 3
	})
	assert.Equal(t, []uint64{1, 2, 3}, seen)
}

func TestStore_Clear(t *testing.T) {
	s := NewString[int]()
	s.Add("a", 1)
	s.Add("b", 2)
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, keys(s))
}

func TestStore_ManyKeys(t *testing.T) {
	type id uint64
	s := NewUint64[id, int]()
	for i := 0; i < 500; i++ {
		s.Add(id(i), i)
	}
	for i := 0; i < 500; i += 2 {
		s.Remove(id(i))
	}
	assert.Equal(t, 250, s.Len())
	for i := 0; i < 500; i++ {
		assert.Equal(t, i%2 == 1, s.Has(id(i)), "key %d", i)
	}
}

func TestStringHash_NormalizesNFC(t *testing.T) {
	composed := "café"
	decomposed := "cafe\u0301"
	assert.NotEqual(t, composed, decomposed)
	assert.Equal(t, StringHash(composed), StringHash(decomposed))
	assert.Equal(t, composed, Normalize(decomposed))
}
