package flatset

import (
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSortsAndDedupes(t *testing.T) {
	s := New(5, 1, 3, 1, 5, 2)
	assert.Equal(t, []int{1, 2, 3, 5}, s.Values())
	assert.Equal(t, 4, s.Len())
	assert.False(t, s.Empty())

	empty := New[string]()
	assert.True(t, empty.Empty())
	assert.Empty(t, empty.Values())
}

func TestInsert(t *testing.T) {
	s := New[int]()

	cases := []struct {
		v        int
		idx      int
		inserted bool
	}{
		{10, 0, true},
		{20, 1, true},
		{15, 1, true},
		{5, 0, true},
		{15, 2, false},
		{30, 4, true},
	}
	for _, tc := range cases {
		idx, inserted := s.Insert(tc.v)
		assert.Equal(t, tc.idx, idx, "insert %d", tc.v)
		assert.Equal(t, tc.inserted, inserted, "insert %d", tc.v)
	}
	assert.Equal(t, []int{5, 10, 15, 20, 30}, s.Values())
}

func TestBounds(t *testing.T) {
	s := New(10, 20, 30)

	assert.Equal(t, 0, s.LowerBound(5))
	assert.Equal(t, 1, s.LowerBound(20))
	assert.Equal(t, 2, s.LowerBound(25))
	assert.Equal(t, 3, s.LowerBound(35))

	assert.Equal(t, 0, s.UpperBound(5))
	assert.Equal(t, 2, s.UpperBound(20))
	assert.Equal(t, 3, s.UpperBound(30))

	lo, hi := s.EqualRange(20)
	assert.Equal(t, [2]int{1, 2}, [2]int{lo, hi})
	lo, hi = s.EqualRange(25)
	assert.Equal(t, [2]int{2, 2}, [2]int{lo, hi})
}

func TestFindAndErase(t *testing.T) {
	s := New("b", "d", "a")

	i, ok := s.Find("d")
	require.True(t, ok)
	assert.Equal(t, 2, i)
	assert.Equal(t, "d", s.At(i))

	_, ok = s.Find("c")
	assert.False(t, ok)
	assert.True(t, s.Contains("a"))

	assert.True(t, s.Erase("b"))
	assert.False(t, s.Erase("b"))
	assert.Equal(t, []string{"a", "d"}, s.Values())

	s.EraseAt(0)
	assert.Equal(t, []string{"d"}, s.Values())

	s.Clear()
	assert.True(t, s.Empty())
	assert.False(t, s.Contains("d"))
}

func TestNewFuncUsesComparator(t *testing.T) {
	byFold := func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
	s := NewFunc(byFold, "Go", "rust", "go", "C")
	assert.Equal(t, []string{"C", "Go", "rust"}, s.Values())

	_, inserted := s.Insert("RUST")
	assert.False(t, inserted)
	assert.True(t, s.Contains("GO"))
}

func TestCloneEqualAndEach(t *testing.T) {
	s := New(3, 1, 2)
	c := s.Clone()
	require.True(t, s.Equal(c))

	c.Insert(4)
	assert.False(t, s.Equal(c))
	assert.Equal(t, 3, s.Len(), "clone must not share storage")

	var seen []int
	c.Each(func(i, v int) bool {
		seen = append(seen, v)
		return i < 1
	})
	assert.Equal(t, []int{1, 2}, seen)
}

func TestValuesIsACopy(t *testing.T) {
	s := New(1, 2)
	values := s.Values()
	values[0] = 99
	assert.Equal(t, 1, s.At(0))
}

func TestRandomInsertStaysSorted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := New[int]()
	want := map[int]struct{}{}
	for i := 0; i < 2000; i++ {
		v := rng.Intn(500)
		_, inserted := s.Insert(v)
		_, dup := want[v]
		assert.Equal(t, !dup, inserted)
		want[v] = struct{}{}
	}

	values := s.Values()
	require.Len(t, values, len(want))
	assert.True(t, sort.IntsAreSorted(values))
	for i := 1; i < len(values); i++ {
		require.Less(t, values[i-1], values[i])
	}
}
