package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-watersort/watersort/internal/packed"
)

func TestTopSegment(t *testing.T) {
	_, ok := TopSegment(nil)
	assert.False(t, ok)
	assert.Equal(t, packed.None, Top(nil))

	seg, ok := TopSegment(packed.Tube{1, 2, 2})
	require.True(t, ok)
	assert.Equal(t, Segment{Color: 2, Len: 2}, seg)
	assert.Equal(t, packed.Color(2), Top(packed.Tube{1, 2, 2}))

	seg, _ = TopSegment(packed.Tube{3, 3, 3, 3})
	assert.Equal(t, Segment{Color: 3, Len: 4}, seg)
}

func TestIsComplete(t *testing.T) {
	assert.True(t, rules4.IsComplete(packed.Tube{1, 1, 1, 1}))
	assert.False(t, rules4.IsComplete(packed.Tube{1, 1, 1}))
	assert.False(t, rules4.IsComplete(packed.Tube{1, 1, 2, 1}))
	assert.False(t, rules4.IsComplete(packed.Tube{}))

	assert.True(t, rules4.IsGoal(packed.State{{}, {1, 1, 1, 1}, {2, 2, 2, 2}}))
	assert.True(t, rules4.IsGoal(packed.State{}))
	assert.False(t, rules4.IsGoal(packed.State{{1, 1, 1}, {1}}))
}

func TestMoves(t *testing.T) {
	s := packed.State{
		{1, 2, 2},    // 0: segment 2x2
		{3, 2},       // 1: top 2, room 2
		{},           // 2: empty
		{4, 4, 4, 4}, // 3: complete
		{1, 1, 1, 3}, // 4: full
	}
	moves := rules4.Moves(s)
	assert.Equal(t, []Move{
		{From: 0, To: 1, Amount: 2},
		{From: 0, To: 2, Amount: 2},
		{From: 1, To: 0, Amount: 1},
		{From: 1, To: 2, Amount: 1},
		{From: 4, To: 2, Amount: 1},
	}, moves)
}

func TestMovesAreLegal(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 200; i++ {
		s := shuffled(rng, 4, 2, 4)
		// play a few random moves to get partial tubes
		for j := 0; j < 5; j++ {
			moves := rules4.Moves(s)
			if len(moves) == 0 {
				break
			}
			s = rules4.Apply(s, moves[rng.Intn(len(moves))])
		}

		for _, m := range rules4.Moves(s) {
			src, dst := s[m.From], s[m.To]
			require.NotEqual(t, m.From, m.To)
			assert.NotEmpty(t, src)
			assert.False(t, rules4.IsComplete(src))
			assert.Less(t, len(dst), rules4.Capacity)
			if len(dst) > 0 {
				assert.Equal(t, Top(src), Top(dst))
			}
			seg, _ := TopSegment(src)
			assert.Equal(t, min(seg.Len, rules4.Capacity-len(dst)), m.Amount)
		}
	}
}

func TestApply(t *testing.T) {
	s := packed.State{{1, 2, 2}, {2}, {}}
	orig := packed.Encode(s)

	next := rules4.Apply(s, Move{From: 0, To: 1, Amount: 2})
	assert.Equal(t, packed.State{{1}, {2, 2, 2}, {}}, next)
	assert.Equal(t, orig, packed.Encode(s), "parent untouched")

	// appending to a shortened tube must not leak into the parent
	next[0] = append(next[0], 9)
	assert.Equal(t, orig, packed.Encode(s))
}

func TestPour(t *testing.T) {
	s := packed.State{{1, 2}, {2, 2, 2, 2}, {3}, {}}
	_, ok := rules4.Pour(s, 0, 0)
	assert.False(t, ok, "self pour")
	_, ok = rules4.Pour(s, 3, 0)
	assert.False(t, ok, "empty source")
	_, ok = rules4.Pour(s, 0, 1)
	assert.False(t, ok, "full destination")
	_, ok = rules4.Pour(s, 0, 2)
	assert.False(t, ok, "color mismatch")

	m, ok := rules4.Pour(s, 1, 3)
	assert.True(t, ok, "complete tubes can be poured by players")
	assert.Equal(t, Move{From: 1, To: 3, Amount: 4}, m)
}

func TestCanonicalize(t *testing.T) {
	s := packed.State{{2, 1}, {3, 3, 3, 3}, {}, {1, 1, 1, 1}, {1, 2}, {}}
	c := rules4.Canonicalize(s)
	assert.Equal(t, packed.State{{}, {}, {1, 1, 1, 1}, {3, 3, 3, 3}, {1, 2}, {2, 1}}, c)
	assert.Equal(t, packed.Tube{2, 1}, s[0], "input order untouched")
}

func TestCanonicalKeyPermutationInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 100; i++ {
		s := shuffled(rng, 5, 2, 4)
		for j := 0; j < 4; j++ {
			if moves := rules4.Moves(s); len(moves) > 0 {
				s = rules4.Apply(s, moves[rng.Intn(len(moves))])
			}
		}
		p := s.Clone()
		rng.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
		assert.Equal(t, rules4.Key(s), rules4.Key(p))
		assert.Equal(t, rules4.Heuristic(s), rules4.Heuristic(p))
	}
}

func TestHeuristic(t *testing.T) {
	tests := []struct {
		name     string
		s        packed.State
		distinct int
		misplace int
	}{
		{"goal", packed.State{{1, 1, 1, 1}, {}}, 0, 0},
		{"single units", packed.State{{1}, {1}, {2}}, 2, 0},
		{"mixed", packed.State{{1, 2, 1, 2}, {2, 1, 2, 1}, {}, {}}, 2, 4},
		{"shared top", packed.State{{3, 1}, {2, 1}, {1, 1, 1, 1}}, 1, 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.distinct, rules4.DistinctTops(test.s))
			assert.Equal(t, test.misplace, rules4.Misplaced(test.s))
			assert.Equal(t, max(test.distinct, test.misplace), rules4.Heuristic(test.s))
		})
	}
}

func TestIsDead(t *testing.T) {
	r2 := Rules{Capacity: 2}
	assert.True(t, r2.IsDead(packed.State{{1, 2}, {2, 1}}), "full, no move")
	assert.True(t, rules4.IsDead(packed.State{{1, 2, 3}, {2, 1, 2}, {3, 3, 2, 1}}), "one slot each, distinct tops")

	assert.False(t, rules4.IsDead(packed.State{{1, 1, 1, 1}, {2, 2, 2, 2}}), "goal is never dead")
	assert.False(t, rules4.IsDead(packed.State{{1, 1, 1, 1}, {2, 2, 2, 2}, {}, {}}))
	assert.False(t, rules4.IsDead(packed.State{{1, 2, 3}, {2, 1, 3}, {3, 2, 1, 1}}), "shared top")
	assert.False(t, rules4.IsDead(packed.State{{1, 2}, {2, 1, 3}, {3, 2, 1, 1}}), "two slots in one tube")

	rng := rand.New(rand.NewSource(13))
	for i := 0; i < 100; i++ {
		s := shuffled(rng, 3, 0, 3)
		if (Rules{Capacity: 3}).IsDead(s) {
			assert.Empty(t, (Rules{Capacity: 3}).Moves(s))
		}
	}
}

func TestConvert(t *testing.T) {
	_, _, err := rules4.Convert([][]string{{"a", "b", "c", "d", "e"}})
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, InputError{Tube: 0, Len: 5, Capacity: 4}, *ie)

	_, _, err = Rules{}.Convert(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	s, p, err := rules4.Convert([][]string{{"red", "red", "blue"}, {"red", "red"}, {}})
	require.NoError(t, err)
	assert.Equal(t, []string{`color "blue" has 1 units, not a multiple of 4`}, rules4.Advisories(s, p))
}
