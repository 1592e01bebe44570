package history

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/nadzzz/kisanvani/internal/intent"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func turn(i int) Turn {
	return Turn{
		Query:     fmt.Sprintf("q%d", i),
		Response:  fmt.Sprintf("r%d", i),
		Intent:    intent.GeneralAgronomy,
		Timestamp: time.Unix(int64(i), 0),
	}
}

func TestRecentReturnsLatestOldestFirst(t *testing.T) {
	s := New()
	for i := 1; i <= 8; i++ {
		s.Append(turn(i))
	}

	got := s.Recent(5)
	require.Len(t, got, 5)
	for i, tr := range got {
		assert.Equal(t, fmt.Sprintf("q%d", i+4), tr.Query)
	}
}

func TestRecentFewerThanN(t *testing.T) {
	s := New()
	s.Append(turn(1))
	s.Append(turn(2))

	got := s.Recent(5)
	require.Len(t, got, 2)
	assert.Equal(t, "q1", got[0].Query)
	assert.Equal(t, "q2", got[1].Query)
}

func TestRecentNonPositive(t *testing.T) {
	s := New()
	s.Append(turn(1))
	assert.Empty(t, s.Recent(0))
	assert.Empty(t, s.Recent(-1))
}

func TestRecentIsACopy(t *testing.T) {
	s := New()
	s.Append(turn(1))
	got := s.Recent(1)
	got[0].Query = "mutated"
	assert.Equal(t, "q1", s.Recent(1)[0].Query)
}

func TestAppendThenClear(t *testing.T) {
	s := New()
	s.Append(turn(1))
	s.Clear()
	for _, n := range []int{1, 5, 100} {
		assert.Empty(t, s.Recent(n))
	}
	assert.Zero(t, s.Len())
	assert.Empty(t, s.All())
}

func TestConcurrentAppendsAreNotLost(t *testing.T) {
	s := New()
	const writers, perWriter = 16, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Append(turn(w*perWriter + i))
				got := s.Recent(5)
				assert.LessOrEqual(t, len(got), 5)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, s.Len())
}
