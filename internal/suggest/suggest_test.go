package suggest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atip/dashboard/internal/domain"
	"github.com/atip/dashboard/internal/observability"
)

// mockSearcher is a hand-written AuthorSearcher.
type mockSearcher struct {
	searchFn func(ctx context.Context, query string, limit int) ([]domain.AuthorRecord, error)
}

func (m *mockSearcher) SearchAuthors(ctx context.Context, query string, limit int) ([]domain.AuthorRecord, error) {
	return m.searchFn(ctx, query, limit)
}

func author(id int, first, last, affiliation string) domain.AuthorRecord {
	return domain.AuthorRecord{Record: domain.RecordFromMap(map[string]any{
		"id":          id,
		"first_name":  first,
		"last_name":   last,
		"affiliation": affiliation,
	})}
}

func fixedSearcher(authors ...domain.AuthorRecord) *mockSearcher {
	return &mockSearcher{searchFn: func(context.Context, string, int) ([]domain.AuthorRecord, error) {
		return authors, nil
	}}
}

func TestEngine_Suggest(t *testing.T) {
	t.Run("empty query issues no request", func(t *testing.T) {
		searcher := &mockSearcher{searchFn: func(context.Context, string, int) ([]domain.AuthorRecord, error) {
			t.Error("unexpected search")
			return nil, nil
		}}
		e := NewEngine(searcher, 5, zerolog.Nop(), nil)

		got, err := e.Suggest(context.Background(), "   ")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("passes trimmed query and limit", func(t *testing.T) {
		var gotQuery string
		var gotLimit int
		searcher := &mockSearcher{searchFn: func(_ context.Context, q string, limit int) ([]domain.AuthorRecord, error) {
			gotQuery, gotLimit = q, limit
			return nil, nil
		}}
		e := NewEngine(searcher, 0, zerolog.Nop(), nil)

		_, err := e.Suggest(context.Background(), "  chen ")
		require.NoError(t, err)
		assert.Equal(t, "chen", gotQuery)
		assert.Equal(t, DefaultLimit, gotLimit)
	})

	t.Run("filters to substring matches and caps at limit", func(t *testing.T) {
		e := NewEngine(fixedSearcher(
			author(1, "Sarah", "Chen", "Stanford University"),
			author(2, "Michael", "Rodriguez", "MIT"),
			author(3, "Emily", "Watson", "Stanford Medicine"),
			author(4, "Sarah", "Johnson", "Google Research"),
			author(5, "Sarah", "Williams", "Oxford University"),
			author(6, "Sara", "Stanfield", "ETH"),
			author(7, "Anna", "Stanford", "Harvard"),
			author(8, "James", "Liu", "STANFORD"),
		), 5, zerolog.Nop(), nil)

		got, err := e.Suggest(context.Background(), "Stanf")
		require.NoError(t, err)
		require.Len(t, got, 5)
		for _, s := range got {
			hay := strings.ToLower(s.Name + " " + s.Affiliation)
			assert.Contains(t, hay, "stanf")
		}
		assert.Equal(t, "1", got[0].ID)
		assert.NotContains(t, []string{got[0].ID, got[1].ID}, "2")
	})

	t.Run("drops authors without id", func(t *testing.T) {
		noID := domain.AuthorRecord{Record: domain.RecordFromMap(map[string]any{"name": "Ghost Chen"})}
		e := NewEngine(fixedSearcher(noID, author(9, "Li", "Chen", "")), 5, zerolog.Nop(), nil)

		got, err := e.Suggest(context.Background(), "chen")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "9", got[0].ID)
		assert.Equal(t, "/profile/9", got[0].ProfilePath())
	})

	t.Run("wraps search errors", func(t *testing.T) {
		boom := domain.NewAPIError("/authors/", 500, "boom", nil)
		searcher := &mockSearcher{searchFn: func(context.Context, string, int) ([]domain.AuthorRecord, error) {
			return nil, boom
		}}
		e := NewEngine(searcher, 5, zerolog.Nop(), nil)

		_, err := e.Suggest(context.Background(), "x")
		assert.True(t, errors.Is(err, domain.ErrUpstream))
	})
}

func TestEngine_Input(t *testing.T) {
	t.Run("opens the panel on success", func(t *testing.T) {
		e := NewEngine(fixedSearcher(author(1, "Sarah", "Chen", "Stanford")), 5, zerolog.Nop(), nil)
		s := NewSession("s1")

		v := e.Input(context.Background(), s, "sar")
		assert.True(t, v.Open)
		assert.Equal(t, -1, v.Selected)
		assert.Len(t, v.Suggestions, 1)
		assert.False(t, v.Error)
	})

	t.Run("failure clears and raises the error flag", func(t *testing.T) {
		e := NewEngine(&mockSearcher{searchFn: func(context.Context, string, int) ([]domain.AuthorRecord, error) {
			return nil, errors.New("network down")
		}}, 5, zerolog.Nop(), nil)
		s := NewSession("s1")

		v := e.Input(context.Background(), s, "sar")
		assert.False(t, v.Open)
		assert.Empty(t, v.Suggestions)
		assert.True(t, v.Error)
	})

	t.Run("failure is logged with the request's session id", func(t *testing.T) {
		var buf bytes.Buffer
		e := NewEngine(&mockSearcher{searchFn: func(context.Context, string, int) ([]domain.AuthorRecord, error) {
			return nil, errors.New("network down")
		}}, 5, zerolog.New(&buf), nil)

		ctx := observability.WithSessionID(context.Background(), "cookie-session")
		e.Input(ctx, NewSession("cookie-session"), "sar")
		assert.Contains(t, buf.String(), `"session_id":"cookie-session"`)
		assert.Contains(t, buf.String(), "suggestion fetch failed")

		buf.Reset()
		e.Input(context.Background(), NewSession("s2"), "sar")
		assert.Contains(t, buf.String(), `"session_id":"s2"`)
	})

	t.Run("empty input clears and closes", func(t *testing.T) {
		e := NewEngine(fixedSearcher(author(1, "Sarah", "Chen", "")), 5, zerolog.Nop(), nil)
		s := NewSession("s1")
		e.Input(context.Background(), s, "sar")

		v := e.Input(context.Background(), s, "  ")
		assert.False(t, v.Open)
		assert.Empty(t, v.Suggestions)
	})

	t.Run("stale response never overwrites a newer one", func(t *testing.T) {
		release := make(chan struct{})
		slowStarted := make(chan struct{})
		searcher := &mockSearcher{searchFn: func(_ context.Context, q string, _ int) ([]domain.AuthorRecord, error) {
			if q == "sa" {
				close(slowStarted)
				<-release
				return []domain.AuthorRecord{author(1, "Sam", "Stale", "")}, nil
			}
			return []domain.AuthorRecord{author(2, "Sarah", "Fresh", "")}, nil
		}}
		reg := prometheus.NewRegistry()
		metrics := observability.NewMetricsWith("test", reg)
		e := NewEngine(searcher, 5, zerolog.Nop(), metrics)
		s := NewSession("s1")

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Input(context.Background(), s, "sa")
		}()
		<-slowStarted

		v := e.Input(context.Background(), s, "sarah")
		require.Len(t, v.Suggestions, 1)
		assert.Equal(t, "2", v.Suggestions[0].ID)

		close(release)
		wg.Wait()

		v = s.View()
		require.Len(t, v.Suggestions, 1)
		assert.Equal(t, "2", v.Suggestions[0].ID)
		assert.Equal(t, "sarah", v.Query)
		assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SuggestStaleDiscarded))
	})
}

func openSession(t *testing.T, n int) *Session {
	t.Helper()
	s := NewSession("s1")
	seq, _ := s.Begin("q")
	sugs := make([]Suggestion, n)
	for i := range sugs {
		sugs[i] = Suggestion{ID: fmt.Sprint(100 + i), Name: fmt.Sprintf("Author %d", i)}
	}
	require.True(t, s.Apply(seq, sugs, nil))
	return s
}

func TestSession_Keys(t *testing.T) {
	t.Run("cursor is clamped to [-1, len-1]", func(t *testing.T) {
		s := openSession(t, 3)

		s.Key(KeyArrowUp)
		assert.Equal(t, -1, s.View().Selected)

		for i := 0; i < 5; i++ {
			s.Key(KeyArrowDown)
		}
		assert.Equal(t, 2, s.View().Selected)

		s.Key(KeyArrowUp)
		s.Key(KeyArrowUp)
		assert.Equal(t, 0, s.View().Selected)
		s.Key(KeyArrowUp)
		assert.Equal(t, -1, s.View().Selected)
	})

	t.Run("enter commits the selected suggestion", func(t *testing.T) {
		s := openSession(t, 3)
		s.Key(KeyArrowDown)
		s.Key(KeyArrowDown)
		s.Key(KeyEnter)

		v := s.View()
		assert.Equal(t, "/profile/101", v.Navigate)
		assert.Equal(t, "Author 1", v.Query)
		assert.False(t, v.Open)
		assert.Empty(t, v.Suggestions)
	})

	t.Run("enter without selection commits the first", func(t *testing.T) {
		s := openSession(t, 3)
		s.Key(KeyEnter)
		assert.Equal(t, "/profile/100", s.View().Navigate)
	})

	t.Run("escape closes and blurs", func(t *testing.T) {
		s := openSession(t, 2)
		s.Key(KeyArrowDown)
		s.Key(KeyEscape)

		v := s.View()
		assert.False(t, v.Open)
		assert.True(t, v.Blur)
		assert.Equal(t, -1, v.Selected)
	})

	t.Run("keys are ignored while closed", func(t *testing.T) {
		s := openSession(t, 2)
		s.Key(KeyEscape)
		s.Key(KeyEnter)
		assert.Empty(t, s.View().Navigate)
	})
}

func TestSession_Select(t *testing.T) {
	s := openSession(t, 3)

	assert.False(t, s.Select("999"))
	require.True(t, s.Select("102"))

	v := s.View()
	assert.Equal(t, "/profile/102", v.Navigate)
	assert.Equal(t, "Author 2", v.Query)
	assert.Empty(t, v.Suggestions)
}

func TestSession_ApplyAfterCommitIsStale(t *testing.T) {
	s := NewSession("s1")
	first, _ := s.Begin("a")
	second, _ := s.Begin("ab")
	require.True(t, s.Apply(second, []Suggestion{{ID: "1", Name: "Ab"}}, nil))
	require.True(t, s.Select("1"))

	assert.False(t, s.Apply(first, []Suggestion{{ID: "2", Name: "A"}}, nil))
	assert.Empty(t, s.View().Suggestions)
}

func TestSession_PointerDown(t *testing.T) {
	t.Run("outside press closes while mounted", func(t *testing.T) {
		s := openSession(t, 2)
		s.Mount()
		s.PointerDown(true)
		assert.True(t, s.View().Open)
		s.PointerDown(false)
		assert.False(t, s.View().Open)
	})

	t.Run("no effect after unmount", func(t *testing.T) {
		s := openSession(t, 2)
		s.Mount()
		s.Unmount()
		assert.False(t, s.Mounted())
		s.PointerDown(false)
		assert.True(t, s.View().Open)
	})
}

func TestStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetricsWith("test", reg)
	store, err := NewStore(2, metrics)
	require.NoError(t, err)

	a, created := store.Session("")
	require.True(t, created)
	assert.NotEmpty(t, a.ID())

	again, created := store.Session(a.ID())
	assert.False(t, created)
	assert.Same(t, a, again)

	forged, created := store.Session("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", forged.ID())

	_, created = store.Session("")
	assert.True(t, created)
	assert.Equal(t, 2, store.Len())

	_, ok := store.Lookup(a.ID())
	assert.False(t, ok, "least recently used session is evicted")
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.SearchSessionsActive))

	store.Remove(forged.ID())
	assert.Equal(t, 1, store.Len())
}

func TestNewStore_InvalidCapacity(t *testing.T) {
	_, err := NewStore(0, nil)
	assert.Error(t, err)
}
