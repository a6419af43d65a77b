package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-rag/internal/domain"
)

func TestAppend_CreatesSessionLazily(t *testing.T) {
	store := NewStore(20)
	require.Equal(t, 0, store.SessionCount())

	store.Append("s1", domain.RoleUser, "hello")
	require.Equal(t, 1, store.SessionCount())
	require.Equal(t, 1, store.Len("s1"))
}

func TestHistory_ChronologicalOrder(t *testing.T) {
	store := NewStore(20)
	store.Append("s1", domain.RoleUser, "first")
	store.Append("s1", domain.RoleAssistant, "second")
	store.Append("s1", domain.RoleUser, "third")

	got := store.History("s1")
	require.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "second"},
		{Role: domain.RoleUser, Content: "third"},
	}, got)
}

func TestHistory_UnknownSessionEmpty(t *testing.T) {
	store := NewStore(20)
	require.Empty(t, store.History("nope"))
}

// Past the cap the oldest turns are dropped; the most recent survive in
// their original order.
func TestAppend_FIFOEviction(t *testing.T) {
	const capTurns = 6
	store := NewStore(capTurns)

	for i := 0; i < 10; i++ {
		store.Append("s1", domain.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	got := store.History("s1")
	require.Len(t, got, capTurns)
	for i, msg := range got {
		require.Equal(t, fmt.Sprintf("msg-%d", 10-capTurns+i), msg.Content)
	}
}

func TestAppend_BelowCapKeepsAll(t *testing.T) {
	store := NewStore(20)
	for i := 0; i < 5; i++ {
		store.Append("s1", domain.RoleUser, fmt.Sprintf("msg-%d", i))
	}
	require.Equal(t, 5, store.Len("s1"))
}

func TestSessionID_TrimmedConsistently(t *testing.T) {
	store := NewStore(20)
	store.Append(" s1 ", domain.RoleUser, "hello")

	require.Equal(t, 1, store.Len("s1"))
	require.Equal(t, "hello", store.History(" s1 ")[0].Content)

	store.Clear("s1 ")
	require.Empty(t, store.History("s1"))
	require.Equal(t, 0, store.SessionCount())
}

func TestClear_DropsSession(t *testing.T) {
	store := NewStore(20)
	store.Append("s1", domain.RoleUser, "hello")
	store.Append("s2", domain.RoleUser, "hello")

	store.Clear("s1")
	require.Empty(t, store.History("s1"))
	require.Equal(t, 1, store.Len("s2"))
}

func TestSessions_Independent(t *testing.T) {
	store := NewStore(2)
	store.Append("s1", domain.RoleUser, "a")
	store.Append("s1", domain.RoleAssistant, "b")
	store.Append("s1", domain.RoleUser, "c") // evicts "a"
	store.Append("s2", domain.RoleUser, "x")

	require.Equal(t, "b", store.History("s1")[0].Content)
	require.Equal(t, "x", store.History("s2")[0].Content)
}

func TestAppend_ConcurrentSameSession(t *testing.T) {
	const writers = 8
	const perWriter = 25

	store := NewStore(writers * perWriter)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				store.Append("shared", domain.RoleUser, fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	// no turn lost or duplicated under concurrent appends
	require.Equal(t, writers*perWriter, store.Len("shared"))
}

func TestAppend_ConcurrentDistinctSessions(t *testing.T) {
	store := NewStore(20)
	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", w)
			for i := 0; i < 20; i++ {
				store.Append(id, domain.RoleUser, "m")
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, 10, store.SessionCount())
	for w := 0; w < 10; w++ {
		require.Equal(t, 20, store.Len(fmt.Sprintf("s%d", w)))
	}
}

func TestNewStore_NonPositiveCapUsesDefault(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < DefaultMaxTurns+5; i++ {
		store.Append("s1", domain.RoleUser, "m")
	}
	require.Equal(t, DefaultMaxTurns, store.Len("s1"))
}
