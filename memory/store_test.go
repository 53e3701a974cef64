package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazemmrad17/cftravel-sub000/catalog"
)

func TestStoreUpdateAndSnapshot(t *testing.T) {
	store := NewStore(20)

	store.Update("s1", func(s *Session) {
		s.AddUserTurn("Je veux partir au Japon")
		s.Prefs = s.Prefs.Merge(Preferences{Destination: "Japon"})
	})

	snap := store.Snapshot("s1")
	require.Len(t, snap.Turns, 1)
	assert.Equal(t, "user", snap.Turns[0].Role)
	assert.Equal(t, "Japon", snap.Prefs.Destination)

	// Snapshot is a copy: mutating it must not leak into the store.
	snap.Turns[0].Content = "mutated"
	assert.Equal(t, "Je veux partir au Japon", store.Snapshot("s1").Turns[0].Content)
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store := NewStore(20)

	store.Update("s1", func(s *Session) { s.Prefs.Destination = "Japon" })
	store.Update("s2", func(s *Session) { s.Prefs.Destination = "Italie" })

	assert.Equal(t, "Japon", store.Preferences("s1").Destination)
	assert.Equal(t, "Italie", store.Preferences("s2").Destination)
	assert.Equal(t, 2, store.Len())
}

func TestStoreClear(t *testing.T) {
	store := NewStore(20)
	store.Update("s1", func(s *Session) { s.Prefs.Destination = "Japon" })

	store.Clear("s1")
	assert.True(t, store.Preferences("s1").IsEmpty())

	// Clearing again, or clearing an unknown session, is a no-op.
	store.Clear("s1")
	store.Clear("never-existed")

	store.Update("s2", func(s *Session) {})
	store.ClearAll()
	assert.Equal(t, 0, store.Len())
}

func TestStoreTrimsOldestExchanges(t *testing.T) {
	store := NewStore(2)

	for i := 0; i < 5; i++ {
		store.Update("s1", func(s *Session) {
			s.AddUserTurn(fmt.Sprintf("message %d", i))
			s.AddAssistantTurn(fmt.Sprintf("réponse %d", i), nil)
		})
	}

	snap := store.Snapshot("s1")
	require.Len(t, snap.Turns, 4)
	assert.Equal(t, "message 3", snap.Turns[0].Content)
	assert.Equal(t, "réponse 4", snap.Turns[3].Content)
}

func TestStoreTrimDisabled(t *testing.T) {
	store := NewStore(0)

	for i := 0; i < 30; i++ {
		store.Update("s1", func(s *Session) { s.AddUserTurn("m") })
	}
	assert.Len(t, store.Snapshot("s1").Turns, 30)
}

func TestStoreConcurrentSessions(t *testing.T) {
	store := NewStore(50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("s%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				store.Update(id, func(s *Session) { s.AddUserTurn("m") })
				store.Snapshot(id)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, store.Len())
	for i := 0; i < 8; i++ {
		assert.Len(t, store.Snapshot(fmt.Sprintf("s%d", i)).Turns, 20)
	}
}

func TestAwaitingConfirmation(t *testing.T) {
	store := NewStore(20)
	assert.False(t, store.Snapshot("s1").AwaitingConfirmation())

	store.Update("s1", func(s *Session) {
		s.Pending = []catalog.Match{{Reference: "A-1", Score: 0.9}}
	})
	assert.True(t, store.Snapshot("s1").AwaitingConfirmation())
}
