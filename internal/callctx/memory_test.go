package callctx

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/garasindo/voice-crm-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetRemove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.False(t, ok)

	callContext := &domain.CallContext{CallSID: "CA1", CustomerName: "Budi"}
	require.NoError(t, store.Put(ctx, "CA1", callContext))

	got, ok, err := store.Get(ctx, "CA1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Budi", got.CustomerName)
	assert.Equal(t, 1, store.Len())

	// Put replaces in place.
	require.NoError(t, store.Put(ctx, "CA1", &domain.CallContext{CallSID: "CA1", CustomerName: "Siti"}))
	got, _, _ = store.Get(ctx, "CA1")
	assert.Equal(t, "Siti", got.CustomerName)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Remove(ctx, "CA1"))
	_, ok, err = store.Get(ctx, "CA1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())

	// Removing a missing key is not an error.
	require.NoError(t, store.Remove(ctx, "CA1"))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sid := fmt.Sprintf("CA%03d", n)
			_ = store.Put(ctx, sid, &domain.CallContext{CallSID: sid})
			_, _, _ = store.Get(ctx, sid)
			if n%2 == 0 {
				_ = store.Remove(ctx, sid)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 25, store.Len())
}
