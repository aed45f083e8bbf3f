package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraj01032007/setmystay02/backend/shared/go-models"
)

func TestEntitlementServiceConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	svc := NewEntitlementService(newFlakyKV())
	_, err := svc.Grant(ctx, "v1", models.PlanFive)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		unlocked int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := svc.Consume(ctx, "v1", fmt.Sprintf("item-%d", i))
			assert.NoError(t, err)
			if res.Outcome == ConsumeUnlocked {
				mu.Lock()
				unlocked++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, unlocked)
	state, err := svc.Snapshot(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, state.Count)
	assert.Len(t, state.UnlockedIDs, 5)
}

func TestEntitlementServiceErrors(t *testing.T) {
	ctx := context.Background()
	kv := newFlakyKV()
	svc := NewEntitlementService(kv)

	_, err := svc.Grant(ctx, "v1", models.UnlockPlan{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	kv.failGet = true
	_, err = svc.Snapshot(ctx, "v1")
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(t, err))
	_, err = svc.IsUnlocked(ctx, "v1", "x")
	assert.ErrorIs(t, err, errStoreDown)
}

func TestEntitlementServiceIsolatesVisitors(t *testing.T) {
	ctx := context.Background()
	svc := NewEntitlementService(newFlakyKV())
	_, err := svc.Grant(ctx, "v1", models.PlanUnlimited)
	require.NoError(t, err)
	_, err = svc.Consume(ctx, "v1", "a")
	require.NoError(t, err)

	ok, err := svc.IsUnlocked(ctx, "v1", "a")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsUnlocked(ctx, "v2", "a")
	require.NoError(t, err)
	assert.False(t, ok)
}
