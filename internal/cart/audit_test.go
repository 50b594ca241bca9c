package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditReportsWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clean, err := f.coord.CreateCart(ctx, []Line{{CatalogItemID: "advil", Quantity: 1}})
	require.NoError(t, err)
	dirty, err := f.coord.CreateCart(ctx, []Line{{CatalogItemID: "lipitor", Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, f.store.Repos().Carts.IncrementTotal(ctx, dirty.ID, decimal.NewFromInt(1)))

	drifted, err := f.coord.Audit(ctx)
	require.NoError(t, err)
	require.Len(t, drifted, 1)
	assert.Equal(t, dirty.ID, drifted[0].CartID)
	assert.Equal(t, "10", drifted[0].Stored)
	assert.Equal(t, "9", drifted[0].Computed)
	assert.NotEqual(t, clean.ID, drifted[0].CartID)

	stored, _, err := f.coord.Recompute(ctx, dirty.ID)
	require.NoError(t, err)
	assert.Equal(t, "10", stored.String())
}

func TestRunAuditStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.coord.RunAudit(ctx, 5*time.Millisecond) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunAudit did not stop")
	}
}
