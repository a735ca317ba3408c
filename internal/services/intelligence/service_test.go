package intelligence

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "provintel/internal/adapters/memory"
    "provintel/internal/domain"
)

func TestGetLatest(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    require.NoError(t, store.UpsertIntelligence(ctx, domain.IntelligenceRecord{ID: "1234567890_20260301000000", RegistryID: "1234567890", OpportunityScore: 20}))
    require.NoError(t, store.UpsertIntelligence(ctx, domain.IntelligenceRecord{ID: "1234567890_20260302000000", RegistryID: "1234567890", OpportunityScore: 35}))

    rec, err := New(store).GetLatest(ctx, "1234567890")
    require.NoError(t, err)
    assert.Equal(t, 35, rec.OpportunityScore)

    _, err = New(store).GetLatest(ctx, "0000000000")
    assert.ErrorIs(t, err, ErrNotFound)
}
