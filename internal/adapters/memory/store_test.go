package memory

import (
    "context"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "provintel/internal/domain"
)

func TestStore_ListCandidates(t *testing.T) {
    ctx := context.Background()
    s := New(
        domain.Target{ID: "a", RegistryID: "1000000001", Region: "MA"},
        domain.Target{ID: "b", Region: "MA"},
        domain.Target{ID: "c", RegistryID: "1000000003", Region: "NY"},
        domain.Target{ID: "d", RegistryID: "1000000004", Region: "MA"},
    )
    require.NoError(t, s.UpsertIntelligence(ctx, domain.IntelligenceRecord{ID: "r1", RegistryID: "1000000004"}))

    got, err := s.ListCandidates(ctx, []string{"MA"}, 10)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "a", got[0].ID)
}

func TestStore_UpsertReplacesByID(t *testing.T) {
    ctx := context.Background()
    s := New()
    require.NoError(t, s.UpsertIntelligence(ctx, domain.IntelligenceRecord{ID: "r1", RegistryID: "1", OpportunityScore: 20}))
    require.NoError(t, s.UpsertIntelligence(ctx, domain.IntelligenceRecord{ID: "r1", RegistryID: "1", OpportunityScore: 40}))

    recs := s.Records()
    require.Len(t, recs, 1)
    assert.Equal(t, 40, recs[0].OpportunityScore)

    ok, latest, err := s.LatestByRegistryID(ctx, "1")
    require.NoError(t, err)
    assert.True(t, ok)
    assert.Equal(t, "r1", latest.ID)
}

func TestStore_UpsertRequiresID(t *testing.T) {
    assert.Error(t, New().UpsertIntelligence(context.Background(), domain.IntelligenceRecord{}))
}

func TestStore_InjectedFailures(t *testing.T) {
    ctx := context.Background()
    s := New()
    s.FailList, s.FailUpsert, s.FailSignals = true, true, true

    _, err := s.ListCandidates(ctx, []string{"MA"}, 1)
    assert.ErrorIs(t, err, ErrInjected)
    assert.ErrorIs(t, s.UpsertIntelligence(ctx, domain.IntelligenceRecord{ID: "x"}), ErrInjected)
    assert.ErrorIs(t, s.InsertBuyingSignal(ctx, domain.BuyingSignal{}), ErrInjected)
}
