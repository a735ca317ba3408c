package sink

import (
    "context"
    "encoding/json"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "provintel/internal/adapters/memory"
    "provintel/internal/domain"
)

var (
    fixedNow = time.Date(2026, 3, 1, 9, 30, 15, 0, time.UTC)
    target   = domain.Target{ID: "0f4b7c9e-1111-2222-3333-444455556666", RegistryID: "1234567890", OrganizationName: "Acme Spa"}
)

func newSink(store *memory.Store) *Service {
    return New(store, store).WithClock(func() time.Time { return fixedNow })
}

func record(score int, equipment ...string) domain.IntelligenceRecord {
    rec := domain.IntelligenceRecord{
        RegistryID:       target.RegistryID,
        ProviderName:     target.DisplayName(),
        Equipment:        map[string]domain.EquipmentDetection{},
        OpportunityScore: score,
        DataSource:       domain.DataSourceFreeSearch,
        Verified:         true,
    }
    for _, e := range equipment {
        rec.Equipment[e] = domain.EquipmentDetection{Detected: true, Source: "web_search", DetectedAt: fixedNow}
    }
    return rec
}

func TestRecordID(t *testing.T) {
    assert.Equal(t, "1234567890_20260301093015", RecordID(target, fixedNow))

    noNPI := target
    noNPI.RegistryID = "12-34"
    assert.Equal(t, "0f4b7c9e_20260301093015", RecordID(noNPI, fixedNow))

    shortInternal := domain.Target{ID: "abc"}
    assert.Equal(t, "abc_20260301093015", RecordID(shortInternal, fixedNow))

    anonymous := RecordID(domain.Target{}, fixedNow)
    assert.Len(t, anonymous, 8+1+len(idTimeLayout))
}

func TestSave_BelowHotThreshold(t *testing.T) {
    store := memory.New()

    out, err := newSink(store).Save(context.Background(), record(20, "morpheus8"), target)

    require.NoError(t, err)
    assert.True(t, out.Saved)
    assert.False(t, out.BuyingSignal)
    recs := store.Records()
    require.Len(t, recs, 1)
    assert.Equal(t, "1234567890_20260301093015", recs[0].ID)
    assert.False(t, recs[0].Verified, "records are never verified on creation")
    assert.Equal(t, fixedNow, recs[0].CreatedAt)
    assert.Empty(t, store.BuyingSignals())
}

func TestSave_HotMediumEquipment(t *testing.T) {
    store := memory.New()

    out, err := newSink(store).Save(context.Background(), record(35, "morpheus8"), target)

    require.NoError(t, err)
    assert.True(t, out.BuyingSignal)
    sigs := store.BuyingSignals()
    require.Len(t, sigs, 1)
    assert.Equal(t, target.ID, sigs[0].ProviderID)
    assert.Equal(t, domain.SignalTypeEquipmentAdoption, sigs[0].SignalType)
    assert.Equal(t, domain.StrengthMedium, sigs[0].Strength)

    var details map[string]any
    require.NoError(t, json.Unmarshal(sigs[0].Details, &details))
    assert.Equal(t, out.RecordID, details["record_id"])
    assert.Equal(t, []any{"morpheus8"}, details["equipment"])
}

func TestSave_HotHighExpansion(t *testing.T) {
    store := memory.New()

    _, err := newSink(store).Save(context.Background(), record(50), target)

    require.NoError(t, err)
    sigs := store.BuyingSignals()
    require.Len(t, sigs, 1)
    assert.Equal(t, domain.SignalTypeExpansion, sigs[0].SignalType)
    assert.Equal(t, domain.StrengthHigh, sigs[0].Strength)
}

func TestSave_DuplicateIDUpserts(t *testing.T) {
    store := memory.New()
    s := newSink(store)

    _, err := s.Save(context.Background(), record(20, "fraxel"), target)
    require.NoError(t, err)
    _, err = s.Save(context.Background(), record(40, "fraxel"), target)
    require.NoError(t, err)

    recs := store.Records()
    require.Len(t, recs, 1)
    assert.Equal(t, 40, recs[0].OpportunityScore)
}

func TestSave_RecordFailure(t *testing.T) {
    store := memory.New()
    store.FailUpsert = true

    out, err := newSink(store).Save(context.Background(), record(60, "morpheus8"), target)

    require.ErrorIs(t, err, memory.ErrInjected)
    assert.False(t, out.Saved)
    assert.Empty(t, store.BuyingSignals(), "no buying signal without a record")
}

func TestSave_SignalFailureKeepsRecord(t *testing.T) {
    store := memory.New()
    store.FailSignals = true

    out, err := newSink(store).Save(context.Background(), record(60, "morpheus8"), target)

    require.NoError(t, err)
    assert.True(t, out.Saved)
    assert.False(t, out.BuyingSignal)
    assert.Len(t, store.Records(), 1)
}
