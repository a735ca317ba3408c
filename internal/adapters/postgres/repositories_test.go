package postgres

import (
    "context"
    "encoding/json"
    "os"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "provintel/internal/domain"
)

// openTestDB connects to TEST_DATABASE_URL, migrates and empties the tables.
// Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *DB {
    t.Helper()
    url := os.Getenv("TEST_DATABASE_URL")
    if url == "" {
        t.Skip("TEST_DATABASE_URL not set")
    }
    ctx := context.Background()
    db, err := Connect(ctx, url, os.Getenv("TEST_DATABASE_PASSWORD"))
    require.NoError(t, err)
    t.Cleanup(db.Close)
    require.NoError(t, db.Migrate(ctx))
    _, err = db.Pool.Exec(ctx, `TRUNCATE provider_directory, provider_intelligence, buying_signals`)
    require.NoError(t, err)
    return db
}

func seed(t *testing.T, db *DB, npi, org, state string) {
    t.Helper()
    _, err := db.Pool.Exec(context.Background(), `
        INSERT INTO provider_directory (npi, organization_name, city, state) VALUES (NULLIF($1, ''), $2, 'Boston', $3)
    `, npi, org, state)
    require.NoError(t, err)
}

func TestListCandidates(t *testing.T) {
    db := openTestDB(t)
    ctx := context.Background()
    seed(t, db, "1000000001", "Acme Spa", "MA")
    seed(t, db, "", "No NPI Spa", "MA")
    seed(t, db, "1000000003", "New York Spa", "NY")
    seed(t, db, "1000000004", "Done Spa", "MA")
    require.NoError(t, db.UpsertIntelligence(ctx, domain.IntelligenceRecord{
        ID: "1000000004_20260301000000", RegistryID: "1000000004", ProviderName: "Done Spa",
        OpportunityScore: 20, DataSource: domain.DataSourceFreeSearch, CreatedAt: time.Now(),
    }))

    got, err := db.ListCandidates(ctx, []string{"MA"}, 100)
    require.NoError(t, err)
    require.Len(t, got, 1)
    assert.Equal(t, "Acme Spa", got[0].OrganizationName)
    assert.Equal(t, "1000000001", got[0].RegistryID)
    assert.NotEmpty(t, got[0].ID)

    enriched, err := db.EnrichedRegistryIDs(ctx, []string{"1000000001", "1000000004"})
    require.NoError(t, err)
    assert.Equal(t, map[string]bool{"1000000004": true}, enriched)
}

func TestUpsertIntelligence_RoundTrip(t *testing.T) {
    db := openTestDB(t)
    ctx := context.Background()
    now := time.Now().UTC().Truncate(time.Second)
    rec := domain.IntelligenceRecord{
        ID:           "1000000001_20260301000000",
        RegistryID:   "1000000001",
        ProviderName: "Acme Spa",
        Equipment: map[string]domain.EquipmentDetection{
            "morpheus8": {Detected: true, Source: "web_search", DetectedAt: now},
        },
        MarketInsights:   domain.MarketInsights{ExpansionSignal: true},
        OpportunityScore: 35,
        DataSource:       domain.DataSourceFreeSearch,
        CreatedAt:        now,
    }
    require.NoError(t, db.UpsertIntelligence(ctx, rec))
    rec.OpportunityScore = 55
    require.NoError(t, db.UpsertIntelligence(ctx, rec))

    ok, got, err := db.LatestByRegistryID(ctx, "1000000001")
    require.NoError(t, err)
    require.True(t, ok)
    assert.Equal(t, 55, got.OpportunityScore)
    assert.True(t, got.Equipment["morpheus8"].Detected)
    assert.True(t, got.MarketInsights.ExpansionSignal)
    assert.False(t, got.Verified)

    ok, _, err = db.LatestByRegistryID(ctx, "9999999999")
    require.NoError(t, err)
    assert.False(t, ok)
}

func TestInsertBuyingSignal(t *testing.T) {
    db := openTestDB(t)
    ctx := context.Background()
    details, _ := json.Marshal(map[string]any{"opportunity_score": 35})

    require.NoError(t, db.InsertBuyingSignal(ctx, domain.BuyingSignal{
        ProviderID: "0f4b7c9e-1111-2222-3333-444455556666",
        SignalType: domain.SignalTypeEquipmentAdoption,
        Strength:   domain.StrengthMedium,
        Details:    details,
        CreatedAt:  time.Now(),
    }))

    var n int
    require.NoError(t, db.Pool.QueryRow(ctx, `SELECT count(*) FROM buying_signals`).Scan(&n))
    assert.Equal(t, 1, n)
}
