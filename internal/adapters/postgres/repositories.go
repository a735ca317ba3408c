package postgres

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"

    "github.com/jackc/pgx/v5"

    "provintel/internal/domain"
    "provintel/internal/ports"
)

var (
    _ ports.DirectoryRepository    = (*DB)(nil)
    _ ports.IntelligenceRepository = (*DB)(nil)
    _ ports.BuyingSignalRepository = (*DB)(nil)
)

// DirectoryRepository
func (db *DB) ListCandidates(ctx context.Context, regions []string, limit int) ([]domain.Target, error) {
    rows, err := db.Pool.Query(ctx, `
        SELECT d.id::text, d.npi,
               COALESCE(d.organization_name, ''), COALESCE(d.first_name, ''), COALESCE(d.last_name, ''),
               COALESCE(d.provider_name, ''), COALESCE(d.city, ''), COALESCE(d.state, '')
        FROM provider_directory d
        WHERE d.state = ANY($1)
          AND d.npi IS NOT NULL AND d.npi <> ''
          AND NOT EXISTS (SELECT 1 FROM provider_intelligence i WHERE i.npi = d.npi)
        ORDER BY d.created_at, d.id
        LIMIT $2
    `, regions, limit)
    if err != nil {
        return nil, fmt.Errorf("list candidates: %w", err)
    }
    return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Target, error) {
        var t domain.Target
        err := row.Scan(&t.ID, &t.RegistryID, &t.OrganizationName, &t.FirstName, &t.LastName, &t.ProviderName, &t.City, &t.Region)
        return t, err
    })
}

// IntelligenceRepository
func (db *DB) EnrichedRegistryIDs(ctx context.Context, registryIDs []string) (map[string]bool, error) {
    out := make(map[string]bool, len(registryIDs))
    if len(registryIDs) == 0 {
        return out, nil
    }
    rows, err := db.Pool.Query(ctx, `SELECT DISTINCT npi FROM provider_intelligence WHERE npi = ANY($1)`, registryIDs)
    if err != nil {
        return nil, fmt.Errorf("enriched ids: %w", err)
    }
    ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
    if err != nil {
        return nil, fmt.Errorf("enriched ids: %w", err)
    }
    for _, id := range ids {
        out[id] = true
    }
    return out, nil
}

func (db *DB) UpsertIntelligence(ctx context.Context, rec domain.IntelligenceRecord) error {
    equipment, err := json.Marshal(rec.Equipment)
    if err != nil {
        return err
    }
    insights, err := json.Marshal(rec.MarketInsights)
    if err != nil {
        return err
    }
    _, err = db.Pool.Exec(ctx, `
        INSERT INTO provider_intelligence
            (id, npi, provider_name, equipment, market_insights, opportunity_score, data_source, verified, created_at)
        VALUES ($1, NULLIF($2, ''), $3, $4::jsonb, $5::jsonb, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE SET
            npi = EXCLUDED.npi,
            provider_name = EXCLUDED.provider_name,
            equipment = EXCLUDED.equipment,
            market_insights = EXCLUDED.market_insights,
            opportunity_score = EXCLUDED.opportunity_score,
            data_source = EXCLUDED.data_source,
            updated_at = now()
    `, rec.ID, rec.RegistryID, rec.ProviderName, string(equipment), string(insights),
        rec.OpportunityScore, rec.DataSource, rec.Verified, rec.CreatedAt)
    return err
}

func (db *DB) LatestByRegistryID(ctx context.Context, registryID string) (bool, domain.IntelligenceRecord, error) {
    var rec domain.IntelligenceRecord
    var equipment, insights []byte
    err := db.Pool.QueryRow(ctx, `
        SELECT id, COALESCE(npi, ''), provider_name, equipment, market_insights,
               opportunity_score, data_source, verified, created_at
        FROM provider_intelligence
        WHERE npi = $1
        ORDER BY created_at DESC
        LIMIT 1
    `, registryID).Scan(&rec.ID, &rec.RegistryID, &rec.ProviderName, &equipment, &insights,
        &rec.OpportunityScore, &rec.DataSource, &rec.Verified, &rec.CreatedAt)
    if errors.Is(err, pgx.ErrNoRows) {
        return false, rec, nil
    }
    if err != nil {
        return false, rec, err
    }
    if err := json.Unmarshal(equipment, &rec.Equipment); err != nil {
        return false, rec, fmt.Errorf("decode equipment: %w", err)
    }
    if err := json.Unmarshal(insights, &rec.MarketInsights); err != nil {
        return false, rec, fmt.Errorf("decode market insights: %w", err)
    }
    return true, rec, nil
}

// BuyingSignalRepository
func (db *DB) InsertBuyingSignal(ctx context.Context, sig domain.BuyingSignal) error {
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO buying_signals (provider_id, signal_type, signal_strength, details, created_at)
        VALUES ($1, $2, $3, $4::jsonb, $5)
    `, sig.ProviderID, sig.SignalType, sig.Strength, string(sig.Details), sig.CreatedAt)
    return err
}
