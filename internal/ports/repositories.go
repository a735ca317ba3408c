package ports

import (
    "context"

    "provintel/internal/domain"
)

// DirectoryRepository reads provider directory entries. Read-only.
type DirectoryRepository interface {
    // ListCandidates returns up to limit entries located in one of regions that
    // carry a registry id and have no intelligence record yet, in directory order.
    ListCandidates(ctx context.Context, regions []string, limit int) ([]domain.Target, error)
}

// IntelligenceRepository stores intelligence records keyed by generated id.
type IntelligenceRepository interface {
    // EnrichedRegistryIDs reports which of registryIDs already have a record.
    EnrichedRegistryIDs(ctx context.Context, registryIDs []string) (map[string]bool, error)
    // UpsertIntelligence inserts rec or replaces the row with the same id.
    UpsertIntelligence(ctx context.Context, rec domain.IntelligenceRecord) error
    // LatestByRegistryID returns the newest record for a registry id.
    LatestByRegistryID(ctx context.Context, registryID string) (exists bool, rec domain.IntelligenceRecord, err error)
}

// BuyingSignalRepository appends buying signals.
type BuyingSignalRepository interface {
    InsertBuyingSignal(ctx context.Context, sig domain.BuyingSignal) error
}
