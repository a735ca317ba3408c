package ports

import (
    "context"
    "time"

    "provintel/internal/domain"
)

// Selector chooses the next batch of targets to enrich.
type Selector interface {
    SelectBatch(ctx context.Context, maxCount int) []domain.Target
}

// SaveOutcome reports what a Sink wrote for one target.
type SaveOutcome struct {
    RecordID     string
    Saved        bool
    BuyingSignal bool
}

// Sink persists classified records.
type Sink interface {
    Save(ctx context.Context, rec domain.IntelligenceRecord, target domain.Target) (SaveOutcome, error)
}

// Intelligence serves stored records for lookups.
type Intelligence interface {
    GetLatest(ctx context.Context, registryID string) (domain.IntelligenceRecord, error)
}

// Clock lets tests pin timestamps.
type Clock func() time.Time
