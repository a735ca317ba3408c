package selector

import (
    "context"
    "log"

    "provintel/internal/domain"
    "provintel/internal/ports"
)

const (
    DefaultBatchSize = 50
    DefaultPoolSize  = 100
)

type Service struct {
    directory ports.DirectoryRepository
    intel     ports.IntelligenceRepository
    regions   []string
    poolSize  int
}

func New(directory ports.DirectoryRepository, intel ports.IntelligenceRepository, regions []string, poolSize int) *Service {
    if poolSize < 1 {
        poolSize = DefaultPoolSize
    }
    return &Service{directory: directory, intel: intel, regions: regions, poolSize: poolSize}
}

// SelectBatch returns at most maxCount targets that still need enrichment, in
// directory order. Lookup failures yield an empty batch.
func (s *Service) SelectBatch(ctx context.Context, maxCount int) []domain.Target {
    if maxCount < 1 {
        maxCount = DefaultBatchSize
    }
    if len(s.regions) == 0 {
        return nil
    }
    pool, err := s.directory.ListCandidates(ctx, s.regions, s.poolSize)
    if err != nil {
        log.Printf("selector: list candidates: %v", err)
        return nil
    }

    allowed := make(map[string]bool, len(s.regions))
    for _, r := range s.regions {
        allowed[r] = true
    }
    ids := make([]string, 0, len(pool))
    for _, t := range pool {
        if t.RegistryID != "" {
            ids = append(ids, t.RegistryID)
        }
    }
    if len(ids) == 0 {
        return nil
    }
    enriched, err := s.intel.EnrichedRegistryIDs(ctx, ids)
    if err != nil {
        log.Printf("selector: enriched lookup: %v", err)
        return nil
    }

    batch := make([]domain.Target, 0, min(maxCount, len(pool)))
    seen := make(map[string]bool, len(pool))
    for _, t := range pool {
        if len(batch) >= maxCount {
            break
        }
        if t.RegistryID == "" || !allowed[t.Region] || enriched[t.RegistryID] || seen[t.RegistryID] {
            continue
        }
        seen[t.RegistryID] = true
        batch = append(batch, t)
    }
    return batch
}
