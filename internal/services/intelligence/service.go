package intelligence

import (
    "context"

    "provintel/internal/domain"
    "provintel/internal/ports"
)

type Service struct {
    records ports.IntelligenceRepository
}

func New(records ports.IntelligenceRepository) *Service { return &Service{records: records} }

func (s *Service) GetLatest(ctx context.Context, registryID string) (domain.IntelligenceRecord, error) {
    exists, rec, err := s.records.LatestByRegistryID(ctx, registryID)
    if err != nil {
        return domain.IntelligenceRecord{}, err
    }
    if !exists {
        return domain.IntelligenceRecord{}, ErrNotFound
    }
    return rec, nil
}

var ErrNotFound = errString("not found")
type errString string
func (e errString) Error() string { return string(e) }
