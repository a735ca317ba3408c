package sink

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "slices"
    "time"

    "github.com/google/uuid"

    "provintel/internal/domain"
    "provintel/internal/ports"
    "provintel/internal/services/classifier"
)

const idTimeLayout = "20060102150405"

var _ ports.Sink = (*Service)(nil)

type Service struct {
    records ports.IntelligenceRepository
    signals ports.BuyingSignalRepository
    now     ports.Clock
}

func New(records ports.IntelligenceRepository, signals ports.BuyingSignalRepository) *Service {
    return &Service{records: records, signals: signals, now: time.Now}
}

// WithClock replaces the time source used for ids and timestamps.
func (s *Service) WithClock(now ports.Clock) *Service {
    s.now = now
    return s
}

// Save upserts rec under a generated id and, for hot records, appends a buying
// signal. Only the record write can fail the call; a buying signal failure is
// logged and leaves the record in place.
func (s *Service) Save(ctx context.Context, rec domain.IntelligenceRecord, target domain.Target) (ports.SaveOutcome, error) {
    now := s.now()
    rec.ID = RecordID(target, now)
    rec.Verified = false
    if rec.CreatedAt.IsZero() {
        rec.CreatedAt = now
    }
    out := ports.SaveOutcome{RecordID: rec.ID}
    if err := s.records.UpsertIntelligence(ctx, rec); err != nil {
        return out, fmt.Errorf("save intelligence %s: %w", rec.ID, err)
    }
    out.Saved = true

    if !rec.Hot() {
        return out, nil
    }
    sig, err := buyingSignal(rec, target, now)
    if err == nil {
        err = s.signals.InsertBuyingSignal(ctx, sig)
    }
    if err != nil {
        log.Printf("sink: buying signal for %s: %v", rec.ID, err)
        return out, nil
    }
    out.BuyingSignal = true
    return out, nil
}

// RecordID combines the registry id, or a short form of the internal id when
// the registry id is not a valid NPI, with the time to the second.
func RecordID(target domain.Target, now time.Time) string {
    key := target.RegistryID
    if !validNPI(key) {
        key = shortID(target.ID)
    }
    return key + "_" + now.UTC().Format(idTimeLayout)
}

func validNPI(s string) bool {
    if len(s) != 10 {
        return false
    }
    for _, r := range s {
        if r < '0' || r > '9' {
            return false
        }
    }
    return true
}

func shortID(id string) string {
    if id == "" {
        id = uuid.NewString()
    }
    if len(id) > 8 {
        return id[:8]
    }
    return id
}

type signalDetails struct {
    RecordID         string   `json:"record_id"`
    RegistryID       string   `json:"registry_id,omitempty"`
    ProviderName     string   `json:"provider_name"`
    OpportunityScore int      `json:"opportunity_score"`
    Equipment        []string `json:"equipment"`
    ExpansionSignal  bool     `json:"expansion_signal"`
    DistressSignal   bool     `json:"distress_signal"`
}

func buyingSignal(rec domain.IntelligenceRecord, target domain.Target, now time.Time) (domain.BuyingSignal, error) {
    equipment := rec.DetectedEquipment()
    slices.Sort(equipment)
    details, err := json.Marshal(signalDetails{
        RecordID:         rec.ID,
        RegistryID:       rec.RegistryID,
        ProviderName:     rec.ProviderName,
        OpportunityScore: rec.OpportunityScore,
        Equipment:        equipment,
        ExpansionSignal:  rec.MarketInsights.ExpansionSignal,
        DistressSignal:   rec.MarketInsights.DistressSignal,
    })
    if err != nil {
        return domain.BuyingSignal{}, err
    }
    return domain.BuyingSignal{
        ProviderID: target.ID,
        SignalType: classifier.SignalType(rec),
        Strength:   classifier.Strength(rec.OpportunityScore),
        Details:    details,
        CreatedAt:  now,
    }, nil
}
