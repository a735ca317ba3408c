// Package classifier turns collected signals into a scored intelligence record.
package classifier

import (
    "strings"
    "time"

    "provintel/internal/domain"
)

const (
    EquipmentWeight = 20
    ExpansionWeight = 15
    DistressWeight  = -30

    // EquipmentSource tags every equipment detection made from search text.
    EquipmentSource = "web_search"
)

// Vocabularies are lowercase; matching lowercases the signal text.
var (
    EquipmentTerms = []string{
        "morpheus8",
        "co2 laser",
        "fraxel",
        "coolsculpting",
        "emsculpt",
        "hydrafacial",
        "inmode",
        "ultherapy",
        "picosure",
        "sciton",
        "laser hair removal",
        "microneedling",
    }
    ExpansionTerms = []string{
        "grand opening",
        "now open",
        "new location",
        "second location",
        "expanding",
        "expansion",
        "opening soon",
        "now hiring",
    }
    DistressTerms = []string{
        "permanently closed",
        "shutting down",
        "out of business",
        "bankruptcy",
        "lawsuit",
        "closing",
    }
)

// Classify scores signals against the fixed vocabularies. Every match counts,
// so a term repeated across signals compounds. The score is not clamped.
func Classify(target domain.Target, signals []domain.Signal, now time.Time) domain.IntelligenceRecord {
    rec := domain.IntelligenceRecord{
        RegistryID:   target.RegistryID,
        ProviderName: target.DisplayName(),
        Equipment:    map[string]domain.EquipmentDetection{},
        DataSource:   domain.DataSourceFreeSearch,
        CreatedAt:    now,
    }
    for _, sig := range signals {
        text := strings.ToLower(sig.Text)
        if text == "" {
            continue
        }
        for _, term := range EquipmentTerms {
            if strings.Contains(text, term) {
                rec.Equipment[term] = domain.EquipmentDetection{Detected: true, Source: EquipmentSource, DetectedAt: now}
                rec.OpportunityScore += EquipmentWeight
            }
        }
        for _, term := range ExpansionTerms {
            if strings.Contains(text, term) {
                rec.MarketInsights.ExpansionSignal = true
                rec.OpportunityScore += ExpansionWeight
            }
        }
        for _, term := range DistressTerms {
            if strings.Contains(text, term) {
                rec.MarketInsights.DistressSignal = true
                rec.OpportunityScore += DistressWeight
            }
        }
    }
    return rec
}

// Strength grades a hot record's buying signal.
func Strength(score int) string {
    if score >= domain.HighStrengthThreshold {
        return domain.StrengthHigh
    }
    return domain.StrengthMedium
}

// SignalType picks equipment adoption when anything was detected.
func SignalType(rec domain.IntelligenceRecord) string {
    if len(rec.DetectedEquipment()) > 0 {
        return domain.SignalTypeEquipmentAdoption
    }
    return domain.SignalTypeExpansion
}
