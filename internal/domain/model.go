package domain

import (
    "encoding/json"
    "strings"
    "time"
)

// Core domain models used by the enrichment cycle. Storage rows live in the
// postgres adapter; keep these decoupled from column layout.

// Target is a provider directory entry selected for enrichment.
type Target struct {
    ID               string
    RegistryID       string // NPI; empty when the directory has none
    OrganizationName string
    FirstName        string
    LastName         string
    ProviderName     string // raw stored name
    City             string
    Region           string // state code
}

// DisplayName returns the searchable name for the target.
func (t Target) DisplayName() string {
    org := strings.TrimSpace(t.OrganizationName)
    first := strings.TrimSpace(t.FirstName)
    last := strings.TrimSpace(t.LastName)
    switch {
    case org != "":
        return org
    case first != "" && last != "":
        return "Dr. " + first + " " + last
    case last != "":
        return "Dr. " + last
    case strings.TrimSpace(t.ProviderName) != "":
        return strings.TrimSpace(t.ProviderName)
    }
    return "Unknown Provider"
}

// Location renders "City, Region", dropping empty parts.
func (t Target) Location() string {
    parts := make([]string, 0, 2)
    if c := strings.TrimSpace(t.City); c != "" {
        parts = append(parts, c)
    }
    if r := strings.TrimSpace(t.Region); r != "" {
        parts = append(parts, r)
    }
    return strings.Join(parts, ", ")
}

// Signal is a free-text snippet attributed to the source that produced it.
type Signal struct {
    Source string
    Text   string
}

type EquipmentDetection struct {
    Detected   bool      `json:"detected"`
    Source     string    `json:"source"`
    DetectedAt time.Time `json:"timestamp"`
}

type MarketInsights struct {
    ExpansionSignal bool `json:"expansion_signal"`
    DistressSignal  bool `json:"distress_signal"`
}

// IntelligenceRecord is the scored outcome of one enrichment pass.
type IntelligenceRecord struct {
    ID               string
    RegistryID       string
    ProviderName     string
    Equipment        map[string]EquipmentDetection
    MarketInsights   MarketInsights
    OpportunityScore int
    DataSource       string
    Verified         bool
    CreatedAt        time.Time
}

const (
    DataSourceFreeSearch = "free_search"

    HotLeadThreshold      = 30
    HighStrengthThreshold = 50
)

// Worth reports whether the record carries enough value to persist.
func (r IntelligenceRecord) Worth() bool { return r.OpportunityScore > 0 }

// Hot reports whether the record should emit a buying signal.
func (r IntelligenceRecord) Hot() bool { return r.OpportunityScore >= HotLeadThreshold }

// DetectedEquipment returns the names of detected equipment in no particular order.
func (r IntelligenceRecord) DetectedEquipment() []string {
    out := make([]string, 0, len(r.Equipment))
    for name, d := range r.Equipment {
        if d.Detected {
            out = append(out, name)
        }
    }
    return out
}

const (
    SignalTypeEquipmentAdoption = "equipment_adoption"
    SignalTypeExpansion         = "expansion"

    StrengthHigh   = "high"
    StrengthMedium = "medium"
)

// BuyingSignal is derived from a hot IntelligenceRecord. Append-only.
type BuyingSignal struct {
    ProviderID string
    SignalType string
    Strength   string
    Details    json.RawMessage
    CreatedAt  time.Time
}

// CycleResult holds the counters of one selection+enrichment pass.
type CycleResult struct {
    Selected         int
    Enriched         int
    Discarded        int
    HotLeads         int
    Failed           int
    SignalsCollected int
    StartedAt        time.Time
    Duration         time.Duration
}
