package httpadapter

import (
    "encoding/json"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"

    "provintel/internal/domain"
    "provintel/internal/ports"
    intelsvc "provintel/internal/services/intelligence"
    "provintel/internal/workers/enrichment"
)

// StatusReporter exposes the engine's current state.
type StatusReporter interface {
    Snapshot() enrichment.Snapshot
}

// Server serves health and read-only status endpoints for the supervisor.
type Server struct {
    intel   ports.Intelligence
    status  StatusReporter
    sources []string
    now     func() time.Time
}

func New(intel ports.Intelligence, status StatusReporter, sources []string) *Server {
    return &Server{intel: intel, status: status, sources: sources, now: time.Now}
}

func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Use(middleware.Recoverer)
    r.Get("/healthz", s.getHealthz)
    r.Get("/stats", s.getStats)
    r.Get("/intelligence/{registryID}", s.getIntelligence)
    return r
}

type healthResponse struct {
    Status    string    `json:"status"`
    Method    string    `json:"method"`
    State     string    `json:"state"`
    Sources   []string  `json:"sources"`
    Timestamp time.Time `json:"timestamp"`
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, healthResponse{
        Status:    "healthy",
        Method:    domain.DataSourceFreeSearch,
        State:     string(s.status.Snapshot().State),
        Sources:   s.sources,
        Timestamp: s.now().UTC(),
    })
}

type cycleJSON struct {
    Selected         int       `json:"selected"`
    Enriched         int       `json:"enriched"`
    Discarded        int       `json:"discarded"`
    HotLeads         int       `json:"hot_leads"`
    Failed           int       `json:"failed"`
    SignalsCollected int       `json:"signals_collected"`
    StartedAt        time.Time `json:"started_at"`
    DurationMS       int64     `json:"duration_ms"`
}

type statsResponse struct {
    State  string    `json:"state"`
    Last   cycleJSON `json:"last_cycle"`
    Totals struct {
        Cycles   int `json:"cycles"`
        Selected int `json:"selected"`
        Enriched int `json:"enriched"`
        HotLeads int `json:"hot_leads"`
        Failed   int `json:"failed"`
    } `json:"totals"`
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
    snap := s.status.Snapshot()
    var resp statsResponse
    resp.State = string(snap.State)
    resp.Last = cycleJSON{
        Selected:         snap.Last.Selected,
        Enriched:         snap.Last.Enriched,
        Discarded:        snap.Last.Discarded,
        HotLeads:         snap.Last.HotLeads,
        Failed:           snap.Last.Failed,
        SignalsCollected: snap.Last.SignalsCollected,
        StartedAt:        snap.Last.StartedAt,
        DurationMS:       snap.Last.Duration.Milliseconds(),
    }
    resp.Totals.Cycles = snap.Totals.Cycles
    resp.Totals.Selected = snap.Totals.Selected
    resp.Totals.Enriched = snap.Totals.Enriched
    resp.Totals.HotLeads = snap.Totals.HotLeads
    resp.Totals.Failed = snap.Totals.Failed
    writeJSON(w, http.StatusOK, resp)
}

type intelligenceResponse struct {
    ID               string                               `json:"id"`
    RegistryID       string                               `json:"npi"`
    ProviderName     string                               `json:"provider_name"`
    Equipment        map[string]domain.EquipmentDetection `json:"equipment"`
    MarketInsights   domain.MarketInsights                `json:"market_insights"`
    OpportunityScore int                                  `json:"opportunity_score"`
    DataSource       string                               `json:"data_source"`
    Verified         bool                                 `json:"verified"`
    CreatedAt        time.Time                            `json:"created_at"`
}

func (s *Server) getIntelligence(w http.ResponseWriter, r *http.Request) {
    rec, err := s.intel.GetLatest(r.Context(), chi.URLParam(r, "registryID"))
    if errors.Is(err, intelsvc.ErrNotFound) {
        writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
        return
    }
    if err != nil {
        log.Printf("http: intelligence lookup: %v", err)
        writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
        return
    }
    writeJSON(w, http.StatusOK, intelligenceResponse{
        ID:               rec.ID,
        RegistryID:       rec.RegistryID,
        ProviderName:     rec.ProviderName,
        Equipment:        rec.Equipment,
        MarketInsights:   rec.MarketInsights,
        OpportunityScore: rec.OpportunityScore,
        DataSource:       rec.DataSource,
        Verified:         rec.Verified,
        CreatedAt:        rec.CreatedAt,
    })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    if err := json.NewEncoder(w).Encode(v); err != nil {
        log.Printf("http: encode response: %v", err)
    }
}
