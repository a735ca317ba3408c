package enrichment

import (
    "context"
    "fmt"
    "log"
    "sync"
    "time"

    "golang.org/x/sync/errgroup"

    "provintel/internal/domain"
    "provintel/internal/ports"
    "provintel/internal/services/classifier"
    "provintel/internal/sources"
)

type State string

const (
    StateIdle      State = "idle"
    StateSelecting State = "selecting"
    StateEnriching State = "enriching"
)

type Options struct {
    BatchSize     int
    SubBatchSize  int
    SubBatchPause time.Duration
    CycleInterval time.Duration
}

func (o Options) withDefaults() Options {
    if o.BatchSize < 1 { o.BatchSize = 50 }
    if o.SubBatchSize < 1 { o.SubBatchSize = 10 }
    if o.SubBatchPause < 0 { o.SubBatchPause = 0 }
    if o.CycleInterval <= 0 { o.CycleInterval = 5 * time.Minute }
    return o
}

// Totals accumulates cycle results across the life of an Engine.
type Totals struct {
    Cycles   int
    Selected int
    Enriched int
    HotLeads int
    Failed   int
}

func (t *Totals) add(r domain.CycleResult) {
    t.Cycles++
    t.Selected += r.Selected
    t.Enriched += r.Enriched
    t.HotLeads += r.HotLeads
    t.Failed += r.Failed
}

// Snapshot is a point-in-time view of the engine for status reporting.
type Snapshot struct {
    State  State
    Last   domain.CycleResult
    Totals Totals
}

// Engine drives the select, enrich, persist cycle.
type Engine struct {
    selector ports.Selector
    sink     ports.Sink
    sources  []sources.Source
    opts     Options
    now      ports.Clock

    mu     sync.Mutex
    state  State
    last   domain.CycleResult
    totals Totals
}

func New(selector ports.Selector, sink ports.Sink, srcs []sources.Source, opts Options) *Engine {
    return &Engine{
        selector: selector,
        sink:     sink,
        sources:  srcs,
        opts:     opts.withDefaults(),
        now:      time.Now,
        state:    StateIdle,
    }
}

func (e *Engine) Snapshot() Snapshot {
    e.mu.Lock()
    defer e.mu.Unlock()
    return Snapshot{State: e.state, Last: e.last, Totals: e.totals}
}

func (e *Engine) setState(s State) {
    e.mu.Lock()
    e.state = s
    e.mu.Unlock()
}

// Run repeats RunOnce with CycleInterval between cycles until ctx is done.
func (e *Engine) Run(ctx context.Context) {
    for {
        res := e.RunOnce(ctx)
        log.Printf("cycle complete: selected=%d enriched=%d hot=%d discarded=%d failed=%d signals=%d in %s",
            res.Selected, res.Enriched, res.HotLeads, res.Discarded, res.Failed, res.SignalsCollected, res.Duration.Round(time.Millisecond))
        select {
        case <-ctx.Done():
            return
        case <-time.After(e.opts.CycleInterval):
        }
    }
}

// RunOnce performs one selection and enriches the batch in sub-batches. Target
// failures are counted, never returned.
func (e *Engine) RunOnce(ctx context.Context) (res domain.CycleResult) {
    res.StartedAt = e.now()
    defer func() {
        res.Duration = e.now().Sub(res.StartedAt)
        e.mu.Lock()
        e.state = StateIdle
        e.last = res
        e.totals.add(res)
        e.mu.Unlock()
    }()

    e.setState(StateSelecting)
    batch := e.selector.SelectBatch(ctx, e.opts.BatchSize)
    res.Selected = len(batch)
    if len(batch) == 0 {
        log.Printf("no providers to enrich")
        return res
    }

    e.setState(StateEnriching)
    for start := 0; start < len(batch); start += e.opts.SubBatchSize {
        if start > 0 && !sleep(ctx, e.opts.SubBatchPause) {
            log.Printf("cycle interrupted after %d of %d providers", start, len(batch))
            break
        }
        end := min(start+e.opts.SubBatchSize, len(batch))
        for _, o := range e.enrichAll(ctx, batch[start:end]) {
            res.SignalsCollected += o.signals
            switch {
            case o.err != nil:
                res.Failed++
            case o.discarded:
                res.Discarded++
            default:
                res.Enriched++
                if o.hot {
                    res.HotLeads++
                }
            }
        }
    }
    return res
}

type outcome struct {
    signals   int
    discarded bool
    hot       bool
    err       error
}

func (e *Engine) enrichAll(ctx context.Context, targets []domain.Target) []outcome {
    out := make([]outcome, len(targets))
    var g errgroup.Group
    for i, t := range targets {
        g.Go(func() error {
            out[i] = e.enrichTarget(ctx, t)
            return nil
        })
    }
    _ = g.Wait()
    return out
}

func (e *Engine) enrichTarget(ctx context.Context, t domain.Target) (o outcome) {
    defer func() {
        if r := recover(); r != nil {
            o = outcome{err: fmt.Errorf("panic: %v", r)}
            log.Printf("enrich %s: %v", t.DisplayName(), o.err)
        }
    }()

    signals := sources.Flatten(sources.Collect(ctx, e.sources, t))
    o.signals = len(signals)
    rec := classifier.Classify(t, signals, e.now())
    if !rec.Worth() {
        o.discarded = true
        return o
    }
    saved, err := e.sink.Save(ctx, rec, t)
    if err != nil {
        o.err = err
        log.Printf("enrich %s: %v", t.DisplayName(), err)
        return o
    }
    o.hot = rec.Hot()
    if o.hot {
        log.Printf("hot lead: %s score=%d record=%s signal=%t", t.DisplayName(), rec.OpportunityScore, saved.RecordID, saved.BuyingSignal)
    }
    return o
}

func sleep(ctx context.Context, d time.Duration) bool {
    if d <= 0 {
        return ctx.Err() == nil
    }
    select {
    case <-ctx.Done():
        return false
    case <-time.After(d):
        return true
    }
}
