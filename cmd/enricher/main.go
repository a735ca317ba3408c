package main

import (
    "context"
    "errors"
    "fmt"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/spf13/cobra"

    httpadapter "provintel/internal/adapters/http"
    pg "provintel/internal/adapters/postgres"
    "provintel/internal/config"
    intelsvc "provintel/internal/services/intelligence"
    selsvc "provintel/internal/services/selector"
    sinksvc "provintel/internal/services/sink"
    "provintel/internal/sources"
    "provintel/internal/workers/enrichment"
)

func main() {
    rootCmd := &cobra.Command{
        Use:          "enricher",
        Short:        "Continuously enrich the provider directory from free web sources",
        SilenceUsage: true,
    }
    rootCmd.AddCommand(runCmd(), onceCmd())
    if err := rootCmd.Execute(); err != nil {
        os.Exit(1)
    }
}

func runCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "run",
        Short: "Run enrichment cycles until interrupted",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer stop()

            app, err := setup(ctx)
            if err != nil {
                return err
            }
            defer app.db.Close()

            if app.cfg.ListenAddr != "" {
                srv := httpadapter.New(intelsvc.New(app.db), app.engine, app.sourceNames())
                r := chi.NewRouter()
                r.Mount("/", srv.Routes())
                hs := &http.Server{Addr: app.cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
                go func() {
                    if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
                        log.Printf("health server error: %v", err)
                    }
                }()
                log.Printf("health server listening on %s", app.cfg.ListenAddr)
                defer func() {
                    shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
                    defer cancel()
                    _ = hs.Shutdown(shutdownCtx)
                }()
            }

            app.engine.Run(ctx)
            log.Printf("shutting down")
            return nil
        },
    }
}

func onceCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "once",
        Short: "Run a single enrichment cycle and print its counters",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            app, err := setup(cmd.Context())
            if err != nil {
                return err
            }
            defer app.db.Close()

            res := app.engine.RunOnce(cmd.Context())
            out := cmd.OutOrStdout()
            fmt.Fprintf(out, "providers selected:  %d\n", res.Selected)
            fmt.Fprintf(out, "providers enriched:  %d\n", res.Enriched)
            fmt.Fprintf(out, "hot leads found:     %d\n", res.HotLeads)
            fmt.Fprintf(out, "discarded (score<=0): %d\n", res.Discarded)
            fmt.Fprintf(out, "failed:              %d\n", res.Failed)
            fmt.Fprintf(out, "signals collected:   %d\n", res.SignalsCollected)
            fmt.Fprintf(out, "duration:            %s\n", res.Duration.Round(time.Millisecond))
            return nil
        },
    }
}

type app struct {
    cfg     config.Config
    db      *pg.DB
    engine  *enrichment.Engine
    sources []sources.Source
}

func (a *app) sourceNames() []string {
    names := make([]string, 0, len(a.sources))
    for _, s := range a.sources {
        names = append(names, s.Name())
    }
    return names
}

// setup validates configuration before touching the network, then wires the
// store, sources and engine.
func setup(ctx context.Context) (*app, error) {
    cfg, err := config.Load()
    if err != nil {
        return nil, fmt.Errorf("config: %w", err)
    }

    db, err := pg.Connect(ctx, cfg.DatabaseURL, cfg.DatabasePassword)
    if err != nil {
        return nil, fmt.Errorf("db connect error: %w", err)
    }
    if cfg.AutoMigrate {
        if err := db.Migrate(ctx); err != nil {
            db.Close()
            return nil, err
        }
    }

    client := sources.NewClient(cfg.RequestTimeout)
    srcs := sources.Default(client, cfg.UserAgent)

    selector := selsvc.New(db, db, cfg.Regions, cfg.PoolSize)
    sink := sinksvc.New(db, db)
    engine := enrichment.New(selector, sink, srcs, enrichment.Options{
        BatchSize:     cfg.BatchSize,
        SubBatchSize:  cfg.SubBatchSize,
        SubBatchPause: cfg.SubBatchPause,
        CycleInterval: cfg.CycleInterval,
    })

    a := &app{cfg: cfg, db: db, engine: engine, sources: srcs}
    log.Printf("provider enrichment (%s): regions=%v batch=%d interval=%s sources=%v",
        cfg.Env, cfg.Regions, cfg.BatchSize, cfg.CycleInterval, a.sourceNames())
    return a, nil
}
