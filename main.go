package main

import (
	"context"
	"embed"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mmarfinetz/3dTetris/api"
	"github.com/mmarfinetz/3dTetris/internal/config"
	"github.com/mmarfinetz/3dTetris/internal/game"
	"github.com/mmarfinetz/3dTetris/internal/monitor"
	"github.com/mmarfinetz/3dTetris/internal/monitoring"
	"github.com/mmarfinetz/3dTetris/internal/physics"
	"github.com/mmarfinetz/3dTetris/internal/sim"
	"github.com/mmarfinetz/3dTetris/internal/stability"
	"github.com/mmarfinetz/3dTetris/internal/store"
	"github.com/mmarfinetz/3dTetris/internal/version"
)

var (
	//go:embed static/*
	staticFiles embed.FS
	devMode     = flag.Bool("dev", false, "Run in dev mode (serve static files from disk)")
	listen      = flag.String("listen", ":8080", "Listen address")
	dbFile      = flag.String("db", "stacking.db", "SQLite database path; empty disables persistence")
	configPath  = flag.String("config", "", "Tuning config path (defaults to the built-in config)")
	plotsDir    = flag.String("plots", "", "Base directory for PNG run plots; empty disables plot export")
	seed        = flag.Int64("seed", 0, "Game seed; 0 derives one from the clock")
	verbose     = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}
	monitoring.SetVerbose(*verbose)
	log.Printf("stacking server %s", version.String())

	var tuning *config.TuningConfig
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	} else {
		tuning = config.MustLoadDefaultConfig()
	}

	gameSeed := *seed
	if gameSeed == 0 {
		gameSeed = time.Now().UnixNano()
	}

	var db *store.Store
	if *dbFile != "" {
		var err error
		db, err = store.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()
	}

	world := physics.NewWorld(tuning.WorldConfig())
	g := game.New(tuning.GameConfig(), world, gameSeed)
	analyzer := stability.NewAnalyzer(tuning.StabilityConfig())

	var sessionID string
	if db != nil {
		var err error
		sessionID, err = db.BeginSession(gameSeed)
		if err != nil {
			log.Fatalf("failed to begin session: %v", err)
		}
	}

	var plotter *monitor.RunPlotter
	if *plotsDir != "" {
		plotter = monitor.NewRunPlotter()
		outputDir := monitor.MakePlotOutputDir(*plotsDir)
		if err := plotter.Start(outputDir); err != nil {
			log.Fatalf("failed to start plot capture: %v", err)
		}
		log.Printf("plot capture enabled, output: %s", outputDir)
	}

	var sampler sim.Sampler
	if db != nil || plotter != nil {
		sampler = func(info stability.Info, snap game.Snapshot) {
			if db != nil {
				if err := db.RecordSample(sessionID, info, snap); err != nil {
					monitoring.Logf("failed to record sample: %v", err)
				}
			}
			if plotter != nil {
				plotter.Record(info, snap)
			}
		}
	}

	runner := sim.NewRunner(tuning.RunnerConfig(), g, analyzer, sampler)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// simulation goroutine: the only writer of game and physics state
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := runner.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("simulation stopped: %v", err)
		}
		log.Print("simulation routine terminated")
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()

		// mount the API handlers and the debugging chart routes
		apiMux := api.NewServer(runner, db).ServeMux()
		mux.Handle("/api/", apiMux)
		mon := monitor.NewMonitor(runner, db)
		if plotter != nil {
			mon.EnablePlots(plotter, *plotsDir)
		}
		mon.AttachRoutes(mux)

		// read static files from the embedded filesystem in production or
		// from the local ./static in dev for easier iteration without
		// restarting the server; both modes serve the same paths, so /
		// renders the dashboard either way
		var staticHandler http.Handler
		if *devMode {
			staticHandler = http.FileServer(http.Dir("./static"))
		} else {
			sub, err := fs.Sub(staticFiles, "static")
			if err != nil {
				log.Fatalf("static assets missing from binary: %v", err)
			}
			staticHandler = http.FileServer(http.FS(sub))
		}
		mux.Handle("/", staticHandler)

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s (seed=%d)", *listen, gameSeed)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()

	// flush any capture still running so a plain Ctrl-C still yields plots
	if plotter != nil && plotter.IsEnabled() {
		plotter.Stop()
		count, err := plotter.GeneratePlots()
		if err != nil {
			log.Printf("failed to generate plots: %v", err)
		} else if count > 0 {
			log.Printf("generated %d plots in %s", count, plotter.OutputDir())
		}
	}

	if db != nil {
		snap := runner.Snapshot()
		if err := db.EndSession(sessionID, snap.Score, snap.PiecesPlaced, snap.PiecesLost); err != nil {
			log.Printf("failed to end session: %v", err)
		}
	}
	log.Print("shutdown complete")
}
