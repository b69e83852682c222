// Command hegemon runs the autonomous nation-conquest simulation.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/firecomputer/hegemon/internal/advisor"
	"github.com/firecomputer/hegemon/internal/api"
	"github.com/firecomputer/hegemon/internal/engine"
	"github.com/firecomputer/hegemon/internal/llm"
	"github.com/firecomputer/hegemon/internal/world"
)

// countryNames seeds the twelve starting nations, in placement order.
var countryNames = []string{
	"Valdora", "Khemet", "Oressia", "Tyrune", "Baskarn", "Elvenmoor",
	"Roskavia", "Junipera", "Madrigal", "Thessaly", "Vortano", "Quillon",
}

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config overriding the defaults")
		port       = flag.Int("port", 8080, "HTTP API port")
		seed       = flag.Int64("seed", 0, "world seed (0 = random)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("Hegemon — autonomous conquest simulation")

	// ── Config ────────────────────────────────────────────────────────
	cfg := engine.DefaultConfig()
	if *configPath != "" {
		loaded, err := engine.LoadConfig(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		slog.Info("config loaded", "path", *configPath)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// ── World Map ─────────────────────────────────────────────────────
	slog.Info("generating world map...")
	genCfg := world.DefaultGenConfig()
	genCfg.Seed = cfg.Seed
	worldMap := world.Generate(genCfg)

	islands, coastal := 0, 0
	for _, p := range worldMap.Provinces {
		if p.IsIsland {
			islands++
		}
		if p.IsCoastal {
			coastal++
		}
	}
	slog.Info("world generated",
		"provinces", worldMap.Count(), "islands", islands, "coastal", coastal)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(worldMap, cfg)
	names := countryNames
	if cfg.CountryCount < len(names) {
		names = names[:cfg.CountryCount]
	}
	sim.SeedCountries(names)

	// ── Advisor ───────────────────────────────────────────────────────
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	llmClient := llm.NewClient(anthropicKey)
	if llmClient.Enabled() {
		sim.Advisor = advisor.New(llmClient)
		slog.Info("strategic advisor enabled")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set — nations run on default guidance")
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(cfg.TicksPerSecond)

	hub := api.NewHub()
	go hub.Run()

	eng.OnTick = func(tick uint64) {
		sim.Step(tick)

		// Stream one frame per logical second.
		if tick%uint64(cfg.TicksPerSecond) == 0 {
			if snap := sim.Snapshot(); snap != nil {
				if data, err := json.Marshal(snap); err == nil {
					select {
					case hub.Broadcast <- data:
					default:
					}
				}
			}
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("HEGEMON_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("HEGEMON_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		Sim:      sim,
		Eng:      eng,
		Hub:      hub,
		Port:     *port,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\n%d nations contest %d provinces.\n", len(sim.Countries), worldMap.Count())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", *port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	fmt.Println("Simulation stopped.")
}
