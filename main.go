package main

import (
	"context"
	"errors"
	"fmt"
	"latencyviz/internal/config"
	"latencyviz/internal/controllers"
	"latencyviz/internal/dataset"
	"latencyviz/internal/middleware"
	"latencyviz/internal/routes"
	"latencyviz/internal/services"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
)

// CLI is the command-line surface
type CLI struct {
	Config string `help:"Path to a YAML config file." type:"path" short:"c"`

	Serve  ServeCmd  `cmd:"" default:"withargs" help:"Run the simulation and HTTP API (default)."`
	Token  TokenCmd  `cmd:"" help:"Issue a websocket client token."`
	Export ExportCmd `cmd:"" help:"Run ticks offline and write the last snapshot as CSV."`
}

// Globals are handed to every command's Run
type Globals struct {
	Config *config.Config
}

type ServeCmd struct {
	Listen string `help:"Override the listen address."`
}

type TokenCmd struct {
	Name string `help:"Client name embedded in the token." default:"latencyviz-client"`
}

type ExportCmd struct {
	Ticks int    `help:"Number of ticks to simulate before exporting." default:"1"`
	Out   string `help:"Directory to write the CSV into." type:"path" default:"."`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("latencyviz"),
		kong.Description("Synthetic exchange latency simulator with a live HTTP/WebSocket API."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	ctx.FatalIfErrorf(err)

	ctx.FatalIfErrorf(ctx.Run(&Globals{Config: cfg}))
}

// buildCore loads the dataset and assembles the store and scheduler
func buildCore(cfg *config.Config) (*services.SnapshotStore, *services.Scheduler, error) {
	ds, err := dataset.Load(cfg.Dataset.Path)
	if err != nil {
		return nil, nil, err
	}

	policy, err := services.ParseHistoryPolicy(cfg.Simulation.HistoryPolicy)
	if err != nil {
		return nil, nil, err
	}

	estimator := services.NewLatencyEstimator(nil)
	if cfg.Simulation.Seed != 0 {
		estimator = services.NewSeededEstimator(cfg.Simulation.Seed)
	}

	store := services.NewSnapshotStore(services.NewHistoryStore(cfg.History.Capacity))
	store.SetNodes(ds.Nodes)
	store.SetRegions(ds.Regions)
	log.Printf("[SIM] Loaded %d nodes and %d regions", len(ds.Nodes), len(ds.Regions))

	scheduler := services.NewScheduler(store, services.SchedulerOptions{
		Interval:  cfg.Simulation.Interval,
		Policy:    policy,
		Estimator: estimator,
	})
	return store, scheduler, nil
}

func (s *ServeCmd) Run(g *Globals) error {
	cfg := g.Config
	if s.Listen != "" {
		cfg.Listen = s.Listen
	}

	store, scheduler, err := buildCore(cfg)
	if err != nil {
		return err
	}

	auth, err := services.NewAuthService(cfg.Auth.Secret, cfg.Auth.SecretFile, cfg.Auth.TokenExpiry)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if !cfg.Auth.Required {
		log.Printf("[AUTH] ⚠️  Websocket authentication disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := services.NewWebSocketHub(store)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	logger := middleware.NewSecurityLogger()
	router := routes.NewRouter(routes.SecurityOptions{
		AllowedOrigins: cfg.Security.AllowedOrigins,
		AllowedIPs:     cfg.Security.AllowedIPs,
		RateLimit:      cfg.Security.RateLimit,
		RateBurst:      cfg.Security.RateBurst,
	}, routes.Controllers{
		Latency:    controllers.NewLatencyController(store),
		Simulation: controllers.NewSimulationController(scheduler, logger),
		Status:     controllers.NewStatusController(services.NewRuntimeCache(cfg.Status.CacheTTL), scheduler, hub),
		WebSocket:  controllers.NewWebSocketController(hub, auth, cfg.Auth.Required, cfg.Security.AllowedOrigins, logger),
	})

	if cfg.Simulation.Autostart {
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] Listening on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Println("[HTTP] Shutting down")
	case err := <-errCh:
		if err != nil {
			scheduler.Stop()
			stopHub()
			return fmt.Errorf("listen: %w", err)
		}
	}

	scheduler.Stop()
	stopHub()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (t *TokenCmd) Run(g *Globals) error {
	if !middleware.NewInputValidator().ValidateClientName(t.Name) {
		return fmt.Errorf("invalid client name %q", t.Name)
	}

	auth, err := services.NewAuthService(g.Config.Auth.Secret, g.Config.Auth.SecretFile, g.Config.Auth.TokenExpiry)
	if err != nil {
		return err
	}
	token, err := auth.GenerateToken(t.Name)
	if err != nil {
		return err
	}

	fmt.Printf("Token:   %s\n", token)
	fmt.Printf("Client:  %s\n", t.Name)
	fmt.Printf("Expires: %s\n", auth.TokenExpiry().Format(time.RFC3339))
	fmt.Printf("URL:     ws://%s/ws?token=%s\n", g.Config.Listen, token)
	return nil
}

func (e *ExportCmd) Run(g *Globals) error {
	if e.Ticks < 1 {
		return fmt.Errorf("ticks must be at least 1")
	}

	store, scheduler, err := buildCore(g.Config)
	if err != nil {
		return err
	}
	for i := 0; i < e.Ticks; i++ {
		scheduler.Tick()
	}

	samples := store.Read().Connections

	path := filepath.Join(e.Out, services.ExportFileName(time.Now()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := services.WriteConnectionsCSV(f, samples); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("Wrote %d connections to %s", len(samples), path)
	return nil
}
