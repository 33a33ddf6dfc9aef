// Package resolutiond parses daemon flags and starts the resolution runtime.
package resolutiond

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/ledger"
	entrypoint "github.com/pipe-works/pipeworks-mud-server-sub000/internal/platform/cmd"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/resolution/grammar"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/storage/sqlite"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/telemetry"
)

// Config holds resolution daemon configuration.
type Config struct {
	Port        int    `env:"PIPEWORKS_RESOLUTION_PORT" envDefault:"8090"`
	Addr        string `env:"PIPEWORKS_RESOLUTION_ADDR"`
	HTTPAddr    string `env:"PIPEWORKS_RESOLUTION_HTTP_ADDR" envDefault:":8091"`
	StorePath   string `env:"PIPEWORKS_RESOLUTION_DB_PATH" envDefault:"data/resolution.db"`
	LedgerDir   string `env:"PIPEWORKS_RESOLUTION_LEDGER_DIR" envDefault:"data/ledger"`
	GrammarPath string `env:"PIPEWORKS_RESOLUTION_GRAMMAR_PATH" envDefault:"config/grammar.yaml"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The resolution gRPC port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The resolution gRPC listen address (overrides -port)")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The resolution HTTP API listen address")
	fs.StringVar(&cfg.StorePath, "db", cfg.StorePath, "Path to the sqlite score store")
	fs.StringVar(&cfg.LedgerDir, "ledger-dir", cfg.LedgerDir, "Directory holding per-world ledger files")
	fs.StringVar(&cfg.GrammarPath, "grammar", cfg.GrammarPath, "Path to the interaction grammar file")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the resolution daemon and blocks until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceResolution, func(ctx context.Context) error {
		g, err := grammar.Load(cfg.GrammarPath)
		if err != nil {
			return fmt.Errorf("load grammar: %w", err)
		}
		log.Printf("grammar loaded version=%s axes=%d", g.Version, len(g.Axes))

		store, err := openStore(cfg.StorePath, g.DefaultScore)
		if err != nil {
			return err
		}

		l := ledger.New(cfg.LedgerDir)
		verifyLedgers(ctx, store, l)

		engine, err := resolution.NewEngine(g, store, store, l,
			resolution.WithTelemetry(telemetry.NewEmitter(store)))
		if err != nil {
			_ = store.Close()
			return fmt.Errorf("build engine: %w", err)
		}

		addr := cfg.Addr
		if addr == "" {
			addr = fmt.Sprintf(":%d", cfg.Port)
		}
		server, err := newServer(addr, cfg.HTTPAddr, engine, store)
		if err != nil {
			_ = store.Close()
			return err
		}
		return server.Serve(ctx)
	})
}

func openStore(path string, defaultScore float64) (*sqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path, sqlite.WithDefaultScore(defaultScore))
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

// verifyLedgers inspects the tail of every known world ledger at startup.
// Results are diagnostic only and never gate startup.
func verifyLedgers(ctx context.Context, store *sqlite.Store, l *ledger.Ledger) {
	worlds, err := store.ListWorlds(ctx)
	if err != nil {
		log.Printf("ledger verification skipped err=%v", err)
		return
	}
	for _, worldID := range worlds {
		result, err := l.Verify(worldID)
		if err != nil {
			log.Printf("ledger verify world=%s err=%v", worldID, err)
			continue
		}
		switch result.Status {
		case ledger.VerifyCorrupt:
			log.Printf("ledger verify world=%s status=%s detail=%q", worldID, result.Status, result.Detail)
		default:
			log.Printf("ledger verify world=%s status=%s last_event=%s", worldID, result.Status, result.LastEventID)
		}
	}
}
