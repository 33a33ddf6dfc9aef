// Package ledgerverify checks world ledger files for tail corruption.
package ledgerverify

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/ledger"
	"github.com/pipe-works/pipeworks-mud-server-sub000/internal/platform/config"
)

// Config holds configuration for a ledger verification run.
type Config struct {
	LedgerDir string `env:"PIPEWORKS_RESOLUTION_LEDGER_DIR" envDefault:"data/ledger"`
	Worlds    []string
}

// ParseConfig parses environment and flags into a Config. Remaining
// arguments are the world IDs to verify.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.LedgerDir, "ledger-dir", cfg.LedgerDir, "Directory holding per-world ledger files")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Worlds = fs.Args()
	return cfg, nil
}

// Run verifies each world's ledger and writes one line per world to out.
// It returns an error if any ledger is corrupt.
func Run(cfg Config, out io.Writer) error {
	if len(cfg.Worlds) == 0 {
		return errors.New("at least one world ID is required")
	}
	if out == nil {
		return errors.New("output is required")
	}

	l := ledger.New(cfg.LedgerDir)
	corrupt := 0
	for _, worldID := range cfg.Worlds {
		result, err := l.Verify(worldID)
		if err != nil {
			return fmt.Errorf("verify world %s: %w", worldID, err)
		}
		switch result.Status {
		case ledger.VerifyCorrupt:
			corrupt++
			fmt.Fprintf(out, "world=%s status=%s detail=%q\n", worldID, result.Status, result.Detail)
		case ledger.VerifyEmpty:
			fmt.Fprintf(out, "world=%s status=%s\n", worldID, result.Status)
		default:
			fmt.Fprintf(out, "world=%s status=%s last_event=%s\n", worldID, result.Status, result.LastEventID)
		}
	}
	if corrupt > 0 {
		return fmt.Errorf("%d of %d ledgers corrupt", corrupt, len(cfg.Worlds))
	}
	return nil
}
