package daemon

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pufflog/pufflog/internal/api"
	"github.com/pufflog/pufflog/internal/app/calendar"
	"github.com/pufflog/pufflog/internal/app/economy"
	"github.com/pufflog/pufflog/internal/app/missions"
	"github.com/pufflog/pufflog/internal/infra/sqlite"
)

// Run opens the database, wires the services, and serves the API until the
// process exits.
func Run(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0700); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	clock, err := calendar.New(cfg.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Calendar.Timezone, err)
	}

	svc := economy.New(clock, db, db, db, db, db, db)
	ev := missions.New(clock, db, db, db, db, db)

	srv := api.NewServer(svc, ev, db, db)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	addr := cfg.ListenAddr()
	log.Printf("[daemon] listening on %s (db=%s tz=%s)", addr, cfg.Database.Path, cfg.Calendar.Timezone)
	return http.ListenAndServe(addr, srv.Handler())
}
