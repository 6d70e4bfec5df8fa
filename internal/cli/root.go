// Package cli implements the pufflog command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pufflog/pufflog/internal/app/calendar"
	"github.com/pufflog/pufflog/internal/app/economy"
	"github.com/pufflog/pufflog/internal/daemon"
	"github.com/pufflog/pufflog/internal/infra/sqlite"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pufflog",
	Short: "Gamified habit-reduction tracker",
	Long: `Pufflog tracks consumption requests against a shrinking daily budget
and runs the XP economy around them: eager debits on submission, refunds on
rejection, excess penalties, missions, and a reward catalog.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.pufflog/config.toml)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return daemon.DefaultConfigPath()
}

func loadConfig() (daemon.Config, error) {
	return daemon.LoadConfig(configPath())
}

// openEconomy opens the database from config and wires the economy service
// for one-shot CLI operations. The caller must Close the returned DB.
func openEconomy() (*sqlite.DB, *economy.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	clock, err := calendar.New(cfg.Calendar.Timezone)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load timezone %q: %w", cfg.Calendar.Timezone, err)
	}
	return db, economy.New(clock, db, db, db, db, db, db), nil
}
