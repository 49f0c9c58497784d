package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vietddude/mevwatch/internal/core/config"
	"github.com/vietddude/mevwatch/internal/infra/storage/postgres"
)

var purgeAlertsCmd = &cobra.Command{
	Use:   "purge-alerts [contract_id]",
	Short: "Delete all stored alerts for a specific contract",
	Args:  cobra.ExactArgs(1),
	Run:   runPurgeAlerts,
}

func init() {
	rootCmd.AddCommand(purgeAlertsCmd)
}

func runPurgeAlerts(cmd *cobra.Command, args []string) {
	contractID := args[0]

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	// Direct SQL is cleaner than a repo method for a one-off admin override.
	res, err := db.ExecContext(ctx, "DELETE FROM mev_alerts WHERE LOWER(contract_id) = LOWER($1)", contractID)
	if err != nil {
		slog.Error("Failed to purge alerts", "error", err)
		os.Exit(1)
	}

	deleted, _ := res.RowsAffected()
	fmt.Printf("Successfully purged %d alerts for %s\n", deleted, contractID)
}
