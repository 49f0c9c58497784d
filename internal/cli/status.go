package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/mevwatch/internal/core/config"
	"github.com/vietddude/mevwatch/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show alert counts per monitored contract",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
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

	rows, err := db.QueryContext(ctx, `
		SELECT contract_id, attack_type, risk_level, COUNT(*), MAX(detected_at)
		FROM mev_alerts
		GROUP BY contract_id, attack_type, risk_level
		ORDER BY contract_id, attack_type`)
	if err != nil {
		slog.Error("Failed to query alerts", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rows.Close()
	}()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "CONTRACT\tATTACK\tRISK\tCOUNT\tLAST SEEN")

	for rows.Next() {
		var contract, attack, risk string
		var count int64
		var lastSeen int64
		if err := rows.Scan(&contract, &attack, &risk, &count, &lastSeen); err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", contract, attack, risk, count, lastSeen)
	}
	_ = w.Flush()
}
