package commands

import (
	"context"
	"log/slog"
	"registrylens-backend/cmd/registrylens-cli/utils"
	"registrylens-backend/lib/serviceutil"
	"registrylens-backend/lib/sicstore"
	"registrylens-backend/lib/sicstore/db"
	"registrylens-backend/lib/sqliteutil"
	"registrylens-backend/lib/timezone"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var sicRefreshDb *string

func init() {
	sicRefreshDb = sicRefreshCmd.Flags().String("db", "sic.db", "The database to write the directory to.")
	sicCmd.AddCommand(sicListCmd)
	sicCmd.AddCommand(sicRefreshCmd)
	rootCmd.AddCommand(sicCmd)
}

var sicCmd = &cobra.Command{
	Use:   "sic",
	Short: "Works with the SIC classification directory.",
}

var sicListCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetches the live classification page and prints every code.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newRegistryClient()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		dir, err := client.IndustryCodes(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch the classification page", err)
		}

		codes := make([]string, 0, len(dir))
		for code := range dir {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		t := utils.NewTable()
		t.AppendHeader(table.Row{"Code", "Description"})
		for _, code := range codes {
			t.AppendRow(table.Row{code, dir[code]})
		}
		t.Render()
	},
}

var sicRefreshCmd = &cobra.Command{
	Use:   "refresh [--db <path/to/store.db>]",
	Short: "Refreshes a SIC directory database from the live classification page.",
	Run: func(cmd *cobra.Command, args []string) {
		client := newRegistryClient()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		dir, err := client.IndustryCodes(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch the classification page", err)
		}

		database, err := sqliteutil.Open(*sicRefreshDb, db.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		err = sicstore.NewStore(database).Replace(ctx, dir, timezone.Now())
		if err != nil {
			serviceutil.Fatal("failed to store the directory", err)
		}
		slog.Info("refreshed sic directory", "codes", len(dir), "db", *sicRefreshDb)
	},
}
