package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	registrationstore "github.com/dalemusser/eventdesk/internal/app/store/registrations"
	"github.com/dalemusser/eventdesk/internal/app/system/aggregate"
	"github.com/dalemusser/eventdesk/internal/app/system/regcsv"
	"github.com/dalemusser/eventdesk/internal/domain/models"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	exportOut  string
	exportView bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export registrations as CSV",
	Long: `Write one CSV row per member.

By default rows come from the aggregated registrations; --view reads the
registration_export_view instead.

Examples:
  eventdeskctl export > registrations.csv
  eventdeskctl export --view -o registrations_view.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := time.LoadLocation(viper.GetString("export_timezone"))
		if err != nil {
			return fmt.Errorf("export timezone: %w", err)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Client().Disconnect(context.Background())

		logger := newLogger()
		defer logger.Sync()

		agg := aggregate.New(registrationstore.New(db, logger), logger)
		var rows []models.ExportRow
		if exportView {
			rows, err = agg.ExportRows(ctx)
		} else {
			var snap aggregate.Snapshot
			snap, err = agg.List(ctx)
			rows = regcsv.FromRegistrations(snap.Registrations)
		}
		if err != nil {
			return err
		}

		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := regcsv.Write(w, rows, loc); err != nil {
			return err
		}
		logger.Info("export complete", zap.Int("rows", len(rows)), zap.Bool("view", exportView))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportView, "view", false, "read registration_export_view")
	exportCmd.Flags().String("timezone", "Asia/Kolkata", "IANA timezone for dates")
	_ = viper.BindPFlag("export_timezone", exportCmd.Flags().Lookup("timezone"))
	rootCmd.AddCommand(exportCmd)
}
