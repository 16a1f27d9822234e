// Command spiceseed populates a demonstration tray configuration: one
// 8x12 tray with a linear probe array, ready for a process-excel upload.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/EERL-EPFL/spice-api-sub001/applog"
	"github.com/EERL-EPFL/spice-api-sub001/config"
	"github.com/EERL-EPFL/spice-api-sub001/model"
	"github.com/EERL-EPFL/spice-api-sub001/store"
)

const (
	demoTrayRows = 8
	demoTrayCols = 12
	demoProbes   = 8
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:   "spiceseed",
		Short: "Seed a demonstration tray configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, cmd.Flags())
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	config.BindFlags(root.Flags())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, flags *pflag.FlagSet) error {
	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return err
	}

	log := applog.New("spiceseed", cfg.Dev)
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("spiceseed: open database: %w", err)
	}
	defer db.Close()

	now := time.Now().UTC()

	trayConfigs := store.TrayConfigurationRepo{}
	trays := store.TrayRepo{}
	probes := store.ProbeRepo{}
	wells := store.WellRepo{}

	tc := model.TrayConfiguration{
		ID:        uuid.New(),
		Name:      "Demo configuration",
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := trayConfigs.Insert(ctx, db, tc); err != nil {
		return fmt.Errorf("spiceseed: insert tray configuration: %w", err)
	}

	tray := model.Tray{
		ID:                  uuid.New(),
		TrayConfigurationID: tc.ID,
		OrderSequence:       1,
		QtyCols:             demoTrayCols,
		QtyRows:             demoTrayRows,
		Name:                "Tray 1",
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := trays.Insert(ctx, db, tray); err != nil {
		return fmt.Errorf("spiceseed: insert tray: %w", err)
	}

	for row := 0; row < demoTrayRows; row++ {
		rowLetter := string(rune('A' + row))
		for col := 1; col <= demoTrayCols; col++ {
			w := model.Well{
				ID:           uuid.New(),
				TrayID:       tray.ID,
				RowLetter:    rowLetter,
				ColumnNumber: col,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := wells.Insert(ctx, db, w); err != nil {
				return fmt.Errorf("spiceseed: insert well %s%d: %w", rowLetter, col, err)
			}
		}
	}

	for i := 1; i <= demoProbes; i++ {
		p := model.Probe{
			ID:              uuid.New(),
			TrayID:          tray.ID,
			Name:            fmt.Sprintf("Probe %d", i),
			DataColumnIndex: i,
			PositionX:       decimal.NewFromInt(int64(i)),
			PositionY:       decimal.Zero,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := probes.Insert(ctx, db, p); err != nil {
			return fmt.Errorf("spiceseed: insert probe %d: %w", i, err)
		}
	}

	log.Infow("seeded demo tray configuration",
		"tray_configuration_id", tc.ID, "tray_id", tray.ID, "wells", demoTrayRows*demoTrayCols, "probes", demoProbes)

	return nil
}
