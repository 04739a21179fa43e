package root

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"automsr/internal/config"
	"automsr/internal/prizes"
	"automsr/internal/storage"
	"automsr/internal/ui"
)

func newPrizesCmd() *cobra.Command {
	var points int

	cmd := &cobra.Command{
		Use:   "prizes",
		Short: "Show what a points balance can redeem",
		Long:  "Shows the prize allocation for a given points balance, or for each profile's stored balance of today when --points is not set.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			mask, err := prizes.ParseMask(cfg.Prizes)
			if err != nil {
				return err
			}

			if points > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPrize, fmt.Sprintf("Allocation for %d points", points)))
				return printAllocation(cmd, points, mask)
			}

			db, cleanup, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			repo := storage.NewPointsRepo(db)
			day := time.Now()
			for _, p := range cfg.Profiles {
				balance, err := repo.MaxForDay(ctx, p.Email, day)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconPrize, fmt.Sprintf("%s: %d points", p.Email, balance)))
				if err := printAllocation(cmd, balance, mask); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&points, "points", 0, "allocate this balance instead of the stored one")
	return cmd
}

func printAllocation(cmd *cobra.Command, points int, mask []prizes.Kind) error {
	redemptions, err := prizes.Allocate(points, mask)
	if err != nil {
		return err
	}
	for _, r := range redemptions {
		if !r.Collectable() {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s\n", r.Kind, ui.Muted.Render("nothing"))
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "- %s: %s\n", r.Kind, ui.Good.Render(fmt.Sprintf("%d %s", r.Total(), r.Amounts[0].Unit)))
		for _, a := range r.Amounts {
			if a.Count == 0 {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", ui.Muted.Render(fmt.Sprintf("%d × %d %s (%d points each)", a.Count, a.Value, a.Unit, a.PricePoints)))
		}
	}

	line, err := prizes.FormatRedeemable(points, mask)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), line)
	return nil
}

// storedPrizeLine is the redeemable summary for a profile's best stored
// balance of the day.
func storedPrizeLine(ctx context.Context, cfg *config.Config, db *sql.DB, email string, day time.Time) (string, error) {
	mask, err := prizes.ParseMask(cfg.Prizes)
	if err != nil {
		return "", err
	}
	balance, err := storage.NewPointsRepo(db).MaxForDay(ctx, email, day)
	if err != nil {
		return "", err
	}
	return prizes.FormatRedeemable(balance, mask)
}
