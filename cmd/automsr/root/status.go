package root

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"automsr/internal/storage"
	"automsr/internal/tasks"
	"automsr/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show today's completions and points per profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, cleanup, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			points := storage.NewPointsRepo(db)
			completions := storage.NewCompletionRepo(db)
			day := time.Now()

			fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRobot, "AutoMSR status for "+day.Format("2006-01-02")))
			fmt.Fprintln(cmd.OutOrStdout())

			for _, p := range cfg.Profiles {
				fmt.Fprintln(cmd.OutOrStdout(), ui.H2.Render(p.Email))

				balance, err := points.MaxForDay(ctx, p.Email, day)
				if err != nil {
					return err
				}
				delta, err := points.DeltaForDay(ctx, p.Email, day)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Points", fmt.Sprintf("%s %d (%+d today)", ui.IconPoints, balance, delta)))

				line, err := storedPrizeLine(ctx, cfg, db, p.Email, day)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Prizes", ui.IconPrize+" "+line))

				records, err := completions.ListForDay(ctx, p.Email, day)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("(no task records for today)"))
				}
				for _, rec := range records {
					icon := ui.TaskIcon(rec.Daily, rec.Status == string(tasks.StatusDone))
					fmt.Fprintf(cmd.OutOrStdout(), "- %s %s %s\n", icon, ui.StatusText(rec.Status), rec.Title)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}
