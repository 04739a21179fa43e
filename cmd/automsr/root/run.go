package root

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"automsr/internal/browser"
	"automsr/internal/config"
	"automsr/internal/engine"
	"automsr/internal/report"
	"automsr/internal/search"
	"automsr/internal/tasks"
	"automsr/internal/ui"
)

const implicitWait = 7 * time.Second

func newRunCmd() *cobra.Command {
	var skipEmail bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the daily tasks for every configured profile",
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

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			day := time.Now()

			var statuses []report.RunStatus
			for _, p := range cfg.Profiles {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Heading(ui.IconRobot, "Profile "+p.Email))

				steps := runProfile(ctx, cfg, p, db, logger)
				status := report.NewRunStatus(p.Email, steps)
				status.Prizes = prizeLine(ctx, cfg, db, p.Email, day)
				statuses = append(statuses, status)

				for _, s := range steps {
					fmt.Fprintf(cmd.OutOrStdout(), "- %s %s", s.Step, ui.OutcomeText(string(s.Outcome)))
					if s.Explanation != "" {
						fmt.Fprintf(cmd.OutOrStdout(), " %s", ui.Muted.Render("("+s.Explanation+")"))
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue("Overall", ui.OutcomeText(string(status.Overall))))
				if status.Prizes != "" {
					fmt.Fprintln(cmd.OutOrStdout(), ui.IconPrize+" "+status.Prizes)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			if cfg.Email.Enable && !skipEmail {
				if err := mailReport(cfg, day, statuses); err != nil {
					return fmt.Errorf("send report: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), ui.IconInfo+" Report mailed to "+cfg.Email.Recipient)
			}

			if n := countFailures(statuses); n > 0 {
				return fmt.Errorf("%d of %d profiles failed", n, len(statuses))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipEmail, "no-email", false, "skip the end-of-run report mail even when configured")
	return cmd
}

// runProfile opens a fresh driver session for one profile and drives it
// through the whole pipeline. A session that cannot even start is reported
// as a failed START_SESSION step.
func runProfile(ctx context.Context, cfg *config.Config, p config.Profile, db *sql.DB, logger *slog.Logger) []engine.StepResult {
	driver, err := browser.NewRemote(browser.RemoteOptions{
		ServerURL:    cfg.Selenium.ServerURL,
		BinaryPath:   cfg.Selenium.ChromeBinary,
		ProfileDir:   p.ProfileDir,
		Headless:     cfg.Selenium.Headless,
		ImplicitWait: implicitWait,
	})
	if err != nil {
		return []engine.StepResult{{
			Step:        engine.StepStartSession,
			Outcome:     engine.OutcomeFailure,
			Explanation: err.Error(),
		}}
	}
	defer func() {
		_ = driver.Quit()
	}()

	r := engine.NewRunner(driver, db, p.Email)
	r.Factory = tasks.NewFactory(driver, cfg.LedgerDir)
	r.Gen, _ = search.New(cfg.Search)
	r.Log = logger.With("email", p.Email)
	r.Retries = cfg.Retries
	r.Reverse = cfg.Reverse
	r.SkipActivities = cfg.Skipped(p, config.SkipActivities)
	r.SkipPunchcards = cfg.Skipped(p, config.SkipPunchcards)
	r.SkipSearches = cfg.Skipped(p, config.SkipSearches)
	r.Normalize()

	return r.RunProfile(ctx)
}

func mailReport(cfg *config.Config, day time.Time, statuses []report.RunStatus) error {
	mailer := &report.SMTPMailer{
		Host:      cfg.Email.Host,
		Port:      cfg.Email.Port,
		Username:  cfg.Email.Username,
		Password:  cfg.Email.Password,
		Sender:    cfg.Email.Sender,
		Recipient: cfg.Email.Recipient,
	}
	return mailer.Send(report.Compose(day, statuses))
}

func countFailures(statuses []report.RunStatus) int {
	n := 0
	for _, s := range statuses {
		if s.Overall == engine.OutcomeFailure {
			n++
		}
	}
	return n
}

// prizeLine renders today's redeemable prizes for one profile off the stored
// balance. Any problem just drops the line, the run report stands without it.
func prizeLine(ctx context.Context, cfg *config.Config, db *sql.DB, email string, day time.Time) string {
	line, err := storedPrizeLine(ctx, cfg, db, email, day)
	if err != nil {
		return ""
	}
	return line
}
