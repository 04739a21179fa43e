package root

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"automsr/internal/tui"
)

func newBoardCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the interactive board over today's records",
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

			var emails []string
			for _, p := range cfg.Profiles {
				if email == "" || p.Email == email {
					emails = append(emails, p.Email)
				}
			}
			if len(emails) == 0 {
				return fmt.Errorf("no configured profile matches %q", email)
			}

			return tui.RunBoard(ctx, db, emails, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "show only this profile")
	return cmd
}
