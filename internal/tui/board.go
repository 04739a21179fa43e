package tui

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"automsr/internal/storage"
)

// RunBoard opens the interactive board over the state store. Emails are the
// profiles to browse; the first one is selected on start.
func RunBoard(ctx context.Context, db *sql.DB, emails []string, out io.Writer) error {
	if len(emails) == 0 {
		return fmt.Errorf("board: no profiles to show")
	}
	m := newBoardModel(ctx, storage.NewPointsRepo(db), storage.NewCompletionRepo(db), emails, time.Now())
	p := tea.NewProgram(m, tea.WithOutput(out))
	_, err := p.Run()
	return err
}
