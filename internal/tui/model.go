package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"automsr/internal/storage"
	"automsr/internal/tasks"
	"automsr/internal/ui"
)

type boardModel struct {
	ctx         context.Context
	points      *storage.PointsRepo
	completions *storage.CompletionRepo
	emails      []string
	day         time.Time

	width  int
	height int

	profile  int
	records  []storage.CompletionRecord
	balance  int
	delta    int
	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	records []storage.CompletionRecord
	balance int
	delta   int
	err     error
}

func newBoardModel(ctx context.Context, points *storage.PointsRepo, completions *storage.CompletionRepo, emails []string, day time.Time) boardModel {
	return boardModel{
		ctx:         ctx,
		points:      points,
		completions: completions,
		emails:      emails,
		day:         day,
		loading:     true,
		lastLog:     "Loaded.",
	}
}

func (m boardModel) email() string {
	if len(m.emails) == 0 {
		return ""
	}
	return m.emails[m.profile]
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	email := m.email()
	return func() tea.Msg {
		records, err := m.completions.ListForDay(m.ctx, email, m.day)
		if err != nil {
			return loadedMsg{err: err}
		}
		balance, err := m.points.MaxForDay(m.ctx, email, m.day)
		if err != nil {
			return loadedMsg{err: err}
		}
		delta, err := m.points.DeltaForDay(m.ctx, email, m.day)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{records: records, balance: balance, delta: delta}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.records = msg.records
		m.balance = msg.balance
		m.delta = msg.delta
		if m.selected >= len(m.records) {
			m.selected = len(m.records) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.records)-1 {
				m.selected++
			}
			return m, nil
		case "left", "h":
			if m.profile > 0 {
				m.profile--
				m.selected = 0
				m.loading = true
				return m, m.loadCmd()
			}
			return m, nil
		case "right", "l", "tab":
			if m.profile < len(m.emails)-1 {
				m.profile++
				m.selected = 0
				m.loading = true
				return m, m.loadCmd()
			}
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	done, total := m.progress()
	bar := progressBar(done, total, 30)
	return fmt.Sprintf("%s AutoMSR | %s | %s %d points (%+d today) %s",
		ui.IconRobot, m.day.Format("2006-01-02"), ui.IconPoints, m.balance, m.delta, bar)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Profiles"}
	for i, email := range m.emails {
		cursor := "  "
		if i == m.profile {
			cursor = "> "
		}
		lines = append(lines, cursor+email)
	}
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- ←/→ or tab: profile")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	done, total := m.progress()

	var out []string
	out = append(out, fmt.Sprintf("Today's tasks (%d/%d done)", done, total))
	if len(m.records) == 0 {
		out = append(out, "(no records yet, run `automsr run` first)")
		return strings.Join(out, "\n")
	}
	for i, rec := range m.records {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		icon := ui.TaskIcon(rec.Daily, rec.Status == string(tasks.StatusDone))
		out = append(out, fmt.Sprintf("%s%s %s %s", cursor, icon, ui.StatusText(rec.Status), rec.Title))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func (m boardModel) progress() (done int, total int) {
	for _, rec := range m.records {
		if rec.Status == string(tasks.StatusInvalid) {
			continue
		}
		total++
		if rec.Status == string(tasks.StatusDone) {
			done++
		}
	}
	return done, total
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
