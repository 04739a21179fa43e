// Package report renders the end-of-run summary and mails it out.
package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"automsr/internal/engine"
)

// RunStatus is the summary of one profile's run.
type RunStatus struct {
	Email   string
	Steps   []engine.StepResult
	Overall engine.Outcome

	// Prizes is the optional redeemable-prizes line for this profile.
	Prizes string
}

// NewRunStatus folds the step results into a profile summary.
func NewRunStatus(email string, steps []engine.StepResult) RunStatus {
	return RunStatus{Email: email, Steps: steps, Overall: engine.Aggregate(steps)}
}

// Subject builds the mail subject for a set of profile runs. A uniform
// outcome names it directly; mixed outcomes fall back to STATUS.
func Subject(day time.Time, statuses []RunStatus) string {
	verdict := "STATUS"
	if len(statuses) > 0 {
		uniform := true
		for _, s := range statuses[1:] {
			if s.Overall != statuses[0].Overall {
				uniform = false
				break
			}
		}
		if uniform {
			verdict = string(statuses[0].Overall)
		}
	}
	return fmt.Sprintf("[AUTOMSR] %s %s", day.Format("2006-01-02"), verdict)
}

// RenderPlain renders the text/plain report body.
func RenderPlain(statuses []RunStatus) string {
	var b strings.Builder
	for _, s := range statuses {
		fmt.Fprintf(&b, "%s - %s\n", s.Email, s.Overall)
		for _, step := range s.Steps {
			fmt.Fprintf(&b, "  %s: %s", step.Step, step.Outcome)
			if step.Explanation != "" {
				fmt.Fprintf(&b, " (%s)", step.Explanation)
			}
			b.WriteByte('\n')
		}
		if s.Prizes != "" {
			fmt.Fprintf(&b, "  %s\n", s.Prizes)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func outcomeColor(o engine.Outcome) string {
	switch o {
	case engine.OutcomeSuccess:
		return "green"
	case engine.OutcomeFailure:
		return "red"
	default:
		return "gray"
	}
}

// RenderHTML renders the text/html report body.
func RenderHTML(statuses []RunStatus) string {
	var b strings.Builder
	for _, s := range statuses {
		fmt.Fprintf(&b, "<p><b>%s - <font color=%q>%s</font></b></p>\n",
			html.EscapeString(s.Email), outcomeColor(s.Overall), s.Overall)
		b.WriteString("<ul>\n")
		for _, step := range s.Steps {
			fmt.Fprintf(&b, "<li>%s: <font color=%q>%s</font>",
				step.Step, outcomeColor(step.Outcome), step.Outcome)
			if step.Explanation != "" {
				fmt.Fprintf(&b, " <i>%s</i>", html.EscapeString(step.Explanation))
			}
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
		if s.Prizes != "" {
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(s.Prizes))
		}
	}
	return b.String()
}

// Message is one renderable, sendable report mail.
type Message struct {
	Subject string
	Plain   string
	HTML    string
}

// Compose builds the full report message for a day's runs.
func Compose(day time.Time, statuses []RunStatus) Message {
	return Message{
		Subject: Subject(day, statuses),
		Plain:   RenderPlain(statuses),
		HTML:    RenderHTML(statuses),
	}
}
