// Package watch renders a smoke run live: one line per finished step, a
// spinner while the next request is in flight, and a closing stability
// summary. The runner executes in its own goroutine and feeds the view
// through a message channel.
package watch

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/BeyzaCankayaa/mindprobe/internal/domain"
)

type stepLine struct {
	name    string
	status  string
	passed  bool
	opaque  bool
	latency int64
	detail  string
}

type model struct {
	theme Theme

	target  string
	baseURL string

	events <-chan tea.Msg

	spin  spinner.Model
	lines []stepLine
	total int

	done   bool
	report domain.RunReport
	runID  string
	err    error
}

// Run blocks until the smoke run finishes or the user quits. The caller owns
// the events channel: StepMsg per step, then exactly one DoneMsg, then close.
func Run(target, baseURL string, events <-chan tea.Msg) (domain.RunReport, string, error) {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		theme:   DefaultTheme(),
		target:  target,
		baseURL: baseURL,
		events:  events,
		spin:    sp,
	}

	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return domain.RunReport{}, "", err
	}

	final, ok := out.(model)
	if !ok {
		return domain.RunReport{}, "", fmt.Errorf("unexpected final model %T", out)
	}
	return final.report, final.runID, final.err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, listen(m.events))
}

func listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return DoneMsg{}
		}
		return msg
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case StepMsg:
		m.total = msg.Total
		m.lines = append(m.lines, toLine(msg.Result))
		return m, listen(m.events)

	case DoneMsg:
		m.done = true
		m.report = msg.Report
		m.runID = msg.ID
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

func toLine(r domain.StepResult) stepLine {
	l := stepLine{
		name:    r.Name,
		latency: r.LatencyMS,
		passed:  !r.Failed(),
		opaque:  r.Parse == domain.ParseOpaque,
	}

	switch {
	case r.Error != nil:
		l.status = "ERR"
		l.detail = fmt.Sprintf("%s (%s)", r.Error.Message, r.Error.Kind)
	default:
		l.status = fmt.Sprintf("%d", r.StatusCode)
		for _, a := range r.Assertions {
			if !a.Passed {
				l.detail = a.Message
				break
			}
		}
		if l.detail == "" {
			for _, e := range r.Extracts {
				if !e.Success {
					l.detail = e.Message
					break
				}
			}
		}
	}

	return l
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render("mindprobe smoke"))
	b.WriteString("  ")
	b.WriteString(m.theme.Faint.Render(fmt.Sprintf("target=%s  %s", m.target, m.baseURL)))
	b.WriteString("\n\n")

	for _, l := range m.lines {
		mark := m.theme.Pass.Render("✓")
		if !l.passed {
			mark = m.theme.Fail.Render("✗")
		}
		if l.opaque {
			mark = m.theme.Opaque.Render("○")
		}

		fmt.Fprintf(&b, " %s %-24s %-4s %5dms", mark, l.name, l.status, l.latency)
		if l.detail != "" {
			b.WriteString("  ")
			b.WriteString(m.theme.Faint.Render(l.detail))
		}
		b.WriteString("\n")
	}

	if !m.done {
		progress := ""
		if m.total > 0 {
			progress = fmt.Sprintf(" (%d/%d)", len(m.lines), m.total)
		}
		fmt.Fprintf(&b, "\n %s running%s\n", m.spin.View(), progress)
		b.WriteString(m.theme.Faint.Render(" ctrl+c to abort\n"))
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.summary())
	return b.String()
}

func (m model) summary() string {
	var b strings.Builder

	if st := m.report.Stability; st != nil {
		verdict := "True"
		style := m.theme.Pass
		if !st.Stable {
			verdict = "False"
			style = m.theme.Fail
			if !st.Strict {
				style = m.theme.Opaque
			}
		}
		fmt.Fprintf(&b, " SAME_DAY_STABLE = %s\n", style.Render(verdict))
	}

	if m.err != nil {
		fmt.Fprintf(&b, " %s %v\n", m.theme.Fail.Render("FAIL"), m.err)
	} else {
		fmt.Fprintf(&b, " %s all steps passed\n", m.theme.Pass.Render("PASS"))
	}

	if m.runID != "" {
		fmt.Fprintf(&b, " %s\n", m.theme.Faint.Render("report saved: "+m.runID))
	}

	return m.theme.Card.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}
