package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taxadvisor/internal/domain"
	"taxadvisor/internal/tax"
)

const (
	fieldSalary = iota
	fieldSection80C
	fieldSection80D
	fieldHRA
	fieldOther
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Gross salary",
	"Section 80C",
	"Section 80D",
	"HRA exemption",
	"Other deductions",
}

// Model is the Bubble Tea model for the interactive calculator.
type Model struct {
	inputs   [fieldCount]textinput.Model
	viewport viewport.Model
	focus    int
	status   string
	ready    bool
}

// New creates a new TUI model instance.
func New() Model {
	var m Model
	for i := 0; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = "0"
		ti.CharLimit = 12
		m.inputs[i] = ti
	}
	m.inputs[fieldSalary].Focus()
	m.viewport = viewport.New(0, 0)
	m.status = "Enter amounts, Tab to move, Enter to compare. Ctrl+C quits."
	return m
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		reserved := fieldCount + 4 // header, labels, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab", "up":
			m.setFocus((m.focus - 1 + fieldCount) % fieldCount)
			return m, nil
		case "enter":
			m.compare()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// View renders the form and the current comparison.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Tax Regime Advisor"))
	sb.WriteString("\n")
	for i := 0; i < fieldCount; i++ {
		label := labelStyle.Render(fmt.Sprintf("%-17s", fieldLabels[i]))
		sb.WriteString(label + m.inputs[i].View() + "\n")
	}
	sb.WriteString(resultBoxStyle.Render(m.viewport.View()))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(m.status))
	return sb.String()
}

func (m *Model) setFocus(idx int) {
	m.inputs[m.focus].Blur()
	m.focus = idx
	m.inputs[m.focus].Focus()
}

func (m *Model) compare() {
	salary, err := parseAmount(m.inputs[fieldSalary].Value())
	if err != nil || salary <= 0 {
		m.status = "Enter a positive gross salary."
		return
	}
	d := domain.DeductionSet{}
	fields := []struct {
		idx int
		dst *int64
	}{
		{fieldSection80C, &d.Section80C},
		{fieldSection80D, &d.Section80D},
		{fieldHRA, &d.HRA},
		{fieldOther, &d.Other},
	}
	for _, f := range fields {
		v, err := parseAmount(m.inputs[f.idx].Value())
		if err != nil || v < 0 {
			m.status = fmt.Sprintf("Invalid amount for %s.", fieldLabels[f.idx])
			return
		}
		*f.dst = v
	}

	cmp := tax.CompareRegimes(salary, d)
	m.viewport.SetContent(renderComparison(cmp))
	m.status = cmp.Recommendation
}

func renderComparison(cmp domain.Comparison) string {
	var sb strings.Builder
	writeRegime := func(r domain.RegimeResult) {
		fmt.Fprintf(&sb, "%s regime\n", strings.ToUpper(string(r.Regime)[:1])+string(r.Regime)[1:])
		fmt.Fprintf(&sb, "  Deductions      ₹%d\n", r.TotalDeductions)
		fmt.Fprintf(&sb, "  Taxable income  ₹%d\n", r.TaxableIncome)
		fmt.Fprintf(&sb, "  Base tax        ₹%d\n", r.BaseTax)
		fmt.Fprintf(&sb, "  Cess            ₹%d\n", r.Cess)
		fmt.Fprintf(&sb, "  Total tax       ₹%d (%.2f%%)\n", r.TotalTax, r.EffectiveRatePercent)
	}
	writeRegime(cmp.Old)
	sb.WriteString("\n")
	writeRegime(cmp.New)
	sb.WriteString("\n")
	verdict := string(cmp.BetterRegime)
	if cmp.BetterRegime == domain.RegimeEqual {
		verdict = "either"
	}
	sb.WriteString(verdictStyle.Render(fmt.Sprintf("Better regime: %s", verdict)))
	return sb.String()
}

func parseAmount(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	verdictStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
