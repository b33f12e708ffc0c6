package qsim

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
)

var (
	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	wireStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// padCenter centres s within width, measured in terminal cells.
func padCenter(s string, width int, fill string) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, width-w-left)
}

// cellSymbol is what step draws on qubit q, or "" if q is not involved.
func cellSymbol(step Step, q int) string {
	for _, ctrl := range step.Controls {
		if ctrl == q {
			return "●"
		}
	}

	for _, t := range step.Targets {
		if t != q {
			continue
		}
		switch {
		case step.Gate.name == "SWAP":
			return "×"
		case step.Gate.name == "X" && len(step.Controls) > 0:
			return "⊕"
		case step.Gate.name == "CX" && t == step.Targets[0]:
			return "●"
		case step.Gate.name == "CX":
			return "⊕"
		default:
			return "[" + step.Gate.String() + "]"
		}
	}

	return ""
}

func renderCircuit(numQubits int, steps []Step) string {
	rows := make([]strings.Builder, numQubits)
	for q := range rows {
		rows[q].WriteString(qubitLabelStyle.Render(fmt.Sprintf("q%-2d", q)) + " ")
	}

	for _, step := range steps {
		lo, hi := numQubits, -1
		width := 3
		for q := 0; q < numQubits; q++ {
			if sym := cellSymbol(step, q); sym != "" {
				lo, hi = min(lo, q), max(hi, q)
				width = max(width, lipgloss.Width(sym)+2)
			}
		}

		for q := 0; q < numQubits; q++ {
			sym := cellSymbol(step, q)
			switch {
			case sym != "":
				rows[q].WriteString(wireStyle.Render("─") + gateStyle.Render(padCenter(sym, width-2, "─")) + wireStyle.Render("─"))
			case q > lo && q < hi:
				rows[q].WriteString(wireStyle.Render(padCenter("┼", width, "─")))
			default:
				rows[q].WriteString(wireStyle.Render(strings.Repeat("─", width)))
			}
		}
	}

	lines := make([]string, numQubits)
	for q := range rows {
		lines[q] = rows[q].String()
	}
	return strings.Join(lines, "\n")
}

func writeStateTable(w io.Writer, sv StateVector) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"State", "Amplitude", "Probability"})

	for i, amp := range sv.Amplitudes {
		p := sqAbs(amp)
		if p < 1e-12 {
			continue
		}
		table.Append([]string{
			"|" + sv.Label(i) + "⟩",
			fmt.Sprintf("%.4f", amp),
			fmt.Sprintf("%.4f", p),
		})
	}

	table.Render()
	return nil
}
