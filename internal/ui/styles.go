package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Adaptive Color definitions
	colorHeader = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#00af00", ANSI256: "34", ANSI: "2"},
		Light: lipgloss.CompleteColor{TrueColor: "#008700", ANSI256: "28", ANSI: "2"},
	}
	colorCommand = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#5fffff", ANSI256: "86", ANSI: "6"},
		Light: lipgloss.CompleteColor{TrueColor: "#008787", ANSI256: "30", ANSI: "6"},
	}
	colorPath = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#5f5fff", ANSI256: "63", ANSI: "4"},
		Light: lipgloss.CompleteColor{TrueColor: "#0000af", ANSI256: "19", ANSI: "4"},
	}
	colorPattern = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#d7ff87", ANSI256: "192", ANSI: "11"},
		Light: lipgloss.CompleteColor{TrueColor: "#5f8700", ANSI256: "64", ANSI: "10"},
	}
	colorDim = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#9e9e9e", ANSI256: "247", ANSI: "8"},
		Light: lipgloss.CompleteColor{TrueColor: "#444444", ANSI256: "238", ANSI: "0"},
	}
	colorFlag = lipgloss.CompleteAdaptiveColor{
		Dark:  lipgloss.CompleteColor{TrueColor: "#ff5faf", ANSI256: "204", ANSI: "13"},
		Light: lipgloss.CompleteColor{TrueColor: "#af005f", ANSI256: "125", ANSI: "5"},
	}

	StyleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorHeader)
	StyleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorCommand)
	StylePath    = lipgloss.NewStyle().Foreground(colorPath)
	StylePattern = lipgloss.NewStyle().Foreground(colorPattern)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleFlag    = lipgloss.NewStyle().Italic(true).Foreground(colorFlag)

	StyleGood = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	StyleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("192"))
	StyleBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("204"))
)

// OutcomeStyle picks the summary color for an enrichment outcome
func OutcomeStyle(outcome string) lipgloss.Style {
	switch outcome {
	case "cache_hit", "fetched":
		return StyleGood
	case "stale_fallback":
		return StyleWarn
	case "local_only":
		return StyleBad
	}
	return StyleDim
}

// HighlightYAML applies simple syntax highlighting to a YAML document
func HighlightYAML(input string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorCommand).Bold(true)
	valStyle := lipgloss.NewStyle().Foreground(colorPattern)

	lines := strings.Split(input, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			lines[i] = StyleDim.Render(line)
			continue
		}

		// Values may contain colons (URLs), so split on the first ": " only
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key, val := line[:idx], line[idx+1:]

		prefix := ""
		if trimmed := strings.TrimLeft(key, " "); strings.HasPrefix(trimmed, "- ") {
			pIdx := strings.Index(key, "- ")
			prefix, key = key[:pIdx+2], key[pIdx+2:]
		}

		if strings.TrimSpace(val) == "" {
			lines[i] = prefix + keyStyle.Render(key) + ":"
			continue
		}
		lines[i] = prefix + keyStyle.Render(key) + ":" + valStyle.Render(val)
	}
	return strings.Join(lines, "\n")
}
