package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/anointarray/sealforge/pkg/seal/layout"
)

// =============================================================================
// LayoutListModel - Interactive layout selection
// =============================================================================

// LayoutEntry is one layout file offered by the picker.
type LayoutEntry struct {
	Path     string
	Modified time.Time
	Layout   *layout.Layout // nil when the file does not parse
	Err      error
}

// LayoutListModel is the bubbletea model for interactive layout selection.
// Entries that fail to parse are listed but cannot be selected.
type LayoutListModel struct {
	Entries  []LayoutEntry
	Cursor   int
	Selected *LayoutEntry
	Height   int
	Offset   int
}

// NewLayoutListModel creates a new layout list model.
func NewLayoutListModel(entries []LayoutEntry) LayoutListModel {
	return LayoutListModel{Entries: entries, Height: 15}
}

func (m LayoutListModel) Init() tea.Cmd {
	return nil
}

func (m LayoutListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Entries) == 0 {
				return m, nil
			}
			e := m.Entries[m.Cursor]
			if e.Layout == nil {
				return m, nil
			}
			m.Selected = &e
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m LayoutListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Layout"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Entries))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		e := m.Entries[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		ring1, ring2, central, phrase := "—", "—", "—", "—"
		if e.Layout != nil {
			ring1 = fmt.Sprint(len(e.Layout.Ring1))
			ring2 = fmt.Sprint(len(e.Layout.Ring2))
			if e.Layout.CentralDesign != "" {
				central = e.Layout.CentralDesign
			}
			if e.Layout.Affirmation != "" {
				phrase = truncate(e.Layout.Affirmation, 28)
			}
		} else {
			phrase = truncate(e.Err.Error(), 28)
		}
		rows = append(rows, []string{cursor, filepath.Base(e.Path), ring1, ring2, central, phrase, formatRelativeTime(e.Modified)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Layout", "Ring 1", "Ring 2", "Central", "Affirmation", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Entries) {
				return lipgloss.NewStyle()
			}
			valid := m.Entries[idx].Layout != nil
			base := lipgloss.NewStyle()
			switch {
			case idx == m.Cursor && valid:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Foreground(colorRed).Bold(true)
			case !valid:
				return base.Foreground(colorDim)
			case col == 6:
				return base.Foreground(colorGray)
			}
			return base.Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// =============================================================================
// Picker
// =============================================================================

// scanLayouts lists the *.json files in dir, newest first, parsing each.
func scanLayouts(dir string) ([]LayoutEntry, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	entries := make([]LayoutEntry, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		e := LayoutEntry{Path: path, Modified: info.ModTime()}
		e.Layout, e.Err = layout.ReadLayoutFile(path)
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Modified.After(entries[j].Modified)
	})
	return entries, nil
}

// pickLayout runs the picker over dir. It returns "" when the user quits.
func pickLayout(dir string) (string, error) {
	entries, err := scanLayouts(dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("no layout files (*.json) in %s", dir)
	}
	final, err := tea.NewProgram(NewLayoutListModel(entries)).Run()
	if err != nil {
		return "", fmt.Errorf("layout picker: %w", err)
	}
	if m, ok := final.(LayoutListModel); ok && m.Selected != nil {
		return m.Selected.Path, nil
	}
	return "", nil
}

// =============================================================================
// Helpers
// =============================================================================

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
