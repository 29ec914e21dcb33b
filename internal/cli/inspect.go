package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/anointarray/sealforge/pkg/seal/clock"
	"github.com/anointarray/sealforge/pkg/seal/geometry"
	"github.com/anointarray/sealforge/pkg/seal/textfit"
)

// fitCommand shows how an affirmation is laid around the outer ring.
func (c *CLI) fitCommand() *cobra.Command {
	var size int
	var radius float64
	var settingsPath string

	cmd := &cobra.Command{
		Use:   "fit [phrase]",
		Short: "Show the repeated text and font size for an affirmation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := ""
			if len(args) == 1 {
				phrase = args[0]
			}
			if radius <= 0 {
				s, err := c.settings(settingsPath)
				if err != nil {
					return err
				}
				radius = s.Ring3Radius * s.Scale(size)
			}
			writeFit(cmd.OutOrStdout(), fitAt(phrase, radius, size))
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 1200, "output size in pixels, which scales the font band")
	cmd.Flags().Float64Var(&radius, "radius", 0, "ring radius in pixels (default: outer ring at --size)")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "geometry settings JSON (default from config)")
	return cmd
}

// fitAt fits phrase with the font band scaled to size, as composition does.
func fitAt(phrase string, radius float64, size int) textfit.Result {
	opts := textfit.DefaultOptions()
	k := float64(size) / geometry.ReferenceSize
	opts.MinSize *= k
	opts.MaxSize *= k
	return textfit.Fit(phrase, radius, opts)
}

func writeFit(w io.Writer, r textfit.Result) {
	fmt.Fprintln(w, keyValue("Phrase", r.Phrase))
	fmt.Fprintln(w, keyValue("Repeats", strconv.Itoa(r.Repeats)))
	fmt.Fprintln(w, keyValue("Runes", strconv.Itoa(len(r.Runes()))))
	fmt.Fprintln(w, keyValue("Font size", strconv.FormatFloat(r.FontSize, 'f', 2, 64)+"px"))
	fmt.Fprintln(w, keyValue("Text", r.Text))
}

// clockCommand lists the 24 clock positions, their angles and the pixel
// offset from the centre on a unit ring.
func (c *CLI) clockCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "List the clock positions used by ring tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), clockTable().Render())
			return nil
		},
	}
}

func clockTable() *table.Table {
	rows := make([][]string, 0, clock.TickCount)
	for i, label := range clock.Labels() {
		deg, _ := clock.AngleFor(label)
		x, y := clock.Point(0, 0, 1, deg)
		rows = append(rows, []string{
			strconv.Itoa(i),
			label,
			strconv.FormatFloat(deg, 'f', 1, 64) + "°",
			fmt.Sprintf("%+.3f, %+.3f", x, y),
		})
	}
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Position", "Angle", "Unit offset").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return styleHeader
			case col == 1:
				return StyleNumber
			case row%6 == 0:
				return StyleValue.Bold(true)
			}
			return StyleDim
		})
}
