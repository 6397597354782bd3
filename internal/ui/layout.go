package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pleimann/tapboard/internal/layout"
)

// PrintLayout displays a layout's metrics and a table of its keys
func PrintLayout(path string, l *layout.Layout) {
	fmt.Println()
	fmt.Println(Title(l.Name))
	fmt.Println(Muted(path))
	fmt.Println()
	fmt.Printf("  %s %d\n", Muted("Keys:"), l.Len())
	fmt.Printf("  %s %dx%d\n", Muted("Size:"), l.MinWidth(), l.Height())
	fmt.Printf("  %s %d\n", Muted("Proximity threshold:"), l.ProximityThreshold())
	fmt.Println()

	rows := layoutRows(l)
	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.label
	}
	w := max(5, labelWidth(labels))

	fmt.Printf("  %s\n", Bold(fmt.Sprintf("%-4s %-*s %-18s %-16s %s", "#", w, "label", "bounds", "codes", "flags")))
	for i, r := range rows {
		fmt.Printf("  %s %s %-18s %-16s %s\n",
			DeviceIndexStyle.Render(fmt.Sprintf("%-4d", i)),
			padRight(r.label, w),
			r.bounds,
			r.codes,
			Muted(r.flags))
	}
	fmt.Println()
}

type layoutRow struct {
	label  string
	bounds string
	codes  string
	flags  string
}

func layoutRows(l *layout.Layout) []layoutRow {
	rows := make([]layoutRow, l.Len())
	for i, k := range l.Keys() {
		label := k.Label
		if label == "" {
			label = k.Icon
		}

		codes := make([]string, len(k.Codes))
		for j, c := range k.Codes {
			codes[j] = fmt.Sprint(c)
		}

		var flags []string
		if k.Text != "" {
			flags = append(flags, fmt.Sprintf("text=%q", k.Text))
		}
		if k.Repeatable {
			flags = append(flags, "repeat")
		}
		if k.IsMultiTap() {
			flags = append(flags, "multitap")
		}
		if k.HasPopup() {
			flags = append(flags, "popup="+k.Popup)
		}

		rows[i] = layoutRow{
			label:  label,
			bounds: fmt.Sprintf("%d,%d %dx%d", k.X, k.Y, k.Width, k.Height),
			codes:  strings.Join(codes, ","),
			flags:  strings.Join(flags, " "),
		}
	}
	return rows
}

// labelWidth is the widest label in runes.
func labelWidth(labels []string) int {
	w := 0
	for _, l := range labels {
		w = max(w, utf8.RuneCountInString(l))
	}
	return w
}

func padRight(s string, w int) string {
	return s + strings.Repeat(" ", max(0, w-utf8.RuneCountInString(s)))
}
