package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the tutorgraph banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _         _                              _     ", "#34d399"},
		{" | |_ _   _| |_ ___  _ __ __ _ _ __ __ _ _ __ | |__  ", "#2dd4bf"},
		{" | __| | | | __/ _ \\| '__/ _` | '__/ _` | '_ \\| '_ \\ ", "#22d3ee"},
		{" | |_| |_| | || (_) | | | (_| | | | (_| | |_) | | | |", "#38bdf8"},
		{"  \\__|\\__,_|\\__\\___/|_|  \\__, |_|  \\__,_| .__/|_| |_|", "#60a5fa"},
		{"                         |___/          |_|          ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  coding tutor "+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
