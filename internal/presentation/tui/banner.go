package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner shown when the REPL starts.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-violet gradient, one color per line
	s1 := termenv.String("      _ _                        ").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("   __| (_) __ _  __ _  ___ _ __  ").Foreground(p.Color("#38bdf8"))
	s3 := termenv.String("  / _` | |/ _` |/ _` |/ _ \\ '_ \\ ").Foreground(p.Color("#60a5fa"))
	s4 := termenv.String(" | (_| | | (_| | (_| |  __/ | | |").Foreground(p.Color("#818cf8"))
	s5 := termenv.String("  \\__,_|_|\\__,_|\\__, |\\___|_| |_|").Foreground(p.Color("#a78bfa"))
	s6 := termenv.String("                |___/            ").Foreground(p.Color("#c084fc"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println(s6)
	fmt.Println()
}
