package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Column widths of the human listings.
const (
	NameColumnLen  = 28
	AffilColumnLen = 24
	TitleMaxLen    = 70
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...any) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(map[string]string{"error": msg})
	}
	os.Exit(code)
}

// truncateString shortens s to max runes, ending in "...".
func truncateString(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// pad left-aligns s in a column of width runes.
func pad(s string, width int) string {
	s = truncateString(s, width)
	if n := width - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
