// Package textutil provides byte-level text utilities for the browser:
// binary detection, line counting and splitting, and tab expansion.
package textutil

import (
	"bytes"
	"strings"
)

// BinarySniffLength is the maximum number of bytes scanned for null-byte
// detection. Matches the heuristic used by Git and most editors.
const BinarySniffLength = 8000

// IsBinary returns true if data contains a null byte within the first
// BinarySniffLength bytes. Empty data is not binary.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	sniff := data
	if len(sniff) > BinarySniffLength {
		sniff = sniff[:BinarySniffLength]
	}

	return bytes.IndexByte(sniff, 0) >= 0
}

// CountLines returns the number of newline-delimited lines in data.
// A non-empty buffer without a trailing newline counts the last partial line.
// Returns 0 for empty data.
func CountLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}

	lines := bytes.Count(data, []byte{'\n'})

	if data[len(data)-1] != '\n' {
		lines++
	}

	return lines
}

// SplitLines splits data into CountLines(data) lines without their "\n" or
// "\r\n" terminators.
func SplitLines(data []byte) []string {
	lines := make([]string, 0, CountLines(data))

	for len(data) > 0 {
		line := data
		next := []byte(nil)

		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, next = data[:i], data[i+1:]
		}

		lines = append(lines, string(bytes.TrimSuffix(line, []byte{'\r'})))
		data = next
	}

	return lines
}

// ExpandTabs replaces each tab with spaces up to the next multiple of width.
// Columns are counted in runes.
func ExpandTabs(line string, width int) string {
	if width <= 0 || !strings.ContainsRune(line, '\t') {
		return line
	}

	var b strings.Builder

	col := 0

	for _, r := range line {
		if r == '\t' {
			pad := width - col%width
			b.WriteString(strings.Repeat(" ", pad))
			col += pad

			continue
		}

		b.WriteRune(r)
		col++
	}

	return b.String()
}
