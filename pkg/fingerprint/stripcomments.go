package fingerprint

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8Valid reports whether body is valid UTF-8 in its entirety. It is its
// own named function (rather than an inline call to utf8.Valid) so the
// binary/invalid-UTF-8 bail-out path in computeCommentStripped reads as a
// single, self-documenting condition.
func utf8Valid(body []byte) bool {
	return utf8.Valid(body)
}

// stripComments removes C-style comments from body and writes the result to
// w, one line at a time. Recognized comment forms:
//
//   - "//" begins a single-line comment, removing everything up to (not
//     including) the line terminator.
//   - "/*" begins a multi-line comment, removing everything up to and
//     including the first subsequent "*/", including any newlines in
//     between.
//
// Escaped comment markers are not recognized. After comment removal, each
// line is trimmed of surrounding whitespace; lines that are empty after
// trimming are dropped entirely (never written, not even as a blank line),
// and the remaining lines are joined by a single "\n" with no trailing
// newline.
func stripComments(body []byte, w io.Writer) error {
	lines := splitLines(body)

	var wrote bool
	var multilineActive bool
	for _, raw := range lines {
		line := strings.TrimSuffix(raw, "\r")

		var cleaned string
		cleaned, multilineActive = cleanLine(line, multilineActive)
		cleaned = strings.TrimSpace(cleaned)
		if cleaned == "" {
			continue
		}

		// Every kept line after the first is preceded by its separator, so
		// the output never ends with a newline.
		if wrote {
			cleaned = "\n" + cleaned
		}
		if _, err := io.WriteString(w, cleaned); err != nil {
			return err
		}
		wrote = true
	}
	return nil
}

// splitLines splits body into lines the same way a line-oriented reader
// would: a trailing line terminator does not produce an extra empty final
// line, but an empty file still yields a single empty line (matching the
// behavior of scanning zero or more "\n"-terminated records).
func splitLines(body []byte) []string {
	lines := strings.Split(string(body), "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" && bytes.HasSuffix(body, []byte("\n")) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// cleanLine removes comment markers from a single line, given whether a
// multi-line comment was left open by a previous line. It returns the
// cleaned text and whether a multi-line comment remains open at the end of
// this line.
func cleanLine(line string, multilineActive bool) (string, bool) {
	if multilineActive {
		if end := strings.Index(line, "*/"); end != -1 {
			return cleanLine(line[end+2:], false)
		}
		return "", true
	}

	// Whichever marker appears first on the line takes effect.
	single := strings.Index(line, "//")
	if start := strings.Index(line, "/*"); start != -1 && (single == -1 || start < single) {
		before := line[:start]
		after, stillActive := cleanLine(line[start+2:], true)
		return before + after, stillActive
	}

	if single != -1 {
		return line[:single], false
	}

	return line, false
}
