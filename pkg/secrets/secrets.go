// Package secrets reads and writes the credential store consumed at process
// start. The format is line-oriented key=value pairs: `#`-prefixed lines are
// comments, and values containing whitespace, quotes, or `#` are
// double-quoted with internal quotes and backslashes escaped. Newlines and
// carriage returns are written as `\n` and `\r` so a value can never break
// the line structure. Round-trips are lossless.
package secrets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
)

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parse reads credential lines from r. Later assignments to the same key
// win, matching shell sourcing semantics.
func Parse(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: missing '='", lineNo)
		}
		key = strings.TrimSpace(key)
		if !keyPattern.MatchString(key) {
			return nil, fmt.Errorf("line %d: invalid key %q", lineNo, key)
		}
		parsed, err := parseValue(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		values[key] = parsed
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Load reads the credential file at path.
func Load(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Format renders values back into the file format with keys sorted for
// deterministic output.
func Format(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(values[k]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Save writes values to path, replacing any existing file. The file is
// created owner-readable only since it holds credentials.
func Save(path string, values map[string]string) error {
	return os.WriteFile(path, []byte(Format(values)), 0o600)
}

// Apply exports every credential into the process environment, where the
// specialists' external calls pick them up. The router itself never reads
// them back.
func Apply(values map[string]string) error {
	for k, v := range values {
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}

func parseValue(raw string) (string, error) {
	if !strings.HasPrefix(raw, `"`) {
		// Unquoted: the value runs to end of line, minus a trailing comment.
		if i := strings.Index(raw, "#"); i >= 0 {
			raw = strings.TrimSpace(raw[:i])
		}
		return raw, nil
	}
	var b strings.Builder
	escaped := false
	for i := 1; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			switch c {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(c)
			}
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			rest := strings.TrimSpace(raw[i+1:])
			if rest != "" && !strings.HasPrefix(rest, "#") {
				return "", fmt.Errorf("unexpected trailing content after closing quote")
			}
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("unterminated quoted value")
}

func formatValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\"#\n\r") {
		return value
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
