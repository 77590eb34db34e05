package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	input := `
# provider credentials
API_TOKEN=abc123
EMPTY=""

CALENDAR_URL=https://cal.example.com/feed
`
	values, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if values["API_TOKEN"] != "abc123" {
		t.Errorf("expected abc123, got %q", values["API_TOKEN"])
	}
	if values["EMPTY"] != "" {
		t.Errorf("expected empty value, got %q", values["EMPTY"])
	}
	if values["CALENDAR_URL"] != "https://cal.example.com/feed" {
		t.Errorf("unexpected url value %q", values["CALENDAR_URL"])
	}
}

func TestParseQuotedValues(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		key   string
		value string
	}{
		{"spaces", `MSG="hello world"`, "MSG", "hello world"},
		{"hash", `TAG="build #42"`, "TAG", "build #42"},
		{"escaped quote", `QUOTE="say \"hi\""`, "QUOTE", `say "hi"`},
		{"escaped backslash", `PATH_W="C:\\temp"`, "PATH_W", `C:\temp`},
		{"escaped newline", `PEM="line1\nline2"`, "PEM", "line1\nline2"},
		{"escaped carriage return", `CRLF="a\r\nb"`, "CRLF", "a\r\nb"},
		{"trailing comment", `KEY="value" # note`, "KEY", "value"},
		{"unquoted trailing comment", `KEY=value # note`, "KEY", "value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := Parse(strings.NewReader(tt.line))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := values[tt.key]; got != tt.value {
				t.Errorf("expected %q, got %q", tt.value, got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing equals", "JUSTAKEY"},
		{"bad key", "2FA CODE=x"},
		{"unterminated quote", `KEY="oops`},
		{"trailing garbage", `KEY="x" y`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	original := map[string]string{
		"PLAIN":   "simple",
		"SPACED":  "a value with spaces",
		"HASHED":  "channel #general",
		"QUOTED":  `he said "go"`,
		"MIXED":   `tab	and space and # and "`,
		"SLASHES": `a\b\"c`,
		"PEM":     "-----BEGIN KEY-----\nabc\ndef\n-----END KEY-----",
		"CRLF":    "a\r\nb",
		"EMPTY":   "",
	}

	// Formatted output must stay one line per key.
	if formatted := Format(original); strings.Count(formatted, "\n") != len(original) {
		t.Fatalf("expected one line per key, got:\n%s", formatted)
	}

	values, err := Parse(strings.NewReader(Format(original)))
	if err != nil {
		t.Fatalf("Parse of formatted output failed: %v", err)
	}
	if len(values) != len(original) {
		t.Fatalf("expected %d values, got %d", len(original), len(values))
	}
	for k, want := range original {
		if got := values[k]; got != want {
			t.Errorf("key %s: expected %q, got %q", k, want, got)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	original := map[string]string{
		"NOTIFY_WEBHOOK": "https://hooks.example.com/x",
		"SIGNING_KEY":    `multi word # "quoted"`,
	}
	if err := Save(path, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	values, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for k, want := range original {
		if got := values[k]; got != want {
			t.Errorf("key %s: expected %q, got %q", k, want, got)
		}
	}
}

func TestApply(t *testing.T) {
	t.Setenv("MAJORDOMO_TEST_SECRET", "")
	if err := Apply(map[string]string{"MAJORDOMO_TEST_SECRET": "s3cret value"}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := os.Getenv("MAJORDOMO_TEST_SECRET"); got != "s3cret value" {
		t.Errorf("expected env to carry secret, got %q", got)
	}
}

func TestLastAssignmentWins(t *testing.T) {
	values, err := Parse(strings.NewReader("KEY=first\nKEY=second\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if values["KEY"] != "second" {
		t.Errorf("expected later assignment to win, got %q", values["KEY"])
	}
}
