// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	cause := errors.New("process exited 1")
	me := New(CodeRuntimeFailure, "specialist run failed", cause)

	if me.Code != CodeRuntimeFailure {
		t.Errorf("expected CodeRuntimeFailure, got %v", me.Code)
	}
	if me.Message != "specialist run failed" {
		t.Errorf("expected message 'specialist run failed', got %q", me.Message)
	}
	if me.Err != cause {
		t.Errorf("expected cause to be preserved")
	}
	if !errors.Is(me, cause) {
		t.Errorf("expected errors.Is to work with wrapped error")
	}
}

func TestWithContext(t *testing.T) {
	me := New(CodeUnknownSpecialist, "no such specialist", nil)
	me.WithContext("specialist", "calendar-agent").
		WithContext("task", "check availability")

	if me.Context["specialist"] != "calendar-agent" {
		t.Errorf("expected context specialist to be 'calendar-agent'")
	}
	if me.Context["task"] == nil {
		t.Errorf("expected context task to be set")
	}
}

func TestWithRecoverable(t *testing.T) {
	me := New(CodeTimeout, "invocation deadline exceeded", nil)
	if me.Recoverable {
		t.Errorf("expected recoverable to be false by default")
	}

	me.WithRecoverable(true)
	if !me.Recoverable {
		t.Errorf("expected recoverable to be true after WithRecoverable")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		me       *MajordomoError
		expected string
	}{
		{
			name:     "with cause",
			me:       New(CodeTimeout, "invocation timed out", errors.New("deadline exceeded")),
			expected: "[TIMEOUT] invocation timed out: deadline exceeded",
		},
		{
			name:     "without cause",
			me:       New(CodeCapabilityDenied, "scope not granted", nil),
			expected: "[CAPABILITY_DENIED] scope not granted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.me.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAsMajordomoError(t *testing.T) {
	me := New(CodeManifest, "manifest unreadable", nil)
	if got := AsMajordomoError(me); got != me {
		t.Errorf("expected typed error to pass through unchanged")
	}

	plain := errors.New("boom")
	wrapped := AsMajordomoError(plain)
	if wrapped.Code != CodeInternal {
		t.Errorf("expected untyped error to wrap as CodeInternal, got %v", wrapped.Code)
	}
	if !errors.Is(wrapped, plain) {
		t.Errorf("expected wrapped error to preserve cause")
	}

	if AsMajordomoError(nil) != nil {
		t.Errorf("expected nil for nil error")
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(New(CodeCancelled, "request aborted", nil)); got != CodeCancelled {
		t.Errorf("expected CodeCancelled, got %v", got)
	}
	if got := CodeOf(errors.New("plain")); got != CodeInternal {
		t.Errorf("expected CodeInternal for untyped error, got %v", got)
	}
	if got := CodeOf(nil); got != "" {
		t.Errorf("expected empty code for nil, got %v", got)
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{CodeUnknownSpecialist, 404},
		{CodeCapabilityDenied, 403},
		{CodeInvalidRequest, 400},
		{CodeTimeout, 408},
		{CodeCancelled, 499},
		{CodeRuntimeFailure, 500},
		{CodeManifest, 500},
	}

	for _, tt := range tests {
		if got := New(tt.code, "x", nil).StatusCode; got != tt.status {
			t.Errorf("code %s: expected status %d, got %d", tt.code, tt.status, got)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	me := New(CodeRuntimeFailure, "specialist crashed", errors.New("signal: killed"))
	data, err := json.Marshal(me)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if out["code"] != string(CodeRuntimeFailure) {
		t.Errorf("expected code %s in JSON, got %v", CodeRuntimeFailure, out["code"])
	}
	if out["message"] == "" {
		t.Errorf("expected non-empty message in JSON")
	}
}
