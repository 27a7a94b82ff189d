package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrCodeInvalidSearch, "search term too long: %d characters", 300),
			want: "INVALID_SEARCH: search term too long: 300 characters",
		},
		{
			name: "with cause",
			err:  Wrap(ErrCodeRestoreFailed, errors.New("exit status 1"), "restore %s", "App.sln"),
			want: "RESTORE_FAILED: restore App.sln: exit status 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsChain(t *testing.T) {
	err := Wrap(ErrCodeFileNotFound, fmt.Errorf("open obj/App.dgspec.json: %w", fs.ErrNotExist), "restore graph")

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false, want true")
	}
	if errors.Unwrap(err) == nil {
		t.Error("Unwrap() = nil, want cause")
	}

	// A structured error stays reachable through a %w wrapper.
	outer := fmt.Errorf("distill: %w", err)
	if !Is(outer, ErrCodeFileNotFound) || GetCode(outer) != ErrCodeFileNotFound {
		t.Errorf("code lost through wrapping: %v", outer)
	}
}

func TestCodeLookup(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		wantIs   bool
		wantCode Code
	}{
		{"matching code", New(ErrCodeMalformedGraph, "x"), ErrCodeMalformedGraph, true, ErrCodeMalformedGraph},
		{"other code", New(ErrCodeMalformedGraph, "x"), ErrCodeRepository, false, ErrCodeMalformedGraph},
		{"outermost code wins", Wrap(ErrCodeRestoreFailed, New(ErrCodeTimeout, "inner"), "outer"), ErrCodeRestoreFailed, true, ErrCodeRestoreFailed},
		{"plain error", errors.New("plain"), ErrCodeInternal, false, ""},
		{"nil", nil, ErrCodeInvalidInput, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.wantIs {
				t.Errorf("Is() = %v, want %v", got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %v, want %v", got, tt.wantCode)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Wrap(ErrCodeRestoreFailed, errors.New("NU1101"), "restore App.sln"), "restore App.sln"},
		{fmt.Errorf("outer: %w", New(ErrCodeAnalysisNotFound, "analysis 1234 not found")), "analysis 1234 not found"},
		{errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, 400},
		{ErrCodeInvalidFormat, 400},
		{ErrCodeInvalidPath, 400},
		{ErrCodeInvalidSearch, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeFileNotFound, 404},
		{ErrCodeAnalysisNotFound, 404},
		{ErrCodeMalformedGraph, 422},
		{ErrCodeUnsupported, 422},
		{ErrCodeNotImplemented, 501},
		{ErrCodeRestoreFailed, 502},
		{ErrCodeRepository, 502},
		{ErrCodeTimeout, 504},
		{ErrCodeInternal, 500},
	}

	for _, tt := range tests {
		if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
			t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
	if got := HTTPStatus(errors.New("plain")); got != 500 {
		t.Errorf("HTTPStatus(plain) = %d, want 500", got)
	}
}
