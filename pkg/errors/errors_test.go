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
		{"plain", New(ErrCodeDuplicateID, "node %q already exists", "a"), `DUPLICATE_ID: node "a" already exists`},
		{"with cause", Wrap(ErrCodeNotFound, fs.ErrNotExist, "read %s", "map.json"), "NOT_FOUND: read map.json: file does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeNotFound, fs.ErrNotExist, "read %s", "map.json")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is(err, fs.ErrNotExist) = false")
	}
	if errors.Unwrap(err) != fs.ErrNotExist {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}
}

func TestCodeLookup(t *testing.T) {
	missing := New(ErrCodeNodeNotFound, "node %q not found", "x")
	parent := Wrap(ErrCodeParentNotFound, missing, "parent %q not found", "x")

	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"direct", missing, ErrCodeNodeNotFound, true},
		{"other code", missing, ErrCodeDuplicateID, false},
		{"outer code of a rewrap", parent, ErrCodeParentNotFound, true},
		{"inner code of a rewrap", parent, ErrCodeNodeNotFound, false},
		{"behind fmt wrapping", fmt.Errorf("add: %w", missing), ErrCodeNodeNotFound, true},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"nil", nil, ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is(%v, %s) = %v, want %v", tt.err, tt.code, got, tt.want)
			}
			wantCode := Code("")
			if tt.want {
				wantCode = tt.code
			}
			if got := GetCode(tt.err); tt.want && got != wantCode {
				t.Errorf("GetCode() = %q, want %q", got, wantCode)
			}
		})
	}
}

func TestGetCodeUncoded(t *testing.T) {
	for _, err := range []error{nil, errors.New("plain")} {
		if got := GetCode(err); got != "" {
			t.Errorf("GetCode(%v) = %q, want empty", err, got)
		}
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeForbiddenAdd, "no child types allowed under %q", "Task"), `no child types allowed under "Task"`},
		{"cause hidden", Wrap(ErrCodeInternal, errors.New("disk"), "save map"), "save map"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsPolicy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"forbidden add", New(ErrCodeForbiddenAdd, "no child type"), true},
		{"over depth", New(ErrCodeOverDepth, "too deep"), true},
		{"not editable", Wrap(ErrCodeNotEditable, errors.New("read only"), "edit"), true},
		{"duplicate id", New(ErrCodeDuplicateID, "dup"), false},
		{"plain error", errors.New("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPolicy(tt.err); got != tt.want {
				t.Errorf("IsPolicy() = %v, want %v", got, tt.want)
			}
		})
	}
}
