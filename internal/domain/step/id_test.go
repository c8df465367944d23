package step

import (
	"errors"
	"testing"
)

func TestNewID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "valid simple ID",
			input:   "database",
			wantErr: nil,
		},
		{
			name:    "valid with hyphens",
			input:   "admin-account",
			wantErr: nil,
		},
		{
			name:    "valid with underscores",
			input:   "mail_settings",
			wantErr: nil,
		},
		{
			name:    "valid vendor-qualified",
			input:   "acme:billing",
			wantErr: nil,
		},
		{
			name:    "valid multi-segment vendor",
			input:   "acme:billing:plan",
			wantErr: nil,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: ErrEmptyID,
		},
		{
			name:    "whitespace only",
			input:   "   ",
			wantErr: ErrEmptyID,
		},
		{
			name:    "contains spaces",
			input:   "admin account",
			wantErr: ErrInvalidID,
		},
		{
			name:    "uppercase",
			input:   "Database",
			wantErr: ErrInvalidID,
		},
		{
			name:    "leading colon",
			input:   ":billing",
			wantErr: ErrInvalidID,
		},
		{
			name:    "trailing colon",
			input:   "acme:",
			wantErr: ErrInvalidID,
		},
		{
			name:    "leading hyphen",
			input:   "-database",
			wantErr: ErrInvalidID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewID(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewID(%q) error = %v", tt.input, err)
			}
			if id.String() != tt.input {
				t.Errorf("String() = %q, want %q", id.String(), tt.input)
			}
		})
	}
}

func TestID_Vendor(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"database", ""},
		{"acme:billing", "acme"},
		{"acme:billing:plan", "acme"},
	}

	for _, tt := range tests {
		id := MustNewID(tt.input)
		if got := id.Vendor(); got != tt.want {
			t.Errorf("Vendor(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestID_Equals(t *testing.T) {
	a := MustNewID("database")
	b := MustNewID("database")
	c := MustNewID("account")

	if !a.Equals(b) {
		t.Error("identical IDs should be equal")
	}
	if a.Equals(c) {
		t.Error("different IDs should not be equal")
	}
}

func TestID_IsZero(t *testing.T) {
	var zero ID
	if !zero.IsZero() {
		t.Error("zero-value ID should report IsZero")
	}
	if MustNewID("database").IsZero() {
		t.Error("valid ID should not report IsZero")
	}
}

func TestMustNewID_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustNewID should panic on an invalid ID")
		}
	}()
	MustNewID("NOT VALID")
}
