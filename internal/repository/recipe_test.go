package repository

import (
	"testing"
	"time"
)

func TestCursorRoundTrip(t *testing.T) {
	original := &PaginationCursor{
		ID:        "01HQZX3V9K2J4M6N8P0R2T4V6X",
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	encoded := encodeCursor(original)
	if encoded == "" {
		t.Fatal("expected non-empty cursor")
	}

	decoded, err := decodeCursor(encoded)
	if err != nil {
		t.Fatalf("decodeCursor() error = %v", err)
	}

	if decoded.ID != original.ID {
		t.Errorf("ID = %q, want %q", decoded.ID, original.ID)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", decoded.CreatedAt, original.CreatedAt)
	}
}

func TestDecodeCursorInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"base64 but not json", "bm90LWpzb24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeCursor(tt.input); err == nil {
				t.Error("expected error for invalid cursor")
			}
		})
	}
}
