package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE submissions;--", "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns default", "", "submitted_at"},
		{"valid field returns field", "total_asset_value", "total_asset_value"},
		{"whitespace around valid field returns field", "  submitted_by  ", "submitted_by"},
		{"unknown column returns default", "snapshot", "submitted_at"},
		{"sql injection attempt returns default", "id; DROP TABLE submissions;--", "submitted_at"},
		{"case sensitive", "SUBMITTED_BY", "submitted_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, SubmissionSortFields, "submitted_at"))
		})
	}
}
