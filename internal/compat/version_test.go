package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"80", "80", 0},
		{"9", "10", -1},
		{"10", "9", 1},
		{"13.1", "13", 1},
		{"13", "13.1", -1},
		{"13.0", "13", 0},
		{"18.0.0", "18", 0},
		{"14.0.0", "14.1", -1},
		{"79.0.3945", "80", -1},
		{"", "1", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestMaxVersion(t *testing.T) {
	assert.Equal(t, "80", MaxVersion("74", "80"))
	assert.Equal(t, "80", MaxVersion("80", "74"))
	assert.Equal(t, "13.1", MaxVersion("13", "13.1"))
	assert.Equal(t, "42", MaxVersion("", "42"))
	assert.Equal(t, "42", MaxVersion("42", ""))
	assert.Equal(t, "", MaxVersion("", ""))
}
