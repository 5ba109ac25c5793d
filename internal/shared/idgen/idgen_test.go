package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewShape(t *testing.T) {
	for i := 0; i < 200; i++ {
		id := New()
		assert.Len(t, id, Length)
		parts := strings.Split(id, "-")
		if assert.Len(t, parts, 5, id) {
			assert.Equal(t, []int{8, 4, 4, 4, 12},
				[]int{len(parts[0]), len(parts[1]), len(parts[2]), len(parts[3]), len(parts[4])})
		}
		assert.True(t, Valid(id), id)
	}
}

func TestNewDistinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := New()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"abcdefgh-ijkl-mnop-qrst-uvwxyz012345", true},
		{"ABCDEFGH-ijkl-mnop-qrst-uvwxyz012345", false},
		{"abcdefghi-jkl-mnop-qrst-uvwxyz012345", false},
		{"abcdefgh-ijkl-mnop-qrst-uvwxyz01234", false},
		{"abcdefgh_ijkl_mnop_qrst_uvwxyz012345", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Valid(tt.in), tt.in)
	}
}
