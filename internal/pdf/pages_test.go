package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{"empty selects all pages", "", nil, false},
		{"single page", "3", []int{3}, false},
		{"simple range", "1-4", []int{1, 2, 3, 4}, false},
		{"list", "1,3,5", []int{1, 3, 5}, false},
		{"mixed list and range", "1, 3-5, 8", []int{1, 3, 4, 5, 8}, false},
		{"reversed range", "5-2", nil, true},
		{"zero page", "0", nil, true},
		{"zero in range", "0-3", nil, true},
		{"garbage", "abc", nil, true},
		{"garbage in range", "1-x", nil, true},
		{"double dash", "1-2-3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageFromFilename(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"page_1_Im0.png", 1, false},
		{"page_12_Im3.jpg", 12, false},
		{"thumbnail.png", 0, true},
		{"page_x_Im0.png", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePageFromFilename(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}
