package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterShells(t *testing.T) {
	shells := []string{
		"ghc8107", "ghc902", "ghc925",
		"ghc8107-minimal", "ghc902-minimal", "ghc925-minimal",
		"ghc8107-static-minimal", "ghc902-static-minimal", "ghc925-static-minimal",
	}

	tests := []struct {
		name     string
		patterns []string
		want     []string
		wantErr  string
	}{
		{name: "no patterns keeps all", patterns: nil, want: shells},
		{name: "exact name", patterns: []string{"ghc902"}, want: []string{"ghc902"}},
		{
			name:     "suffix glob",
			patterns: []string{"*-static-minimal"},
			want:     []string{"ghc8107-static-minimal", "ghc902-static-minimal", "ghc925-static-minimal"},
		},
		{
			name:     "several patterns keep original order",
			patterns: []string{"ghc925*", "ghc8107"},
			want:     []string{"ghc8107", "ghc925", "ghc925-minimal", "ghc925-static-minimal"},
		},
		{
			name:     "alternation",
			patterns: []string{"ghc{902,925}"},
			want:     []string{"ghc902", "ghc925"},
		},
		{name: "nothing matches", patterns: []string{"ghc961"}, wantErr: "no shells match"},
		{name: "bad pattern", patterns: []string{"ghc[9"}, wantErr: `invalid shell pattern "ghc[9"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FilterShells(shells, tt.patterns)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
