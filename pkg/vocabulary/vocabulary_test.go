package vocabulary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "trims and skips comments",
			input: "# header\n  rain \n\nsnow\n",
			want:  []string{"rain", "snow"},
		},
		{
			name:  "keeps first occurrence",
			input: "rain\nsnow\nrain\n",
			want:  []string{"rain", "snow"},
		},
		{
			name:  "drops invalid words",
			input: "two words\n" + strings.Repeat("x", 31) + "\ncafé\nok\n",
			want:  []string{"ok"},
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefault(t *testing.T) {
	words := Default()
	assert.Contains(t, words, "keyboard")
	for _, w := range words {
		assert.True(t, Valid(w), w)
	}
}

func TestFileSource_seedsMissingAndEmptyFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	missing := NewFileSource(filepath.Join(dir, "nested", "words.txt"))
	words, err := missing.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Default(), words)

	emptyPath := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(emptyPath, nil, 0644))
	words, err = NewFileSource(emptyPath).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Default(), words)

	customPath := filepath.Join(dir, "custom.txt")
	require.NoError(t, os.WriteFile(customPath, []byte("alpha\nbeta\n"), 0644))
	words, err = NewFileSource(customPath).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, words)
}

type failingSource struct{}

func (failingSource) Load(ctx context.Context) ([]string, error) {
	return nil, errors.New("offline")
}

func TestFallback(t *testing.T) {
	ctx := context.Background()

	words, err := Fallback{failingSource{}, Static{}, Static{"rain"}}.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"rain"}, words)

	_, err = Fallback{failingSource{}}.Load(ctx)
	assert.Error(t, err)

	words, err = Fallback{Static{}}.Load(ctx)
	assert.NoError(t, err)
	assert.Empty(t, words)
}
