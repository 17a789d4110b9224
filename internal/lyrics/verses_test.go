package lyrics

import (
	"testing"

	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolateVerses(t *testing.T) {
	t.Run("Keeps Only The Artist's Verse", func(t *testing.T) {
		text := "[Verse 1: Some Rapper]\nfoo\n[Verse 2: Other]\nbar"

		res, err := IsolateVerses(text, "Some Rapper")
		require.NoError(t, err)
		assert.Equal(t, "foo", res.Text)
		assert.False(t, res.Solo)
		assert.Equal(t, 1, res.Sections)
	})

	t.Run("Solo Song Unchanged", func(t *testing.T) {
		text := "[Intro]\nline one\n\nline two"

		res, err := IsolateVerses(text, "Some Rapper")
		require.NoError(t, err)
		assert.Equal(t, text, res.Text)
		assert.True(t, res.Solo)
	})

	t.Run("No Attributable Verses", func(t *testing.T) {
		_, err := IsolateVerses("[Verse 1: Other]\nx\n[Chorus: Someone]\ny", "Some Rapper")
		assert.ErrorIs(t, err, shared.ErrNoAttributableVerses)
	})

	t.Run("Multiple Sections Joined In Order", func(t *testing.T) {
		text := "intro chatter\n[Verse 1: Some Rapper]\nfirst\nsecond\n\n[Chorus: Other]\nhook\n[Verse 3: Some Rapper]\nthird\n"

		res, err := IsolateVerses(text, "Some Rapper")
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\n\nthird", res.Text)
		assert.Equal(t, 2, res.Sections)
	})

	t.Run("Header Starting With Name", func(t *testing.T) {
		text := "[Some Rapper & Friend]\nboth\n[Chorus: Other]\nc"

		res, err := IsolateVerses(text, "Some Rapper")
		require.NoError(t, err)
		assert.Equal(t, "both", res.Text)
	})

	t.Run("Name Prefix Of Longer Name", func(t *testing.T) {
		text := "[Verse 1: Other]\nx\n[Someone]\ny"

		_, err := IsolateVerses(text, "Some")
		assert.ErrorIs(t, err, shared.ErrNoAttributableVerses)
	})

	t.Run("Labels", func(t *testing.T) {
		tests := []struct {
			name   string
			header string
			want   bool
		}{
			{"Numbered Verse", "[Verse 2: Some Rapper]", true},
			{"Verse Without Space", "[Verse2: Some Rapper]", true},
			{"Pre-Chorus", "[Pre-Chorus: Some Rapper]", true},
			{"Hook No Colon", "[Hook Some Rapper]", true},
			{"Lower Case", "[chorus: some rapper]", true},
			{"Shared Credit", "[Verse 1: Other & Some Rapper]", false},
			{"Unknown Label", "[Skit: Some Rapper]", false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				text := "[Verse: Other]\nnot theirs\n" + tt.header + "\nbody"
				res, err := IsolateVerses(text, "Some Rapper")
				if tt.want {
					require.NoError(t, err)
					assert.Equal(t, "body", res.Text)
				} else {
					assert.ErrorIs(t, err, shared.ErrNoAttributableVerses)
				}
			})
		}
	})

	t.Run("Name With Regex Metacharacters", func(t *testing.T) {
		text := "[Verse 1: A$AP Rocky]\nflow\n[Verse 2: AxAP Rocky]\nnope"

		res, err := IsolateVerses(text, "A$AP Rocky")
		require.NoError(t, err)
		assert.Equal(t, "flow", res.Text)
	})

	t.Run("Empty Bodies Dropped", func(t *testing.T) {
		text := "[Verse 1: Some Rapper]\n\n[Verse 2: Some Rapper]\nreal"

		res, err := IsolateVerses(text, "Some Rapper")
		require.NoError(t, err)
		assert.Equal(t, "real", res.Text)
		assert.Equal(t, 1, res.Sections)
	})

	t.Run("Empty Artist Name", func(t *testing.T) {
		_, err := IsolateVerses("[Verse 1: X]\nfoo", " ")
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
