package hooks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoundTrip(t *testing.T) {
	for h := range Seq() {
		assert.Equal(t, string(h), Normalize(h.External()), "round trip for %s", h)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"patchset-created", "PATCHSET_CREATED"},
		{"Comment-Added", "COMMENT_ADDED"},
		{"PATCHSET_CREATED", "PATCHSET_CREATED"},
		{"not-a-hook", "NOT_A_HOOK"},
		{"", ""},
		{"--", "__"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestCatalog(t *testing.T) {
	assert.Equal(t, 16, Len())
	assert.Len(t, All(), Len())

	all := All()
	all[0] = "MUTATED"
	assert.Equal(t, RefUpdate, All()[0], "All must return a copy")

	seen := make(map[Hook]bool)
	for h := range Seq() {
		assert.False(t, seen[h], "duplicate hook %s", h)
		seen[h] = true
	}
	assert.Len(t, seen, Len())

	// Seq is restartable.
	count := 0
	for range Seq() {
		count++
	}
	assert.Equal(t, Len(), count)
}

func TestSeqStopsEarly(t *testing.T) {
	var got []Hook
	for h := range Seq() {
		got = append(got, h)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []Hook{RefUpdate, CommitReceived, Submit}, got)
}

func TestContains(t *testing.T) {
	assert.True(t, Contains("PATCHSET_CREATED"))
	assert.True(t, Contains("CHANGE_DELETED"))
	assert.False(t, Contains("patchset-created"), "Contains takes canonical names")
	assert.False(t, Contains("BOGUS"))
	assert.False(t, Contains(""))
}

func TestLookup(t *testing.T) {
	h, ok := Lookup("hashtags-changed")
	require.True(t, ok)
	assert.Equal(t, HashtagsChanged, h)

	h, ok = Lookup("CLA_SIGNED")
	require.True(t, ok)
	assert.Equal(t, ClaSigned, h)

	_, ok = Lookup("hashtag-changed")
	assert.False(t, ok)
}

func TestExternal(t *testing.T) {
	assert.Equal(t, "patchset-created", PatchsetCreated.External())
	assert.Equal(t, "submit", Submit.External())
	assert.Equal(t, "cla-signed", ClaSigned.External())
	assert.Contains(t, Names(), "ref-updated")
}

func TestNameFromToken(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"patchset-created", "patchset-created"},
		{"/usr/local/hooks/patchset-created.py", "patchset-created"},
		{"hooks/comment-added", "comment-added"},
		{"./change-merged.sh", "change-merged"},
		{"archive.tar.gz", "archive.tar"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, NameFromToken(tt.token))
		})
	}
}
