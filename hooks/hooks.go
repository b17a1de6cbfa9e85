// Package hooks is the catalog of Gerrit hook types.
//
// Every hook has a canonical identifier (PATCHSET_CREATED), used as the key
// into the flag catalog, and an external name (patchset-created), which is
// the name Gerrit gives the hook script on disk.
package hooks

import (
	"iter"
	"path/filepath"
	"slices"
	"strings"
)

// Hook is the canonical identifier of a Gerrit hook type.
type Hook string

const (
	RefUpdate       Hook = "REF_UPDATE"
	CommitReceived  Hook = "COMMIT_RECEIVED"
	Submit          Hook = "SUBMIT"
	PatchsetCreated Hook = "PATCHSET_CREATED"
	CommentAdded    Hook = "COMMENT_ADDED"
	ChangeMerged    Hook = "CHANGE_MERGED"
	ChangeAbandoned Hook = "CHANGE_ABANDONED"
	ChangeDeleted   Hook = "CHANGE_DELETED"
	ChangeRestored  Hook = "CHANGE_RESTORED"
	RefUpdated      Hook = "REF_UPDATED"
	ProjectCreated  Hook = "PROJECT_CREATED"
	ReviewerAdded   Hook = "REVIEWER_ADDED"
	ReviewerDeleted Hook = "REVIEWER_DELETED"
	TopicChanged    Hook = "TOPIC_CHANGED"
	HashtagsChanged Hook = "HASHTAGS_CHANGED"
	ClaSigned       Hook = "CLA_SIGNED"
)

var catalog = []Hook{
	RefUpdate,
	CommitReceived,
	Submit,
	PatchsetCreated,
	CommentAdded,
	ChangeMerged,
	ChangeAbandoned,
	ChangeDeleted,
	ChangeRestored,
	RefUpdated,
	ProjectCreated,
	ReviewerAdded,
	ReviewerDeleted,
	TopicChanged,
	HashtagsChanged,
	ClaSigned,
}

// String returns the canonical identifier.
func (h Hook) String() string {
	return string(h)
}

// External returns the hyphenated name Gerrit uses for the hook script.
func (h Hook) External() string {
	return strings.ToLower(strings.ReplaceAll(string(h), "_", "-"))
}

// Known reports whether h is in the catalog.
func (h Hook) Known() bool {
	return slices.Contains(catalog, h)
}

// All returns every hook in catalog order. The slice is a copy.
func All() []Hook {
	return slices.Clone(catalog)
}

// Seq yields every hook in catalog order. It may be ranged over any number of times.
func Seq() iter.Seq[Hook] {
	return func(yield func(Hook) bool) {
		for _, h := range catalog {
			if !yield(h) {
				return
			}
		}
	}
}

// Len returns the number of known hooks.
func Len() int {
	return len(catalog)
}

// Contains reports whether name is a canonical hook identifier.
// It never fails; unknown names simply return false.
func Contains(name string) bool {
	return Hook(name).Known()
}

// Lookup resolves a hook name given in either canonical or external form.
func Lookup(name string) (Hook, bool) {
	h := Hook(Normalize(name))
	if !h.Known() {
		return "", false
	}
	return h, true
}

// Names returns the external names of all hooks in catalog order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for _, h := range catalog {
		names = append(names, h.External())
	}
	return names
}

// Normalize converts an external hook name into canonical form by
// upper-casing it and replacing every hyphen with an underscore.
// Any string is accepted.
func Normalize(raw string) string {
	return strings.ReplaceAll(strings.ToUpper(raw), "-", "_")
}

// NameFromToken extracts the candidate hook name from a hook-type token.
// A token may be a bare name or a path to a hook script, in which case
// the final path element without its extension is used.
func NameFromToken(token string) string {
	base := filepath.Base(token)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
