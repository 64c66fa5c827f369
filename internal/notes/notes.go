// Package notes merges free-text service annotations without duplicating
// semantically equivalent entries.
package notes

import (
	"regexp"
	"strings"
)

var splitRe = regexp.MustCompile(`[|\r\n]+`)

// Canonical tags for conceptually equivalent notes. Order matters: the
// extension and simultaneous-payment phrases are checked before the looser
// renewal+payment match so they are not swallowed by it.
const (
	tagExtensionWithoutPayment = "extension_without_payment"
	tagSimultaneousPayment     = "simultaneous_payment"
	tagRenewalWithPayment      = "renewal_with_payment"
)

// AddNote appends note to existing unless an equivalent entry is already
// present. Blank notes leave existing untouched.
func AddNote(existing, note string) string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return existing
	}
	if existing == "" {
		return trimmed
	}

	if _, seen := normalizeAll(existing)[normalize(trimmed)]; seen {
		return existing
	}
	return existing + " | " + trimmed
}

// CleanNotes splits, de-duplicates by normalized form, and rejoins with
// newlines. The first-seen original text and ordering survive.
func CleanNotes(notes string) string {
	if notes == "" {
		return ""
	}

	seen := map[string]struct{}{}
	var cleaned []string
	for _, part := range splitRe.Split(notes, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := normalize(part)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, part)
	}
	return strings.Join(cleaned, "\n")
}

func normalizeAll(notes string) map[string]struct{} {
	normalized := map[string]struct{}{}
	for _, part := range splitRe.Split(notes, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		normalized[normalize(part)] = struct{}{}
	}
	return normalized
}

func normalize(note string) string {
	lowered := strings.ToLower(strings.TrimSpace(note))

	switch {
	case strings.Contains(lowered, "extensión sin pago"):
		return tagExtensionWithoutPayment
	case strings.Contains(lowered, "pago simultáneo"):
		return tagSimultaneousPayment
	case strings.Contains(lowered, "renovación") && strings.Contains(lowered, "pago"):
		return tagRenewalWithPayment
	}
	return lowered
}
