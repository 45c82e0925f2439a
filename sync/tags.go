// ABOUTME: Back-reference tags embedded in calendar event descriptions
// ABOUTME: Builds Key:value lines on create and extracts them from event text
package sync

import (
	"regexp"
	"strings"
)

const (
	LeadTagKey = "LeadID"
	NoteTagKey = "NoteID"
)

var (
	leadTagPattern = regexp.MustCompile(LeadTagKey + `:([^\s]+)`)
	noteTagPattern = regexp.MustCompile(NoteTagKey + `:([^\s]+)`)
)

// BuildDescription joins the free text and the back-reference tags one per
// line, dropping empty segments. Identifiers must not contain whitespace.
func BuildDescription(text, leadID, noteID string) string {
	var parts []string
	if text != "" {
		parts = append(parts, text)
	}
	if leadID != "" {
		parts = append(parts, LeadTagKey+":"+leadID)
	}
	if noteID != "" {
		parts = append(parts, NoteTagKey+":"+noteID)
	}
	return strings.Join(parts, "\n")
}

// ExtractLeadID recovers the lead id tag from an event description, or "".
func ExtractLeadID(description string) string {
	return extractTag(leadTagPattern, description)
}

// ExtractNoteID recovers the note id tag from an event description, or "".
func ExtractNoteID(description string) string {
	return extractTag(noteTagPattern, description)
}

func extractTag(pattern *regexp.Regexp, description string) string {
	m := pattern.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return m[1]
}
