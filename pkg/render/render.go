package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/kintree/pkg/family"
)

// SelectionHandler receives selection events from an interactive renderer.
type SelectionHandler interface {
	// PersonSelected is called with the id of the person the user picked.
	PersonSelected(id string)
	// SelectionCleared is called when the detail view is dismissed.
	SelectionCleared()
}

// SelectionFuncs adapts plain functions to [SelectionHandler]. Nil fields
// are ignored.
type SelectionFuncs struct {
	OnSelect func(id string)
	OnClear  func()
}

func (f SelectionFuncs) PersonSelected(id string) {
	if f.OnSelect != nil {
		f.OnSelect(id)
	}
}

func (f SelectionFuncs) SelectionCleared() {
	if f.OnClear != nil {
		f.OnClear()
	}
}

// Palette shared by the SVG chart and the terminal detail view.
const (
	ColorTeal      = "#0D7377"
	ColorBurgundy  = "#8B2635"
	ColorGold      = "#C9A227"
	ColorInk       = "#1F2933"
	ColorMuted     = "#6B7280"
	ColorCardFill  = "#FFFFFF"
	ColorCardBadge = "#E6F4F1"
)

// GenerationLabel is the badge text shown on a card.
func GenerationLabel(gen int) string {
	return fmt.Sprintf("Generation %d", gen)
}

// Lifespan formats birth and death dates for display. It returns "" when
// neither is known.
func Lifespan(p family.Person) string {
	switch {
	case p.BirthDate != "" && p.DeathDate != "":
		return p.BirthDate + " – " + p.DeathDate
	case p.BirthDate != "":
		return "b. " + p.BirthDate
	case p.DeathDate != "":
		return "d. " + p.DeathDate
	}
	return ""
}

// DisplayName returns the person's name, or the id when the name is blank.
func DisplayName(p family.Person) string {
	if strings.TrimSpace(p.Name) == "" {
		return p.ID
	}
	return p.Name
}

// Truncate shortens s to at most max runes, marking the cut with "..".
func Truncate(s string, max int) string {
	if max < 3 {
		max = 3
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-2]) + ".."
}

// EscapeXML escapes s for use in XML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
