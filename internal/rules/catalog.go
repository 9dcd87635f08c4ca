package rules

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/seanhalberthal/uncomment/internal/types"
)

var labelOverrides = map[string]string{
	"cpp":    "C++",
	"csharp": "C#",
	"vbnet":  "VB.NET",
}

// Label returns the display name for a language id.
func Label(id string) string {
	if label, ok := labelOverrides[id]; ok {
		return label
	}
	r, size := utf8.DecodeRuneInString(id)
	if r == utf8.RuneError {
		return id
	}
	return string(unicode.ToUpper(r)) + id[size:]
}

// Languages lists the selectable languages, excluding aliases, sorted by id.
func (t Table) Languages() []types.Language {
	langs := make([]types.Language, 0, len(t))
	for _, id := range t.IDs() {
		if t[id].IsAlias() {
			continue
		}
		langs = append(langs, types.Language{Value: id, Label: Label(id)})
	}
	return langs
}

// LabelFor returns the catalog label for a listed language, or the id itself.
func (t Table) LabelFor(id string) string {
	if entry, ok := t[id]; ok && !entry.IsAlias() {
		return Label(id)
	}
	return id
}

// Normalize trims and lower-cases a user-supplied language id.
func Normalize(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
