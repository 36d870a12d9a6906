package utils

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// TitleCase normalizes a display name ("jane doe" → "Jane Doe").
func TitleCase(s string) string {
	return titleCaser.String(s)
}
