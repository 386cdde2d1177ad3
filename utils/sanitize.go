package utils

import "github.com/microcosm-cc/bluemonday"

var (
	contentPolicy = bluemonday.UGCPolicy()
	titlePolicy   = bluemonday.StrictPolicy()
)

// Sanitize cleans post content, keeping the user-generated markup UGC allows.
func Sanitize(input string) string {
	return contentPolicy.Sanitize(input)
}

// SanitizeTitle strips all markup; titles are plain text.
func SanitizeTitle(input string) string {
	return titlePolicy.Sanitize(input)
}
