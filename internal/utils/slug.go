package utils

import "strings"

// Slugify derives a URL-safe slug from a display name: lower-cased, every
// run of non-alphanumeric characters collapsed to a single hyphen, and no
// leading or trailing hyphens. "Joe's Auto & Repair!!" -> "joes-auto-repair".
// Apostrophes are dropped rather than hyphenated so possessives stay joined.
func Slugify(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "'", "")
	name = strings.ReplaceAll(name, "’", "")
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
