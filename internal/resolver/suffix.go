package resolver

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// timestampPattern matches the YYYY-MM-DDTHH_MM_SS token that the
	// renaming workflow embeds in filenames. Its digit groups must not
	// be mistaken for collision suffixes.
	timestampPattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}_\d{2}_\d{2}`)

	collisionSuffixPattern = regexp.MustCompile(`_\d+$`)
)

// hasCollisionSuffix reports whether the filename carries a numeric
// collision suffix such as _1 or _2 before the extension. When the name
// contains a timestamp token, only the part after the token is
// considered, so "2023-01-05T14_30_22.jpg" has no suffix while
// "2023-01-05T14_30_22_1.jpg" does.
func hasCollisionSuffix(path string) bool {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	loc := timestampPattern.FindStringIndex(name)
	if loc == nil {
		return collisionSuffixPattern.MatchString(name)
	}
	return collisionSuffixPattern.MatchString(name[loc[1]:])
}
