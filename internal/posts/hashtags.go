// internal/posts/hashtags.go

package posts

import "regexp"

// hashtagPattern matches '#' followed by one or more word characters.
var hashtagPattern = regexp.MustCompile(`#\w+`)

// ExtractHashtags scans content for hashtag tokens and returns them without
// the leading '#', in first-occurrence order. Duplicates are retained as
// found; extraction is a pure function of the content, so re-extracting
// from a stored body yields the stored sequence.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllString(content, -1)
	tags := make([]string, 0, len(matches))
	for _, match := range matches {
		tags = append(tags, match[1:])
	}
	return tags
}
