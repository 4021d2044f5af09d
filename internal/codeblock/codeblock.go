// Package codeblock implements fenced code block detection over model output.
package codeblock

import (
	"regexp"
	"strings"
)

var fence = regexp.MustCompile("(?s)```(.*?)```")

// Strip removes every fenced block, leaving the surrounding prose. Replies
// are stripped before speech synthesis so code is never read aloud.
func Strip(text string) string {
	return fence.ReplaceAllString(text, "")
}

// ExtractFirst returns the trimmed contents of the first fenced block, or
// ok=false when the text contains none.
func ExtractFirst(text string) (string, bool) {
	m := fence.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}
