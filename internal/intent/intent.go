// Package intent defines the side-action categories for an utterance and the
// normalizing parse of classifier answers.
package intent

import "strings"

// Intent is the classified side-action required before generation.
type Intent int

const (
	None Intent = iota
	ExtractClipboard
	TakeScreenshot
	InsertCode
	ExplainCopiedCode
)

// labels in the canonical order the classifier is instructed to answer with.
var labels = []struct {
	text string
	in   Intent
}{
	{"extract clipboard", ExtractClipboard},
	{"take screenshot", TakeScreenshot},
	{"insert code", InsertCode},
	{"explain copied code", ExplainCopiedCode},
}

// Parse normalizes a classifier answer to an Intent. Matching is
// case-sensitive substring with the first label winning, so the answer need
// only contain a label; anything unrecognized falls open to None.
func Parse(answer string) Intent {
	for _, l := range labels {
		if strings.Contains(answer, l.text) {
			return l.in
		}
	}
	return None
}

func (i Intent) String() string {
	for _, l := range labels {
		if l.in == i {
			return l.text
		}
	}
	return "None"
}
