package chat

import (
	"regexp"
)

// citationPatterns matches the inline citation markers the assistant service
// embeds in message text: file-search annotations like 【4:0†source】 and
// bracketed numeric references like [1] or [4:0†source].
var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`【[^】]*】`),
	regexp.MustCompile(`\[\d+(?::\d+)?(?:†[^\]]*)?\]`),
}

// StripCitations removes inline citation markers from assistant output.
// Applied once at extraction time.
func StripCitations(s string) string {
	for _, pattern := range citationPatterns {
		s = pattern.ReplaceAllString(s, "")
	}
	return s
}
