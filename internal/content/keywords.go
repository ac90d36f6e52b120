package content

import (
	"encoding/json"
	"strings"

	"github.com/kevinmichaelchen/folio/internal/llm"
)

// KeywordResult is either a parsed JSON list or a heuristic fallback.
type KeywordResult struct {
	Keywords []string
	Fallback bool
	Reason   string
}

var bracketQuotes = strings.NewReplacer(`"`, "", "[", "", "]", "")

// ParseKeywords reads a reply shaped like ["a", "b"]. Anything else is
// split on commas after dropping brackets and quotes.
func ParseKeywords(raw string) KeywordResult {
	trimmed := strings.TrimSpace(raw)
	body := llm.StripCodeFences(trimmed)

	var decoded any
	if err := json.Unmarshal([]byte(body), &decoded); err == nil {
		list, ok := decoded.([]any)
		if !ok {
			return KeywordResult{Keywords: single(trimmed), Fallback: true, Reason: "reply is JSON but not a list"}
		}
		keywords := make([]string, 0, len(list))
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return KeywordResult{Keywords: single(trimmed), Fallback: true, Reason: "list holds non-string values"}
			}
			keywords = append(keywords, s)
		}
		return KeywordResult{Keywords: keywords}
	}

	var keywords []string
	for _, part := range strings.Split(bracketQuotes.Replace(body), ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) == 0 {
		keywords = single(trimmed)
	}
	return KeywordResult{Keywords: keywords, Fallback: true, Reason: "reply is not valid JSON"}
}

func single(s string) []string {
	if s == "" {
		return []string{}
	}
	return []string{s}
}
