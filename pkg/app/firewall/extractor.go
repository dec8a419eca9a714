package firewall

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// FindObject returns the first balanced {...} span in text. Braces inside
// JSON string literals, including escaped quotes, are ignored. A start brace
// that never closes is skipped in favour of the next one.
func FindObject(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end, ok := matchBrace(text, start); ok {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ExtractAnalysis pulls the structured verdict out of a Tier-2 response.
// Every failure wraps verdict.ErrAnalysisParse; no default verdict is ever
// substituted.
func ExtractAnalysis(raw string) (*verdict.AnalysisResult, error) {
	span, ok := FindObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response: %s", verdict.ErrAnalysisParse, preview(raw))
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.Parse(span)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verdict.ErrAnalysisParse, err)
	}
	obj, err := v.Object()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verdict.ErrAnalysisParse, err)
	}

	rawVerdict := stringField(obj.Get("verdict"))
	if rawVerdict == "" {
		return nil, fmt.Errorf("%w: missing verdict", verdict.ErrAnalysisParse)
	}
	vd, err := verdict.Parse(rawVerdict)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", verdict.ErrAnalysisParse, err)
	}

	sanitised := stringField(obj.Get("sanitised_version"))
	if sanitised == "" {
		sanitised = stringField(obj.Get("sanitized_version"))
	}

	return &verdict.AnalysisResult{
		Verdict:          vd,
		AttackType:       strings.TrimSpace(stringField(obj.Get("attack_type"))),
		Severity:         strings.ToUpper(strings.TrimSpace(stringField(obj.Get("severity")))),
		Confidence:       confidenceField(obj.Get("confidence")),
		Explanation:      stringField(obj.Get("explanation")),
		SanitisedVersion: sanitised,
	}, nil
}

func stringField(v *fastjson.Value) string {
	if v == nil {
		return ""
	}
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNull:
		return ""
	default:
		return v.String()
	}
}

// confidenceField accepts 0.8, "0.8" and "80%". Unreadable values are 0.
func confidenceField(v *fastjson.Value) float64 {
	if v == nil {
		return 0
	}
	switch v.Type() {
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeString:
		s := strings.TrimSpace(string(v.GetStringBytes()))
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSuffix(s, "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		if percent {
			f /= 100
		}
		return f
	default:
		return 0
	}
}

func preview(s string) string {
	const max = 200
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
