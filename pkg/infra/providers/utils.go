package providers

import (
	"strings"

	"github.com/mitchellh/mapstructure"
)

func FormatInstructions(instr []string) string {
	if len(instr) == 0 {
		return "[Instructions]\n"
	}

	var b strings.Builder
	b.WriteString("[Instructions]\n")
	for _, rule := range instr {
		if strings.TrimSpace(rule) == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeOptions maps the free-form provider options onto a typed struct.
func DecodeOptions(options map[string]interface{}, out interface{}) error {
	if len(options) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(options)
}

// TrimFences drops the markdown code fences some models wrap their answer in.
func TrimFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
