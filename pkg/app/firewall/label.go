package firewall

import (
	"strings"

	"github.com/NeuralTrust/PromptGuard/pkg/domain/verdict"
)

// labelPriority is checked in order; a response mentioning both
// OBVIOUS_ATTACK and SAFE is an attack.
var labelPriority = []verdict.Label{
	verdict.LabelObviousAttack,
	verdict.LabelSuspicious,
	verdict.LabelSafe,
}

// NormalizeLabel maps free-form Tier-1 output onto a label. Anything
// unrecognised is SUSPICIOUS so that ambiguity always reaches Tier-2.
func NormalizeLabel(raw string) verdict.Label {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return verdict.LabelSuspicious
	}
	for _, label := range labelPriority {
		if strings.Contains(upper, string(label)) {
			return label
		}
	}
	return verdict.LabelSuspicious
}
