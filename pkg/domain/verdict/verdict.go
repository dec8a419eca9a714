package verdict

import (
	"fmt"
	"strings"
)

// Verdict is the final, authoritative outcome for one prompt.
type Verdict string

const (
	Allow    Verdict = "ALLOW"
	Block    Verdict = "BLOCK"
	Sanitise Verdict = "SANITISE"
)

// Parse maps free text onto a Verdict. SANITIZE is accepted as SANITISE.
func Parse(s string) (Verdict, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(Allow):
		return Allow, nil
	case string(Block):
		return Block, nil
	case string(Sanitise), "SANITIZE":
		return Sanitise, nil
	default:
		return "", fmt.Errorf("unknown verdict %q", s)
	}
}

// Action is the lowercase form returned to callers ("allow", "block", "sanitise").
func (v Verdict) Action() string {
	return strings.ToLower(string(v))
}

func (v Verdict) IsBlock() bool {
	return v == Block
}

// Label is the coarse Tier-1 classification. Only LabelSafe and
// LabelObviousAttack may short-circuit the pipeline.
type Label string

const (
	LabelSafe          Label = "SAFE"
	LabelSuspicious    Label = "SUSPICIOUS"
	LabelObviousAttack Label = "OBVIOUS_ATTACK"
)

// ObviousAttackType is the attack type recorded for Tier-1 blocks.
const ObviousAttackType = "obvious_attack"
