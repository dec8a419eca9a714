// Package redact masks secrets and personal data in prompt excerpts before
// they leave the process through the decision exporters.
package redact

import "regexp"

// Entity is a kind of sensitive data with its own mask.
type Entity string

const (
	JWTToken    Entity = "jwt_token"
	StripeKey   Entity = "stripe_key"
	APIKey      Entity = "api_key"
	AccessToken Entity = "access_token"
	Password    Entity = "password"
	Email       Entity = "email"
	IBAN        Entity = "iban"
	CreditCard  Entity = "credit_card"
	SSN         Entity = "ssn"
	IPAddress   Entity = "ip_address"
)

var patterns = map[Entity]*regexp.Regexp{
	JWTToken:    regexp.MustCompile(`\beyJ[a-zA-Z0-9-_]+\.eyJ[a-zA-Z0-9-_]+\.[a-zA-Z0-9-_]+\b`),
	StripeKey:   regexp.MustCompile(`(?i)\b(sk|pk|rk|whsec)_(test|live)_[a-z0-9]{24,}`),
	APIKey:      regexp.MustCompile(`(?i)(api[_-]?key|access[_-]?key)\s*[=:]\s*\S+`),
	AccessToken: regexp.MustCompile(`(?i)(access[_-]?token|bearer)\s*[=:]?\s*[A-Za-z0-9._~+/-]{16,}=*`),
	Password:    regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*\S+`),
	Email:       regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	IBAN:        regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{11,30}\b`),
	CreditCard:  regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
	SSN:         regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
	IPAddress:   regexp.MustCompile(`\b((25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
}

// Detection order matters: tokens that embed other shapes go first.
var order = []Entity{
	JWTToken,
	StripeKey,
	APIKey,
	AccessToken,
	Password,
	Email,
	IBAN,
	CreditCard,
	SSN,
	IPAddress,
}

var masks = map[Entity]string{
	JWTToken:    "[MASKED_JWT_TOKEN]",
	StripeKey:   "[MASKED_API_KEY]",
	APIKey:      "[MASKED_API_KEY]",
	AccessToken: "[MASKED_TOKEN]",
	Password:    "[MASKED_PASSWORD]",
	Email:       "[MASKED_EMAIL]",
	IBAN:        "[MASKED_IBAN]",
	CreditCard:  "[MASKED_CC]",
	SSN:         "[MASKED_SSN]",
	IPAddress:   "[MASKED_IP]",
}

type Redactor struct {
	entities []Entity
}

// New returns a redactor for the given entities, or for all known entities
// when none are given. Unknown names are ignored.
func New(entities ...Entity) *Redactor {
	if len(entities) == 0 {
		return &Redactor{entities: order}
	}
	wanted := make(map[Entity]bool, len(entities))
	for _, e := range entities {
		wanted[e] = true
	}
	r := &Redactor{}
	for _, e := range order {
		if wanted[e] {
			r.entities = append(r.entities, e)
		}
	}
	return r
}

func (r *Redactor) Redact(text string) string {
	if text == "" {
		return text
	}
	for _, e := range r.entities {
		text = patterns[e].ReplaceAllString(text, masks[e])
	}
	return text
}

func IsValid(entity string) bool {
	_, ok := patterns[Entity(entity)]
	return ok
}
