package intent

import (
	"regexp"
	"strings"
)

// Intent is the response category selected for a support query.
type Intent string

const (
	Greeting           Intent = "greeting"
	CancellationReason Intent = "cancellation_reason"
	OrderSummary       Intent = "order_summary"
	CreditsBalance     Intent = "credits_balance"
	TransactionHistory Intent = "transaction_history"
	TierStatus         Intent = "tier_status"
	ProfileInfo        Intent = "profile_info"
	General            Intent = "general"
)

// NeedsCustomer reports whether the intent is answered from the
// customer/loyalty provider (keyed by mobile number).
func (i Intent) NeedsCustomer() bool {
	switch i {
	case CreditsBalance, TransactionHistory, TierStatus, ProfileInfo:
		return true
	default:
		return false
	}
}

// greetings match only at the start of the message. A bare "hi" must
// short-circuit to the capability menu, but "can you help me reset my
// password" is a real question, not a greeting.
var greetings = []string{"hi", "hello", "hey", "who are you", "help"}

// rules are evaluated top to bottom; the first hit wins.
var rules = []struct {
	intent  Intent
	pattern *regexp.Regexp
}{
	{CancellationReason, keywords("cancellation reason")},
	{OrderSummary, keywords("summary")},
	{CreditsBalance, keywords("credit", "credits", "points", "balance")},
	{TransactionHistory, keywords("transaction", "transactions", "purchase", "purchases", "history", "bought")},
	{TierStatus, keywords("tier", "status", "level")},
	{ProfileInfo, keywords("profile", "my details", "my account")},
}

func keywords(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

// Classify maps free text to an Intent. Case-insensitive, pure, total;
// unrecognized text falls through to General.
func Classify(text string) Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	if isGreeting(lower) {
		return Greeting
	}
	for _, r := range rules {
		if r.pattern.MatchString(lower) {
			return r.intent
		}
	}
	return General
}

func isGreeting(lower string) bool {
	for _, g := range greetings {
		if lower == g {
			return true
		}
		if strings.HasPrefix(lower, g) {
			rest := lower[len(g):]
			// "hi there" yes, "history" no.
			if rest == "" || !isLetter(rest[0]) {
				return true
			}
		}
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
