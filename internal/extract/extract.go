package extract

import "regexp"

// Kind discriminates what Extract found in the text.
type Kind int

const (
	KindNone Kind = iota
	KindOrderID
	KindPhone
)

func (k Kind) String() string {
	switch k {
	case KindOrderID:
		return "order_id"
	case KindPhone:
		return "phone"
	default:
		return "none"
	}
}

// Identifier is the single identifier extracted from a query.
// Value is empty iff Kind is KindNone.
type Identifier struct {
	Kind  Kind
	Value string
}

func (id Identifier) IsZero() bool { return id.Kind == KindNone }

var (
	// Order IDs are any run of 7+ digits on word boundaries. No upper bound.
	orderIDPattern = regexp.MustCompile(`\b(\d{7,})\b`)

	// Indian mobile numbers: 10 digits starting 6-9, optionally prefixed
	// with +91 or a single leading 0. The prefix is stripped on return.
	// The guards keep the match from starting or ending mid-digit-run, so
	// an 11-digit number only yields a phone via an exact prefix match.
	phonePattern = regexp.MustCompile(`(?:^|[^0-9+])(?:\+91|0)?([6-9][0-9]{9})(?:[^0-9]|$)`)

	// Same shape anchored to the whole string, for caller-supplied numbers.
	phoneExactPattern = regexp.MustCompile(`^(?:\+91|0)?([6-9][0-9]{9})$`)
)

// Extract scans free text for an identifier. The order-ID rule is checked
// first; the phone rule only applies when no 7+ digit run exists. Total over
// all inputs, including the empty string.
func Extract(text string) Identifier {
	if id, ok := OrderID(text); ok {
		return Identifier{Kind: KindOrderID, Value: id}
	}
	if p, ok := Phone(text); ok {
		return Identifier{Kind: KindPhone, Value: p}
	}
	return Identifier{}
}

// OrderID returns the first 7+ digit run in text.
func OrderID(text string) (string, bool) {
	m := orderIDPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Phone returns the first mobile number in text, normalized to its bare
// 10 digits.
func Phone(text string) (string, bool) {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// NormalizePhone validates a caller-supplied number and strips any +91 or
// leading-zero prefix. Unlike Phone it requires the whole value to be a
// phone number.
func NormalizePhone(raw string) (string, bool) {
	m := phoneExactPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}
