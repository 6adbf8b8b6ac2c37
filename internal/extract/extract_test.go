package extract

import "testing"

func TestExtract_OrderID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"What is my cancellation reason for order 1234567?", "1234567"},
		{"order 123456789012 please", "123456789012"},
		{"ids 1234567 and 7654321", "1234567"},
	}
	for _, tc := range cases {
		id := Extract(tc.in)
		if id.Kind != KindOrderID {
			t.Fatalf("%q: expected order id, got %v", tc.in, id.Kind)
		}
		if id.Value != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, id.Value)
		}
	}
}

func TestExtract_SixDigitsIsNotAnOrderID(t *testing.T) {
	id := Extract("order 123456")
	if !id.IsZero() {
		t.Fatalf("6 digits must not extract, got %v %q", id.Kind, id.Value)
	}
}

func TestExtract_OrderRuleWinsOverPhoneShape(t *testing.T) {
	// A 10-digit mobile-shaped run is also a 7+ digit run; the order rule
	// is checked first on the generic path.
	id := Extract("balance for 9876543210")
	if id.Kind != KindOrderID || id.Value != "9876543210" {
		t.Fatalf("expected order-id priority, got %v %q", id.Kind, id.Value)
	}
}

func TestPhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"balance for 9876543210", "9876543210"},
		{"+919876543210", "9876543210"},
		{"call me on 09876543210", "9876543210"},
		{"my number is 6123456789.", "6123456789"},
	}
	for _, tc := range cases {
		got, ok := Phone(tc.in)
		if !ok {
			t.Fatalf("%q: expected phone", tc.in)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestPhone_ElevenDigitsNeedExactPrefix(t *testing.T) {
	// 11 digits with an unknown prefix digit: the trailing ten digits alone
	// must not be treated as a phone number.
	if p, ok := Phone("19876543210"); ok {
		t.Fatalf("expected no phone, got %q", p)
	}
	// A 0-prefixed 11-digit run matches the prefix pattern exactly.
	if p, ok := Phone("09876543210"); !ok || p != "9876543210" {
		t.Fatalf("expected stripped phone, got %q %v", p, ok)
	}
	// Not starting with 6-9 after the prefix: no match.
	if _, ok := Phone("call 1234567890"); ok {
		t.Fatalf("expected no phone for 1xx number")
	}
}

func TestExtract_None(t *testing.T) {
	for _, in := range []string{"", "hello there", "order 12345"} {
		if id := Extract(in); !id.IsZero() {
			t.Fatalf("%q: expected none, got %v %q", in, id.Kind, id.Value)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"9876543210", "9876543210", true},
		{"+919876543210", "9876543210", true},
		{"09876543210", "9876543210", true},
		{"98765432", "", false},
		{"phone 9876543210", "", false},
		{"1234567890", "", false},
	}
	for _, tc := range cases {
		got, ok := NormalizePhone(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("%q: got %q %v, want %q %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExtract_Pure(t *testing.T) {
	in := "order 1234567 for 9876543210"
	a := Extract(in)
	b := Extract(in)
	if a != b {
		t.Fatalf("extraction must be deterministic: %v vs %v", a, b)
	}
}
