package intent

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want Intent
	}{
		{"hi", Greeting},
		{"Hello!", Greeting},
		{"hey, what can you do", Greeting},
		{"who are you", Greeting},
		{"help", Greeting},
		{"What is my cancellation reason for order 1234567?", CancellationReason},
		{"give me the summary for 1234567", OrderSummary},
		{"balance for 9876543210", CreditsBalance},
		{"how many points do I have", CreditsBalance},
		{"show my purchase history", TransactionHistory},
		{"what did I buy? transactions please", TransactionHistory},
		{"what tier am I in", TierStatus},
		{"what's my membership level", TierStatus},
		{"show my profile", ProfileInfo},
		{"can you help me reset my password", General},
		{"where is my order", General},
		{"", General},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Fatalf("%q: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestClassify_GreetingDoesNotMatchInsideWords(t *testing.T) {
	// "hi" must not fire inside "history".
	if got := Classify("history of my orders"); got != TransactionHistory {
		t.Fatalf("expected transaction_history, got %s", got)
	}
}

func TestClassify_PriorityOrder(t *testing.T) {
	// Cancellation reason outranks summary; summary outranks balance.
	if got := Classify("summary and cancellation reason please"); got != CancellationReason {
		t.Fatalf("expected cancellation_reason, got %s", got)
	}
	if got := Classify("summary of my balance"); got != OrderSummary {
		t.Fatalf("expected order_summary, got %s", got)
	}
	// Greeting beats everything.
	if got := Classify("hi, what's my balance"); got != Greeting {
		t.Fatalf("expected greeting, got %s", got)
	}
}

func TestClassify_Pure(t *testing.T) {
	in := "what is my balance"
	if Classify(in) != Classify(in) {
		t.Fatalf("classification must be deterministic")
	}
}

func TestNeedsCustomer(t *testing.T) {
	for _, i := range []Intent{CreditsBalance, TransactionHistory, TierStatus, ProfileInfo} {
		if !i.NeedsCustomer() {
			t.Fatalf("%s should need customer lookup", i)
		}
	}
	for _, i := range []Intent{Greeting, CancellationReason, OrderSummary, General} {
		if i.NeedsCustomer() {
			t.Fatalf("%s should not need customer lookup", i)
		}
	}
}
