package compose

import (
	"fmt"
	"strconv"
	"strings"

	"support-assistant/internal/enrich"
	"support-assistant/internal/intent"
	"support-assistant/internal/order"
)

// Currency values carry a fixed symbol prefix; all other numbers render
// unformatted.
func rupees(v float64) string {
	return "₹" + strconv.FormatFloat(v, 'f', -1, 64)
}

// renderCustomer fills the fixed per-intent template with loyalty fields.
func renderCustomer(in intent.Intent, rec *enrich.CustomerRecord) string {
	switch in {
	case intent.CreditsBalance:
		return fmt.Sprintf(
			"Hi %s, you have %s health credits available. You have earned %s in total and %s have expired.",
			rec.Name, rupees(rec.AvailableCredits), rupees(rec.EarnedCredits), rupees(rec.ExpiredCredits),
		)

	case intent.TransactionHistory:
		if len(rec.Transactions) == 0 {
			return fmt.Sprintf("Hi %s, no transactions were found on your account.", rec.Name)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Hi %s, here is your transaction history:\n", rec.Name)
		for _, t := range rec.Transactions {
			fmt.Fprintf(&b, "- %s: %s available, %s earned", t.BusinessUnit, rupees(t.AvailableCredits), rupees(t.EarnedCredits))
			if t.TransactionDate != "" {
				fmt.Fprintf(&b, " (%s)", t.TransactionDate)
			}
			b.WriteString("\n")
		}
		return strings.TrimRight(b.String(), "\n")

	case intent.TierStatus:
		return fmt.Sprintf("Hi %s, you are currently a %s member.", rec.Name, rec.Tier)

	default: // intent.ProfileInfo
		return fmt.Sprintf(
			"Name: %s\nTier: %s\nAvailable credits: %s\nEarned credits: %s\nExpired credits: %s",
			rec.Name, rec.Tier, rupees(rec.AvailableCredits), rupees(rec.EarnedCredits), rupees(rec.ExpiredCredits),
		)
	}
}

// orderContext renders the order record as the labeled block fed to the
// generation provider. Cancellation Reason is always present, even when the
// order is not cancelled, so the model can state that explicitly.
func orderContext(orderID string, s *order.Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Order ID:** %s\n\n", orderID)

	reason := "None"
	if s.CancellationReason != nil && *s.CancellationReason != "" {
		reason = *s.CancellationReason
	}
	fmt.Fprintf(&b, "**Cancellation Reason:** %s\n\n", reason)

	b.WriteString("**Items:**\n")
	if len(s.Items) == 0 {
		b.WriteString("* No items found for this order.\n")
		return b.String()
	}
	for _, item := range s.Items {
		fmt.Fprintf(&b, "* **%s** (SKU: %s)\n", orNA(item.Name), orNA(item.SKU))
		fmt.Fprintf(&b, "    * Requested Quantity: %d\n", item.RequestedQuantity)
		fmt.Fprintf(&b, "    * Approved Quantity: %d\n", item.ApprovedQuantity)
	}
	return b.String()
}

// customerContext renders loyalty fields as labeled lines for free-form
// questions answered by the generation provider.
func customerContext(rec *enrich.CustomerRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Tier: %s\n", rec.Tier)
	fmt.Fprintf(&b, "Available Credits: %s\n", rupees(rec.AvailableCredits))
	fmt.Fprintf(&b, "Earned Credits: %s\n", rupees(rec.EarnedCredits))
	fmt.Fprintf(&b, "Expired Credits: %s\n", rupees(rec.ExpiredCredits))
	if len(rec.Transactions) > 0 {
		b.WriteString("Transactions:\n")
		for _, t := range rec.Transactions {
			fmt.Fprintf(&b, "- %s: %s available, %s earned\n", t.BusinessUnit, rupees(t.AvailableCredits), rupees(t.EarnedCredits))
		}
	}
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
