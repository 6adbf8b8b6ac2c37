package compose

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"support-assistant/internal/config"
	"support-assistant/internal/enrich"
	"support-assistant/internal/extract"
	"support-assistant/internal/intent"
)

// Generator is the minimal generation-provider contract the composer needs.
type Generator interface {
	Configured() bool
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Response is the final payload for one support query. Body is serialized
// to the client as-is; for the raw-order branch it is the provider payload
// verbatim (json.RawMessage).
type Response struct {
	Status int
	Body   any
}

// Request carries everything the branch table switches on.
type Request struct {
	Query      string
	Intent     intent.Intent
	Identifier extract.Identifier

	// Enrichment is nil when no identifier was extracted.
	Enrichment *enrich.Result
}

// Composer turns (intent, enrichment outcome, query) into a Response.
type Composer struct {
	gen            Generator
	notFoundStatus int
	logger         *slog.Logger
}

func New(gen Generator, cfg config.SupportConfig, log *slog.Logger) *Composer {
	if log == nil {
		log = slog.Default()
	}
	status := cfg.NotFoundStatus
	if status == 0 {
		status = http.StatusOK
	}
	return &Composer{gen: gen, notFoundStatus: status, logger: log.With("component", "compose")}
}

const capabilityMenu = "Hello! I can help you with:\n" +
	"- Order summaries (share your order ID)\n" +
	"- Cancellation reasons for an order\n" +
	"- Your health credits balance\n" +
	"- Your transaction history\n" +
	"- Your membership tier and profile\n" +
	"Just describe what you need, including your order ID or registered mobile number."

const orderSystemInstruction = "You are a customer support agent for an online pharmacy. " +
	"Provide ACCURATE and CONCISE information directly relevant to the user's query." +
	"\n\n**Instructions:**" +
	"\n*   **Do not introduce yourself.**" +
	"\n*   **Answer based solely on the provided Order Information.**" +
	"\n*   **If the 'Cancellation Reason' is 'None' or 'N/A', state explicitly that the order is NOT cancelled.** Do NOT invent a reason." +
	"\n*   If order details are available, use them to answer the user's question." +
	"\n*   Be extremely concise. Avoid unnecessary phrases." +
	"\n*  Do not include any additional information, other than requested."

const generalSystemInstruction = "You are a customer support agent for an online pharmacy. " +
	"Provide ACCURATE and CONCISE information directly relevant to the user's query." +
	"\n\n**Instructions:**" +
	"\n*   **Do not introduce yourself.**" +
	"\n*   Be extremely concise. Avoid unnecessary phrases." +
	"\n*  Do not include any additional information, other than requested."

// Compose evaluates the branch table. Lookup outcomes short-circuit before
// any generation call: not-found and provider-error branches never reach the
// generation provider.
func (c *Composer) Compose(ctx context.Context, req Request) Response {
	if req.Intent == intent.Greeting {
		return Response{Status: http.StatusOK, Body: map[string]string{"message": capabilityMenu}}
	}

	if req.Enrichment != nil {
		switch req.Enrichment.Outcome {
		case enrich.OutcomeError:
			return Response{
				Status: http.StatusInternalServerError,
				Body:   map[string]string{"error": "Something went wrong while fetching your details. Please try again later."},
			}
		case enrich.OutcomeNotFound:
			return c.notFound(req.Identifier)
		}
		return c.found(ctx, req)
	}

	// No identifier: everything funnels into the general generation prompt.
	prompt := generalSystemInstruction + "\n\nCustomer query: " + req.Query
	return c.generate(ctx, prompt)
}

func (c *Composer) found(ctx context.Context, req Request) Response {
	res := req.Enrichment

	switch {
	case req.Intent == intent.OrderSummary && res.Order != nil:
		return Response{Status: http.StatusOK, Body: res.Order.Raw}

	case req.Intent == intent.CancellationReason && res.Order != nil:
		if res.Order.CancellationReason == nil || *res.Order.CancellationReason == "" {
			return Response{
				Status: http.StatusOK,
				Body: map[string]string{
					"message": fmt.Sprintf("No cancellation reason found for order %s.", req.Identifier.Value),
				},
			}
		}
		return Response{
			Status: http.StatusOK,
			Body: map[string]string{
				"cancellationReason": *res.Order.CancellationReason,
				"orderId":            req.Identifier.Value,
			},
		}

	case req.Intent.NeedsCustomer() && res.Customer != nil:
		return Response{
			Status: http.StatusOK,
			Body:   map[string]string{"message": renderCustomer(req.Intent, res.Customer)},
		}

	case res.Order != nil:
		// Free-form question about a known order: feed the order record to
		// the generation provider as labeled context.
		prompt := orderSystemInstruction +
			"\n\nCustomer query: " + req.Query +
			"\n\nOrder Information:\n" + orderContext(req.Identifier.Value, res.Order)
		return c.generate(ctx, prompt)

	case res.Customer != nil:
		prompt := generalSystemInstruction +
			"\n\nCustomer query: " + req.Query +
			"\n\nCustomer Information:\n" + customerContext(res.Customer)
		return c.generate(ctx, prompt)
	}

	// Found with no data attached should be unreachable; treat it like a miss.
	return c.notFound(req.Identifier)
}

func (c *Composer) notFound(id extract.Identifier) Response {
	label := "order ID"
	if id.Kind == extract.KindPhone {
		label = "mobile number"
	}
	return Response{
		Status: c.notFoundStatus,
		Body: map[string]string{
			"message": fmt.Sprintf("I couldn't find details for %s %s. Please double-check the ID.", label, id.Value),
		},
	}
}

func (c *Composer) generate(ctx context.Context, prompt string) Response {
	if !c.gen.Configured() {
		return Response{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": "Generation API key not configured"},
		}
	}
	text, err := c.gen.GenerateText(ctx, prompt)
	if err != nil {
		c.logger.Error("generation failed", "err", err)
		return Response{
			Status: http.StatusInternalServerError,
			Body:   map[string]string{"error": "Failed to process support request"},
		}
	}
	return Response{Status: http.StatusOK, Body: map[string]string{"result": text}}
}
