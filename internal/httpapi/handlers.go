package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"support-assistant/internal/audit"
	"support-assistant/internal/compose"
	"support-assistant/internal/enrich"
	"support-assistant/internal/extract"
	"support-assistant/internal/genai"
	"support-assistant/internal/intent"
	"support-assistant/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.

type Handlers struct {
	Gen      *genai.Client
	Gateway  *enrich.Gateway
	Composer *compose.Composer
	Audit    *audit.Service
}

// --- Home ---

func (h Handlers) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to this API Service!"})
}

// --- Calculate ---

type calculateRequest struct {
	Expression string `json:"expression"`
}

func (h Handlers) Calculate(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Expression == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No expression provided"})
		return
	}
	h.generateOrFail(c, "Calculate this mathematical expression: "+req.Expression, "Failed to calculate expression")
}

// --- Text ---

type textRequest struct {
	Text string `json:"text"`
}

func (h Handlers) Text(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}
	h.generateOrFail(c, req.Text, "Failed to process text")
}

// generateOrFail forwards a prompt to the generation provider and writes the
// {result} / {error} shapes shared by /calculate and /text.
func (h Handlers) generateOrFail(c *gin.Context, prompt, failureMsg string) {
	if !h.Gen.Configured() {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "API key not configured"})
		return
	}
	text, err := h.Gen.GenerateText(c.Request.Context(), prompt)
	if err != nil {
		if errors.Is(err, genai.ErrEmptyCandidates) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid response format from API"})
			return
		}
		logger.FromGin(c).Error("generation failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": failureMsg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": text})
}

// --- Support ---

type supportRequest struct {
	Text         string `json:"text"`
	MobileNumber string `json:"mobile_number"`
}

func (h Handlers) Support(c *gin.Context) {
	var req supportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Text == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No text provided"})
		return
	}

	ctx := c.Request.Context()
	queryIntent := intent.Classify(req.Text)
	identifier := h.resolveIdentifier(queryIntent, req)

	var enrichment *enrich.Result
	if !identifier.IsZero() {
		var (
			result enrich.Result
			err    error
		)
		switch identifier.Kind {
		case extract.KindOrderID:
			result, err = h.Gateway.Order(ctx, identifier.Value)
		case extract.KindPhone:
			result, err = h.Gateway.Customer(ctx, identifier.Value)
		}
		if errors.Is(err, enrich.ErrNotConfigured) {
			h.recordEvent(c, req.Text, queryIntent, identifier, "config_error", http.StatusInternalServerError)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": providerConfigError(identifier.Kind),
			})
			return
		}
		enrichment = &result
	}

	resp := h.Composer.Compose(ctx, compose.Request{
		Query:      req.Text,
		Intent:     queryIntent,
		Identifier: identifier,
		Enrichment: enrichment,
	})

	outcome := "generated"
	switch {
	case queryIntent == intent.Greeting:
		outcome = "menu"
	case enrichment != nil:
		outcome = enrichment.Outcome.String()
	}
	h.recordEvent(c, req.Text, queryIntent, identifier, outcome, resp.Status)

	c.JSON(resp.Status, resp.Body)
}

// resolveIdentifier picks the lookup key for a query. Loyalty intents expect a
// phone number: a caller-supplied mobile_number wins, then a phone found in
// the text. Everything else goes through the order-ID-first generic scan.
func (h Handlers) resolveIdentifier(queryIntent intent.Intent, req supportRequest) extract.Identifier {
	if queryIntent == intent.Greeting {
		return extract.Identifier{}
	}
	if queryIntent.NeedsCustomer() {
		if req.MobileNumber != "" {
			if mobile, ok := extract.NormalizePhone(req.MobileNumber); ok {
				return extract.Identifier{Kind: extract.KindPhone, Value: mobile}
			}
		}
		if mobile, ok := extract.Phone(req.Text); ok {
			return extract.Identifier{Kind: extract.KindPhone, Value: mobile}
		}
		return extract.Identifier{}
	}
	return extract.Extract(req.Text)
}

func providerConfigError(kind extract.Kind) string {
	if kind == extract.KindPhone {
		return "Loyalty provider credentials are not properly configured"
	}
	return "Order provider authentication token is not properly configured"
}

// recordEvent appends an audit event best-effort; failures are logged and
// never surface to the client.
func (h Handlers) recordEvent(c *gin.Context, query string, queryIntent intent.Intent, identifier extract.Identifier, outcome string, status int) {
	if h.Audit == nil {
		return
	}
	e := audit.Event{
		RequestID:      c.Writer.Header().Get("X-Request-Id"),
		Intent:         string(queryIntent),
		IdentifierKind: identifier.Kind.String(),
		Identifier:     identifier.Value,
		Outcome:        outcome,
		HTTPStatus:     status,
		Query:          query,
	}
	if err := h.Audit.Append(c.Request.Context(), e); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

// --- Admin ---

func (h Handlers) AdminRecentEvents(c *gin.Context) {
	if h.Audit == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "audit trail not configured"})
		return
	}
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	events, err := h.Audit.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.FromGin(c).Error("audit query failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "audit query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
