package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Jefferson1994/AppControlBarberias/internal/model"
)

// SRIInvoicePayload is sent to the SRI sidecar, which owns the certificate
// handling and SOAP conversation with the tax authority.
type SRIInvoicePayload struct {
	ReceiptNumber string          `json:"receipt_number"`
	BusinessName  string          `json:"business_name"`
	Establishment string          `json:"establishment_code"`
	Subtotal      string          `json:"subtotal"`
	Tax           string          `json:"tax"`
	Total         string          `json:"total"`
	IssuedAt      string          `json:"issued_at"`
	Lines         []SRILinePayload `json:"lines"`
}

type SRILinePayload struct {
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Subtotal    string `json:"subtotal"`
}

// SRIResponse is the sidecar's answer after the authority processed the
// invoice.
type SRIResponse struct {
	Authorization string `json:"authorization"`
	Status        string `json:"status"` // "authorized" | "rejected"
	Message       string `json:"message"`
}

// SRIClient files formal invoices through the sidecar. Calls run through a
// circuit breaker so a dead sidecar fast-fails sales instead of stalling them
// on the full HTTP timeout.
type SRIClient struct {
	sidecarURL string
	httpClient *http.Client
	breaker    *CircuitBreaker
}

func NewSRIClient(sidecarURL string, timeout time.Duration) *SRIClient {
	return &SRIClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker:    NewCircuitBreaker(DefaultCBConfig()),
	}
}

// BreakerState exposes the breaker for the health endpoint.
func (c *SRIClient) BreakerState() string { return c.breaker.State().String() }

// FileInvoice submits the invoice and returns the authority's authorization
// number. Any error means the invoice was not authorized.
func (c *SRIClient) FileInvoice(ctx context.Context, sale *model.Sale, business *model.Business) (string, error) {
	establishment := ""
	if business.EstablishmentCode != nil {
		establishment = *business.EstablishmentCode
	}
	payload := SRIInvoicePayload{
		ReceiptNumber: sale.ReceiptNumber,
		BusinessName:  business.Name,
		Establishment: establishment,
		Subtotal:      sale.Subtotal.StringFixed(2),
		Tax:           sale.Tax.StringFixed(2),
		Total:         sale.Total.StringFixed(2),
		IssuedAt:      sale.IssuedAt.Format(time.RFC3339),
	}
	for _, line := range sale.Lines {
		payload.Lines = append(payload.Lines, SRILinePayload{
			Description: line.ItemName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice.StringFixed(2),
			Subtotal:    line.Subtotal.StringFixed(2),
		})
	}

	var result SRIResponse
	err := c.breaker.Execute(func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("sri: marshal payload: %w", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/invoices", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("sri: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sri: sidecar unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("sri: sidecar returned %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("sri: decode response: %w", err)
		}
		if result.Status != "authorized" {
			return fmt.Errorf("sri: invoice rejected: %s", result.Message)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return result.Authorization, nil
}
