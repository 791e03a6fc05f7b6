package worker

// Processes email jobs from QueueEmail: sends PDF receipts to customer
// emails via SMTP.

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/Jefferson1994/AppControlBarberias/internal/infra"
	"github.com/Jefferson1994/AppControlBarberias/internal/model"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail. The document
// travels base64-encoded so the envelope stays valid JSON.
type EmailJobPayload struct {
	ToEmail       string `json:"to_email"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	ReceiptNumber string `json:"receipt_number"`
	Document      string `json:"document"`
}

// EmailWorker sends receipt emails dequeued from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
}

func NewEmailWorker(mailer *infra.Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one receipt email with the PDF attached.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	document, err := base64.StdEncoding.DecodeString(payload.Document)
	if err != nil {
		log.Error().Err(err).Msg("email_worker: invalid document encoding")
		return
	}

	filename := fmt.Sprintf("receipt_%s.pdf", payload.ReceiptNumber)
	if err := w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, document, filename); err != nil {
		log.Error().Err(err).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		return
	}
	log.Info().Str("to", payload.ToEmail).Str("receipt", payload.ReceiptNumber).Msg("email_worker: receipt sent")
}

// ReceiptEnqueuer adapts the dispatcher to the sale pipeline's mailer
// contract: the pipeline hands over a sale and its rendered document, the
// actual SMTP conversation happens on the worker pool.
type ReceiptEnqueuer struct {
	dispatcher *Dispatcher
}

func NewReceiptEnqueuer(dispatcher *Dispatcher) *ReceiptEnqueuer {
	return &ReceiptEnqueuer{dispatcher: dispatcher}
}

func (e *ReceiptEnqueuer) EnqueueReceipt(ctx context.Context, to string, sale *model.Sale, document []byte) error {
	payload := EmailJobPayload{
		ToEmail:       to,
		Subject:       fmt.Sprintf("Your receipt %s", sale.ReceiptNumber),
		Body:          fmt.Sprintf("Thank you for your purchase. Receipt %s for $%s is attached.", sale.ReceiptNumber, sale.Total.StringFixed(2)),
		ReceiptNumber: sale.ReceiptNumber,
		Document:      base64.StdEncoding.EncodeToString(document),
	}
	return e.dispatcher.EnqueueEmail(ctx, payload)
}
