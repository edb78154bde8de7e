// Package notify sends the order confirmation e-mail.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/checkout"
	"github.com/ALABAMARKETPLACE/Alabamarket-Dev-sub000/internal/money"
)

var ErrNoRecipient = errors.New("no recipient address")

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type Mailer struct {
	client   sender
	from     string
	fromName string
	logger   *log.Logger
}

// NewMailer returns a Mailer. With an empty apiKey it logs instead of sending.
func NewMailer(apiKey, from string, logger *log.Logger) *Mailer {
	m := &Mailer{from: from, fromName: "Alabamarket", logger: logger}
	if apiKey != "" {
		m.client = sendgrid.NewSendClient(apiKey)
	}
	return m
}

func (m *Mailer) OrderConfirmation(ctx context.Context, d checkout.OrderDraft, out checkout.Outcome) error {
	to := strings.TrimSpace(d.Email)
	if to == "" {
		return ErrNoRecipient
	}
	subject := fmt.Sprintf("Your Alabamarket order %s", out.Reference)
	if m.client == nil {
		m.logger.Printf("mail disabled, skipping confirmation to=%s ref=%s", to, out.Reference)
		return nil
	}

	text := confirmationText(d, out)
	msg := mail.NewSingleEmail(
		mail.NewEmail(m.fromName, m.from),
		subject,
		mail.NewEmail(d.Address.FullName, to),
		text,
		"<pre>"+html.EscapeString(text)+"</pre>",
	)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d body=%s", resp.StatusCode, resp.Body)
	}
	m.logger.Printf("confirmation sent status=%d to=%s ref=%s", resp.StatusCode, to, out.Reference)
	return nil
}

func confirmationText(d checkout.OrderDraft, out checkout.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order.\n\nReference: %s\n", out.Reference)
	switch out.Flow {
	case checkout.FlowCOD:
		b.WriteString("Payment: cash on delivery\n")
	default:
		b.WriteString("Payment: paid online\n")
	}
	fmt.Fprintf(&b, "Total: %s %.2f\n", d.Payment.Currency, money.ToMajor(d.Payment.AmountMinor))
	if d.DeliveryChargeMinor > 0 {
		fmt.Fprintf(&b, "Delivery: %s %.2f\n", d.Payment.Currency, money.ToMajor(d.DeliveryChargeMinor))
	}

	b.WriteString("\nOrders:\n")
	for _, so := range out.Orders {
		if strings.EqualFold(so.Status, "failed") {
			continue
		}
		fmt.Fprintf(&b, "  - %s (%s)\n", so.OrderID, so.Status)
	}
	if len(out.PartialFailures) > 0 {
		fmt.Fprintf(&b, "\n%d item group(s) could not be ordered and will be refunded.\n", len(out.PartialFailures))
	}

	a := d.Address
	fmt.Fprintf(&b, "\nDelivering to:\n  %s\n  %s\n  %s, %s, %s\n", a.FullName, a.Street, a.City, a.State, a.Country)
	return b.String()
}
