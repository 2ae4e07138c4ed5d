package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"storefront/internal/config"
	"storefront/internal/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

// sender is satisfied by *gomail.Dialer.
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Mailer struct {
	sender   sender
	from     string
	fromName string
	logger   zerolog.Logger
}

func NewMailer(cfg config.Mail, logger zerolog.Logger) *Mailer {
	var dialer *gomail.Dialer
	if cfg.Provider == "gmail" {
		dialer = gomail.NewDialer("smtp.gmail.com", 587, cfg.GmailUser, cfg.GmailPass)
		logger.Info().Msg("Email transporter initialized with Gmail")
	} else {
		dialer = gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
		logger.Info().Str("host", cfg.SMTPHost).Int("port", cfg.SMTPPort).Msg("Email transporter initialized with custom SMTP")
	}
	return newMailer(dialer, cfg.From, cfg.FromName, logger)
}

func newMailer(s sender, from, fromName string, logger zerolog.Logger) *Mailer {
	return &Mailer{
		sender:   s,
		from:     from,
		fromName: fromName,
		logger:   logger,
	}
}

func (m *Mailer) OrderConfirmation(_ context.Context, order *models.Order) error {
	return m.send(order, "Order Confirmation - "+order.Reference, "confirmation")
}

func (m *Mailer) PaymentReceipt(_ context.Context, order *models.Order) error {
	return m.send(order, "Payment Receipt - "+order.Reference, "receipt")
}

func (m *Mailer) StatusChanged(_ context.Context, order *models.Order) error {
	return m.send(order, "Order Update - "+order.Reference, "status")
}

func (m *Mailer) send(order *models.Order, subject, tmpl string) error {
	data := newEmailData(order, m.fromName)

	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, tmpl, data); err != nil {
		return fmt.Errorf("render %s text: %w", tmpl, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, tmpl, data); err != nil {
		return fmt.Errorf("render %s html: %w", tmpl, err)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text.String())
	msg.AddAlternative("text/html", html.String())

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("send %s email to %s: %w", tmpl, order.Email, err)
	}

	m.logger.Info().Str("email", order.Email).Str("reference", order.Reference).Str("template", tmpl).Msg("Email sent")
	return nil
}

type emailData struct {
	Reference string
	Email     string
	Amount    string
	Status    string
	Date      string
	ProductID string
	StoreName string
	Year      int
}

func newEmailData(order *models.Order, storeName string) emailData {
	d := emailData{
		Reference: order.Reference,
		Email:     order.Email,
		Amount:    FormatNaira(order.Amount),
		Status:    strings.ToUpper(string(order.Status)),
		Date:      order.CreatedAt.Format("02 Jan 2006, 15:04"),
		StoreName: storeName,
		Year:      time.Now().Year(),
	}
	if order.ProductID != nil {
		d.ProductID = fmt.Sprint(*order.ProductID)
	}
	return d
}

// FormatNaira renders an amount like ₦5,000.00.
func FormatNaira(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + "₦" + b.String() + "." + frac
}

var textTemplates = texttemplate.Must(texttemplate.New("").Parse(`
{{define "confirmation"}}ORDER CONFIRMED!

Dear Customer,

Thank you for your purchase! Your order has been confirmed and payment received successfully.

ORDER DETAILS:
--------------
Order Reference: {{.Reference}}
Amount Paid: {{.Amount}}
Status: {{.Status}}
Date: {{.Date}}
{{if .ProductID}}Product ID: {{.ProductID}}
{{end}}
We're processing your order and will notify you once it's ready for delivery.

Best regards,
{{.StoreName}} Team
{{end}}
{{define "receipt"}}PAYMENT RECEIPT

Dear Customer,

This is your official payment receipt for order {{.Reference}}.

Receipt Number: {{.Reference}}
Payment Date: {{.Date}}
Customer Email: {{.Email}}
Payment Method: Paystack
Payment Status: {{.Status}}

TOTAL PAID: {{.Amount}}

Please keep this receipt for your records.

{{.StoreName}} Team
{{end}}
{{define "status"}}ORDER UPDATE

Dear Customer,

The status of your order {{.Reference}} is now {{.Status}}.

Amount: {{.Amount}}

{{.StoreName}} Team
{{end}}
`))

var htmlTemplates = htmltemplate.Must(htmltemplate.New("").Parse(`
{{define "layout-start"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.StoreName}}</title></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">{{end}}
{{define "layout-end"}}<p style="text-align: center; color: #666; font-size: 12px;">This is an automated email. Please do not reply to this message.<br>&copy; {{.Year}} {{.StoreName}}. All rights reserved.</p>
</body></html>{{end}}
{{define "confirmation"}}{{template "layout-start" .}}
<h1 style="background-color: #4CAF50; color: white; padding: 20px; text-align: center;">Order Confirmed!</h1>
<p>Dear Customer,</p>
<p>Thank you for your purchase! Your order has been confirmed and payment received successfully.</p>
<table>
<tr><td><b>Order Reference:</b></td><td>{{.Reference}}</td></tr>
<tr><td><b>Amount Paid:</b></td><td>{{.Amount}}</td></tr>
<tr><td><b>Status:</b></td><td>{{.Status}}</td></tr>
<tr><td><b>Date:</b></td><td>{{.Date}}</td></tr>
{{if .ProductID}}<tr><td><b>Product ID:</b></td><td>{{.ProductID}}</td></tr>{{end}}
</table>
<p>We're processing your order and will notify you once it's ready for delivery.</p>
<p>Best regards,<br><strong>{{.StoreName}} Team</strong></p>
{{template "layout-end" .}}{{end}}
{{define "receipt"}}{{template "layout-start" .}}
<h1 style="background-color: #2196F3; color: white; padding: 20px; text-align: center;">Payment Receipt</h1>
<p>This is your official payment receipt for order <strong>{{.Reference}}</strong>.</p>
<table>
<tr><td><b>Receipt Number:</b></td><td>{{.Reference}}</td></tr>
<tr><td><b>Payment Date:</b></td><td>{{.Date}}</td></tr>
<tr><td><b>Customer Email:</b></td><td>{{.Email}}</td></tr>
<tr><td><b>Payment Method:</b></td><td>Paystack</td></tr>
<tr><td><b>Payment Status:</b></td><td>{{.Status}}</td></tr>
</table>
<p style="font-size: 24px; font-weight: bold; color: #2196F3; text-align: center;">TOTAL PAID: {{.Amount}}</p>
<p>Please keep this receipt for your records.</p>
{{template "layout-end" .}}{{end}}
{{define "status"}}{{template "layout-start" .}}
<h1 style="background-color: #607D8B; color: white; padding: 20px; text-align: center;">Order Update</h1>
<p>The status of your order <strong>{{.Reference}}</strong> is now <strong>{{.Status}}</strong>.</p>
<p>Amount: {{.Amount}}</p>
{{template "layout-end" .}}{{end}}
`))
