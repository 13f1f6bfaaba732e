// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// ReceiptEmailData holds data for the payment receipt email.
type ReceiptEmailData struct {
	SiteName  string
	Name      string
	Amount    string // already formatted, e.g. "499.00 INR"
	OrderID   string
	PaymentID string
}

// BuildReceiptEmail creates a payment receipt with both HTML and text bodies.
func BuildReceiptEmail(to string, data ReceiptEmailData) Email {
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Payment received - %s", data.SiteName),
		TextBody: buildReceiptText(data),
		HTMLBody: buildReceiptHTML(data),
	}
}

func buildReceiptText(data ReceiptEmailData) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dear %s,\n\n", data.Name)
	fmt.Fprintf(&buf, "We have received a payment of %s.\n\n", data.Amount)
	fmt.Fprintf(&buf, "Order ID: %s\n", data.OrderID)
	fmt.Fprintf(&buf, "Payment ID: %s\n\n", data.PaymentID)
	fmt.Fprintf(&buf, "Your courses are now available in your %s dashboard.\n", data.SiteName)
	return buf.String()
}

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptHTMLTemplate))

func buildReceiptHTML(data ReceiptEmailData) string {
	var buf bytes.Buffer
	_ = receiptTmpl.Execute(&buf, data)
	return buf.String()
}

const receiptHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Payment Confirmation</title>
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Dear {{.Name}},</p>
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">
                We have received a payment of <strong>{{.Amount}}</strong>.
              </p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 16px; font-size: 14px; color: #1f2937;">
                <div>Order ID: <span style="font-family: 'Courier New', monospace;">{{.OrderID}}</span></div>
                <div>Payment ID: <span style="font-family: 'Courier New', monospace;">{{.PaymentID}}</span></div>
              </div>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">
                Your courses are now available in your dashboard.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
