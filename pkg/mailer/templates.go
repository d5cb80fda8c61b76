package mailer

import (
	"fmt"
	"html/template"
	"strings"
)

// Template data for the transactional mails. Bodies share one branded
// layout with a content block swapped in.

const layoutHTML = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f6f8;font-family:Arial,Helvetica,sans-serif;">
  <div style="max-width:600px;margin:24px auto;background:#ffffff;border-radius:8px;overflow:hidden;">
    <div style="background:#0b2545;color:#ffffff;padding:20px 28px;">
      <h2 style="margin:0;">Axe Visa Technology</h2>
    </div>
    <div style="padding:28px;color:#333333;line-height:1.6;">
      {{.Content}}
    </div>
    <div style="background:#f4f6f8;color:#888888;padding:16px 28px;font-size:12px;">
      This is an automated message from Axe Visa Technology. Please do not reply directly to this email.
    </div>
  </div>
</body>
</html>`

var layoutTmpl = template.Must(template.New("layout").Parse(layoutHTML))

func render(content template.HTML) string {
	var sb strings.Builder
	// Layout is static and parsed at init, execution cannot fail on it.
	_ = layoutTmpl.Execute(&sb, struct{ Content template.HTML }{Content: content})
	return sb.String()
}

func para(format string, args ...interface{}) template.HTML {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = template.HTMLEscapeString(fmt.Sprint(a))
	}
	return template.HTML(fmt.Sprintf(format, escaped...))
}

// WelcomeEmail greets a newly registered user
func WelcomeEmail(name string) (subject, body string) {
	subject = "Welcome to Axe Visa Technology"
	body = render(para(
		`<p>Hi %s,</p>
		<p>Welcome aboard! Your account has been created successfully.</p>
		<p>You can now start a visa or passport application, track its progress, and chat with our support team any time.</p>
		<p>Safe travels,<br>The Axe Visa Team</p>`, name))
	return subject, body
}

// StatusUpdateEmail tells an applicant their case moved
func StatusUpdateEmail(name, applicationID, status string) (subject, body string) {
	subject = fmt.Sprintf("Application %s: %s", applicationID, status)
	body = render(para(
		`<p>Hi %s,</p>
		<p>The status of your application <strong>%s</strong> has been updated to:</p>
		<p style="font-size:18px;"><strong>%s</strong></p>
		<p>Log in to your dashboard for full details.</p>`, name, applicationID, status))
	return subject, body
}

// OTPEmail carries a one-time code for login or password reset
func OTPEmail(name, otp string, expiryMinutes int) (subject, body string) {
	subject = "Your Axe Visa verification code"
	body = render(para(
		`<p>Hi %s,</p>
		<p>Your one-time verification code is:</p>
		<p style="font-size:28px;letter-spacing:6px;"><strong>%s</strong></p>
		<p>This code expires in %s minutes. If you did not request it, you can ignore this email.</p>`,
		name, otp, fmt.Sprint(expiryMinutes)))
	return subject, body
}

// PaymentConfirmationEmail confirms a verified payment
func PaymentConfirmationEmail(name, paymentID, amount, currency string) (subject, body string) {
	subject = "Payment received"
	body = render(para(
		`<p>Hi %s,</p>
		<p>We have received your payment.</p>
		<p>Reference: <strong>%s</strong><br>Amount: <strong>%s %s</strong></p>
		<p>Your application has been marked as paid and will proceed to the next stage.</p>`,
		name, paymentID, currency, amount))
	return subject, body
}

// AppointmentEmail announces a scheduled appointment
func AppointmentEmail(name, applicationID, when, location string) (subject, body string) {
	subject = fmt.Sprintf("Appointment scheduled for application %s", applicationID)
	body = render(para(
		`<p>Hi %s,</p>
		<p>An appointment has been scheduled for your application <strong>%s</strong>.</p>
		<p>When: <strong>%s</strong><br>Where: <strong>%s</strong></p>
		<p>Please arrive 15 minutes early and bring your original documents.</p>`,
		name, applicationID, when, location))
	return subject, body
}

// EmergencyAckEmail acknowledges an emergency visa request
func EmergencyAckEmail(name, destination string) (subject, body string) {
	subject = "Emergency visa request received"
	body = render(para(
		`<p>Hi %s,</p>
		<p>We have received your emergency visa request for <strong>%s</strong>.</p>
		<p>Our team treats emergency requests with priority and will contact you shortly.</p>`,
		name, destination))
	return subject, body
}

// CustomEmail wraps free-form admin content in the branded layout
func CustomEmail(subject, message string) (string, string) {
	body := render(para(`<p>%s</p>`, message))
	return subject, body
}
