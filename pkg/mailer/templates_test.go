package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWelcomeEmail(t *testing.T) {
	subject, body := WelcomeEmail("Priya Sharma")

	assert.Equal(t, "Welcome to Axe Visa Technology", subject)
	assert.Contains(t, body, "Priya Sharma")
	assert.Contains(t, body, "Axe Visa Technology")
}

func TestStatusUpdateEmail(t *testing.T) {
	subject, body := StatusUpdateEmail("Priya Sharma", "FRA0703251405TOU", "Under Review")

	assert.Equal(t, "Application FRA0703251405TOU: Under Review", subject)
	assert.Contains(t, body, "FRA0703251405TOU")
	assert.Contains(t, body, "Under Review")
}

func TestOTPEmail(t *testing.T) {
	_, body := OTPEmail("Priya Sharma", "123456", 10)

	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "10 minutes")
}

func TestPaymentConfirmationEmail(t *testing.T) {
	_, body := PaymentConfirmationEmail("Priya Sharma", "pay_ABC123", "4999.00", "INR")

	assert.Contains(t, body, "pay_ABC123")
	assert.Contains(t, body, "INR 4999.00")
}

func TestTemplatesEscapeHTML(t *testing.T) {
	_, body := WelcomeEmail(`<script>alert("x")</script>`)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;")
}

func TestCustomEmail(t *testing.T) {
	subject, body := CustomEmail("Service notice", "Processing resumes Monday & Tuesday.")

	assert.Equal(t, "Service notice", subject)
	assert.Contains(t, body, "Processing resumes Monday &amp; Tuesday.")
}
