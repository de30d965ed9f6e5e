package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"gymcore/internal/adapters/persistence/models"
)

// NotificationService dispatches member-facing messages through a webhook
// (e-mail/LINE relay owned by the front office). All sends are fire-and-
// forget: failures are logged and never surfaced to callers.
type NotificationService struct {
	webhookURL string
	enabled    bool
}

// NewNotificationService creates a new notification service
func NewNotificationService() *NotificationService {
	url := os.Getenv("NOTIFY_WEBHOOK_URL")
	return &NotificationService{
		webhookURL: url,
		enabled:    url != "",
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

type notifyPayload struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// send posts a message to the webhook
func (s *NotificationService) send(recipient, subject, message string) {
	if !s.enabled {
		return
	}

	body, err := json.Marshal(notifyPayload{
		Recipient: recipient,
		Subject:   subject,
		Message:   message,
	})
	if err != nil {
		return
	}

	resp, err := http.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("❌ Notification send failed: %v", err)
		return
	}
	resp.Body.Close()
}

// SendReceipt sends a payment receipt to the member
func (s *NotificationService) SendReceipt(member *models.Member, payment *models.Payment) {
	if member == nil {
		return
	}

	message := fmt.Sprintf(`✅ Payment received

Member: %s (%s)
Amount: %s
Reference: %s

Thank you for training with us!`,
		member.FullName,
		member.MemberNo,
		payment.Amount.StringFixed(2),
		payment.TransactionID,
	)

	s.send(member.Email, "Payment receipt", message)
}

// SendFailureNotice tells the member a charge was declined
func (s *NotificationService) SendFailureNotice(member *models.Member, amount string, reason string) {
	if member == nil {
		return
	}

	message := fmt.Sprintf(`❌ Payment failed

Member: %s (%s)
Amount: %s
Reason: %s

Please update your payment method at the front desk.`,
		member.FullName,
		member.MemberNo,
		amount,
		reason,
	)

	s.send(member.Email, "Payment failed", message)
}

// SendPlanCompleted congratulates the member on settling an installment plan
func (s *NotificationService) SendPlanCompleted(member *models.Member, plan *models.InstallmentPlan) {
	if member == nil {
		return
	}

	message := fmt.Sprintf(`🎉 Installment plan settled

Member: %s (%s)
Total paid: %s over %d installments`,
		member.FullName,
		member.MemberNo,
		plan.TotalAmount.StringFixed(2),
		plan.NumberOfInstallments,
	)

	s.send(member.Email, "Installment plan settled", message)
}

// SendRenewalReminder reminds the member about an upcoming scheduled charge
func (s *NotificationService) SendRenewalReminder(member *models.Member, rp *models.RecurringPayment) {
	if member == nil {
		return
	}

	message := fmt.Sprintf(`📅 Upcoming membership charge

Member: %s (%s)
Amount: %s
Scheduled for: %s`,
		member.FullName,
		member.MemberNo,
		rp.Amount.StringFixed(2),
		rp.NextPaymentDate.Format("02/01/2006"),
	)

	s.send(member.Email, "Upcoming charge", message)
}
