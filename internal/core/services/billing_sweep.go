package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gymcore/internal/adapters/persistence/models"
	"gymcore/internal/core/domain"
)

// ============================================================
// Sweep operations
// ============================================================

// ProcessRecurringPayments charges every ACTIVE recurring payment whose
// next payment date has elapsed. Per-record failures are logged and audited
// but never abort the sweep; the returned error only reflects the due-record
// scan itself. Safe to invoke repeatedly: a record is only charged while its
// next payment date is in the past, and every write is guarded against
// concurrent state changes.
func (s *BillingService) ProcessRecurringPayments(ctx context.Context) error {
	if !s.recurringMu.TryLock() {
		log.Println("⏭️ Recurring payment sweep already running, skipping trigger")
		return nil
	}
	defer s.recurringMu.Unlock()

	now := s.clock.Now()
	due, err := s.recurringRepo.FindDue(ctx, now)
	if err != nil {
		return fmt.Errorf("scan due recurring payments: %w", err)
	}

	processed := 0
	for _, rp := range due {
		if err := s.processRecurring(ctx, rp, now); err != nil {
			log.Printf("❌ Recurring payment %d skipped: %v", rp.ID, err)
			s.auditService.Log(ctx, models.AuditSweepSkipped, "recurring_payment", rp.ID, models.AuditActorSystem, err.Error(), nil)
			continue
		}
		processed++
	}

	if len(due) > 0 {
		log.Printf("💳 Recurring sweep: %d/%d due records processed", processed, len(due))
	}
	return nil
}

// processRecurring handles one due recurring payment end to end
func (s *BillingService) processRecurring(ctx context.Context, rp *models.RecurringPayment, now time.Time) error {
	result, err := s.gateway.Charge(ctx, rp.MemberID, rp.Amount, rp.Method)
	if err != nil {
		// Gateway unreachable: state untouched, the record stays due and
		// is retried on the next sweep without burning an attempt.
		return fmt.Errorf("charge gateway: %w", err)
	}

	if result.Success {
		return s.settleRecurring(ctx, rp, result, now)
	}
	return s.deferRecurring(ctx, rp, result, now)
}

// settleRecurring records a successful charge and advances the schedule
func (s *BillingService) settleRecurring(ctx context.Context, rp *models.RecurringPayment, result *ChargeResult, now time.Time) error {
	payment := &models.Payment{
		MemberID:           rp.MemberID,
		Amount:             rp.Amount,
		Method:             rp.Method,
		Status:             models.PaymentStatusCompleted,
		TransactionID:      result.TransactionID,
		RecurringPaymentID: &rp.ID,
		Description:        fmt.Sprintf("Recurring %s payment", rp.Frequency),
		PaidAt:             now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("persist payment: %w", err)
	}

	prevStatus := rp.Status
	prevAttempts := rp.AttemptCount

	rp.AttemptCount = 0
	rp.LastError = ""
	rp.LastProcessedDate = &now
	rp.NextPaymentDate = advanceSchedule(rp.NextPaymentDate, rp.Frequency, rp.StartDate.Day())
	completed := rp.EndDate != nil && rp.NextPaymentDate.After(*rp.EndDate)
	if completed {
		rp.Status = models.RecurringStatusCompleted
	}

	if err := s.recurringRepo.UpdateGuarded(ctx, rp, prevStatus, prevAttempts); err != nil {
		if errors.Is(err, domain.ErrStaleRecord) {
			return fmt.Errorf("schedule not advanced, %w", err)
		}
		return fmt.Errorf("advance schedule: %w", err)
	}

	s.auditService.Log(ctx, models.AuditChargeSucceeded, "recurring_payment", rp.ID, models.AuditActorSystem,
		fmt.Sprintf("charged %s, next payment %s", rp.Amount.StringFixed(2), rp.NextPaymentDate.Format(dateLayout)),
		map[string]interface{}{"transaction_id": result.TransactionID, "payment_id": payment.ID})
	if completed {
		s.auditService.Log(ctx, models.AuditRecurringCompleted, "recurring_payment", rp.ID, models.AuditActorSystem,
			"end date reached", nil)
	}

	s.notifyService.SendReceipt(s.lookupMember(ctx, rp.MemberID), payment)
	return nil
}

// deferRecurring applies the retry policy after a declined charge
func (s *BillingService) deferRecurring(ctx context.Context, rp *models.RecurringPayment, result *ChargeResult, now time.Time) error {
	failed := &models.Payment{
		MemberID:           rp.MemberID,
		Amount:             rp.Amount,
		Method:             rp.Method,
		Status:             models.PaymentStatusFailed,
		TransactionID:      result.TransactionID,
		RecurringPaymentID: &rp.ID,
		Description:        fmt.Sprintf("Declined: %s", result.ErrorMessage),
		PaidAt:             now,
	}
	if err := s.paymentRepo.Create(ctx, failed); err != nil {
		log.Printf("⚠️ Failed to record declined charge for recurring payment %d: %v", rp.ID, err)
	}

	prevStatus := rp.Status
	prevAttempts := rp.AttemptCount

	rp.AttemptCount = prevAttempts + 1
	rp.LastError = result.ErrorMessage
	rp.LastProcessedDate = &now

	retrying := rp.AutoRetry && rp.AttemptCount < rp.MaxAttempts
	if retrying {
		rp.NextPaymentDate = now.Add(rp.RetryDelay())
	} else {
		rp.Status = models.RecurringStatusFailed
	}

	if err := s.recurringRepo.UpdateGuarded(ctx, rp, prevStatus, prevAttempts); err != nil {
		return fmt.Errorf("apply retry policy: %w", err)
	}

	if retrying {
		s.auditService.Log(ctx, models.AuditRetryScheduled, "recurring_payment", rp.ID, models.AuditActorSystem,
			fmt.Sprintf("attempt %d/%d failed (%s), retry at %s",
				rp.AttemptCount, rp.MaxAttempts, result.ErrorMessage, rp.NextPaymentDate.Format(time.RFC3339)),
			nil)
	} else {
		s.auditService.Log(ctx, models.AuditRetriesExhausted, "recurring_payment", rp.ID, models.AuditActorSystem,
			fmt.Sprintf("gave up after %d attempts: %s", rp.AttemptCount, result.ErrorMessage), nil)
	}

	s.notifyService.SendFailureNotice(s.lookupMember(ctx, rp.MemberID), rp.Amount.StringFixed(2), result.ErrorMessage)
	return nil
}

// ProcessInstallmentPayments charges every ACTIVE installment plan whose
// next due date has elapsed. A declined installment is simply deferred to
// the next sweep: the plan keeps its current installment and due date, so
// there is no attempt cap on installments.
func (s *BillingService) ProcessInstallmentPayments(ctx context.Context) error {
	if !s.installmentMu.TryLock() {
		log.Println("⏭️ Installment sweep already running, skipping trigger")
		return nil
	}
	defer s.installmentMu.Unlock()

	now := s.clock.Now()
	due, err := s.planRepo.FindDue(ctx, now)
	if err != nil {
		return fmt.Errorf("scan due installment plans: %w", err)
	}

	processed := 0
	for _, plan := range due {
		if err := s.processInstallment(ctx, plan, now); err != nil {
			log.Printf("❌ Installment plan %d skipped: %v", plan.ID, err)
			s.auditService.Log(ctx, models.AuditSweepSkipped, "installment_plan", plan.ID, models.AuditActorSystem, err.Error(), nil)
			continue
		}
		processed++
	}

	if len(due) > 0 {
		log.Printf("💳 Installment sweep: %d/%d due plans processed", processed, len(due))
	}
	return nil
}

// processInstallment handles one due installment plan end to end
func (s *BillingService) processInstallment(ctx context.Context, plan *models.InstallmentPlan, now time.Time) error {
	number := plan.CurrentInstallment
	amount := plan.AmountForInstallment(number)

	result, err := s.gateway.Charge(ctx, plan.MemberID, amount, plan.Method)
	if err != nil {
		return fmt.Errorf("charge gateway: %w", err)
	}

	if !result.Success {
		// Defer: the same installment is retried on the next sweep.
		prevInstallment := plan.CurrentInstallment
		plan.LastError = result.ErrorMessage
		if err := s.planRepo.UpdateGuarded(ctx, plan, models.PlanStatusActive, prevInstallment); err != nil {
			return fmt.Errorf("record deferral: %w", err)
		}

		s.auditService.Log(ctx, models.AuditInstallmentDeferred, "installment_plan", plan.ID, models.AuditActorSystem,
			fmt.Sprintf("installment %d/%d declined: %s", number, plan.NumberOfInstallments, result.ErrorMessage), nil)
		s.notifyService.SendFailureNotice(s.lookupMember(ctx, plan.MemberID), amount.StringFixed(2), result.ErrorMessage)
		return nil
	}

	payment := &models.Payment{
		MemberID:          plan.MemberID,
		Amount:            amount,
		Method:            plan.Method,
		Status:            models.PaymentStatusCompleted,
		TransactionID:     result.TransactionID,
		InstallmentPlanID: &plan.ID,
		InstallmentNumber: &number,
		Description:       fmt.Sprintf("Installment %d of %d", number, plan.NumberOfInstallments),
		PaidAt:            now,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return fmt.Errorf("persist payment: %w", err)
	}

	prevInstallment := plan.CurrentInstallment
	plan.LastError = ""
	plan.LastProcessedDate = &now

	completed := number >= plan.NumberOfInstallments
	if completed {
		plan.Status = models.PlanStatusCompleted
	} else {
		plan.CurrentInstallment = number + 1
		plan.NextDueDate = nextMonthOn(plan.NextDueDate, 1, plan.DueDayOfMonth)
	}

	if err := s.planRepo.UpdateGuarded(ctx, plan, models.PlanStatusActive, prevInstallment); err != nil {
		return fmt.Errorf("advance plan: %w", err)
	}

	s.auditService.Log(ctx, models.AuditInstallmentPaid, "installment_plan", plan.ID, models.AuditActorSystem,
		fmt.Sprintf("installment %d/%d charged %s", number, plan.NumberOfInstallments, amount.StringFixed(2)),
		map[string]interface{}{"transaction_id": result.TransactionID, "payment_id": payment.ID})

	member := s.lookupMember(ctx, plan.MemberID)
	s.notifyService.SendReceipt(member, payment)
	if completed {
		s.auditService.Log(ctx, models.AuditPlanCompleted, "installment_plan", plan.ID, models.AuditActorSystem,
			fmt.Sprintf("all %d installments settled, total %s", plan.NumberOfInstallments, plan.TotalAmount.StringFixed(2)), nil)
		s.notifyService.SendPlanCompleted(member, plan)
	}
	return nil
}

// SendRenewalReminders notifies members whose next recurring charge falls
// within the configured look-ahead window.
func (s *BillingService) SendRenewalReminders(ctx context.Context) error {
	horizon := s.clock.Now().AddDate(0, 0, s.cfg.ReminderDaysAhead)
	upcoming, err := s.recurringRepo.FindDue(ctx, horizon)
	if err != nil {
		return fmt.Errorf("scan upcoming recurring payments: %w", err)
	}

	for _, rp := range upcoming {
		s.notifyService.SendRenewalReminder(s.lookupMember(ctx, rp.MemberID), rp)
	}
	return nil
}

// lookupMember fetches the member for notification purposes. Returns nil on
// any error: notifications are best-effort and must never fail a sweep.
func (s *BillingService) lookupMember(ctx context.Context, memberID uint) *models.Member {
	member, err := s.memberRepo.GetByID(ctx, memberID)
	if err != nil {
		return nil
	}
	return member
}
