package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gymcore/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Recurring sweep
// ============================================================

func TestRecurringSweepChargesAndAdvances(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	// Clock sits exactly on the due date
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 1, f.gateway.callCount())

	after := f.mustRecurring(t, rp.ID)
	require.Equal(t, models.RecurringStatusActive, after.Status)
	require.Equal(t, date(2025, time.February, 15), after.NextPaymentDate)
	require.Equal(t, 0, after.AttemptCount)
	require.NotNil(t, after.LastProcessedDate)

	// One settled payment row, tied back to the schedule
	completed := f.payments.byStatus(models.PaymentStatusCompleted)
	require.Len(t, completed, 1)
	require.True(t, completed[0].Amount.Equal(decimal.NewFromInt(1200)))
	require.NotNil(t, completed[0].RecurringPaymentID)
	require.Equal(t, rp.ID, *completed[0].RecurringPaymentID)

	require.Contains(t, f.audit.actions(), models.AuditChargeSucceeded)
}

func TestRecurringSweepIsIdempotent(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 1, f.gateway.callCount())

	// Running again immediately finds nothing due: no double charge
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 1, f.gateway.callCount())
	require.Len(t, f.payments.byStatus(models.PaymentStatusCompleted), 1)
}

func TestRecurringSweepSkipsNotYetDue(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-02-01",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 0, f.gateway.callCount())
}

func TestRecurringSweepDeclineSchedulesRetry(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.gateway.charge = func(uint, decimal.Decimal, string) (*ChargeResult, error) {
		return &ChargeResult{Success: false, ErrorMessage: "insufficient funds"}, nil
	}

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))

	after := f.mustRecurring(t, rp.ID)
	require.Equal(t, models.RecurringStatusActive, after.Status)
	require.Equal(t, 1, after.AttemptCount)
	require.Equal(t, "insufficient funds", after.LastError)

	// Retry is pushed out by the configured delay, not a calendar period
	require.Equal(t, f.clock.Now().Add(60*time.Minute), after.NextPaymentDate)

	// The decline leaves a FAILED payment row for the history
	require.Len(t, f.payments.byStatus(models.PaymentStatusFailed), 1)
	require.Contains(t, f.audit.actions(), models.AuditRetryScheduled)
}

func TestRecurringSweepRetriesUntilFailed(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.gateway.charge = func(uint, decimal.Decimal, string) (*ChargeResult, error) {
		return &ChargeResult{Success: false, ErrorMessage: "card expired"}, nil
	}

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	// MaxAttempts is 3: walk the clock through each retry window
	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
		f.clock.Advance(61 * time.Minute)
	}

	after := f.mustRecurring(t, rp.ID)
	require.Equal(t, models.RecurringStatusFailed, after.Status)
	require.Equal(t, 3, after.AttemptCount)
	require.Equal(t, 3, f.gateway.callCount())
	require.Contains(t, f.audit.actions(), models.AuditRetriesExhausted)

	// FAILED is terminal: further sweeps never pick the record up again
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 3, f.gateway.callCount())
}

func TestRecurringSweepNoAutoRetryFailsImmediately(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.gateway.charge = func(uint, decimal.Decimal, string) (*ChargeResult, error) {
		return &ChargeResult{Success: false, ErrorMessage: "do not honour"}, nil
	}

	autoRetry := false
	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly,
		StartDate: "2025-01-15", AutoRetry: &autoRetry,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, models.RecurringStatusFailed, f.mustRecurring(t, rp.ID).Status)
}

func TestRecurringSweepGatewayErrorBurnsNoAttempt(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.gateway.charge = func(uint, decimal.Decimal, string) (*ChargeResult, error) {
		return nil, errors.New("connection refused")
	}

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))

	// Transport failure is not a decline: state untouched, still due
	after := f.mustRecurring(t, rp.ID)
	require.Equal(t, 0, after.AttemptCount)
	require.Equal(t, date(2025, time.January, 15), after.NextPaymentDate)
	require.Empty(t, f.payments.byStatus(models.PaymentStatusFailed))
	require.Contains(t, f.audit.actions(), models.AuditSweepSkipped)

	// Gateway recovers: the next sweep charges normally
	f.gateway.charge = nil
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, date(2025, time.February, 15), f.mustRecurring(t, rp.ID).NextPaymentDate)
}

func TestRecurringSweepIsolatesPerRecordFailures(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	first, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(100), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)
	second, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	// The first record's charge dies on the wire, the second succeeds
	f.gateway.charge = func(_ uint, amount decimal.Decimal, _ string) (*ChargeResult, error) {
		if amount.Equal(decimal.NewFromInt(100)) {
			return nil, errors.New("gateway timeout")
		}
		return &ChargeResult{Success: true, TransactionID: "TXN-OK"}, nil
	}

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))

	require.Equal(t, date(2025, time.January, 15), f.mustRecurring(t, first.ID).NextPaymentDate)
	require.Equal(t, date(2025, time.February, 15), f.mustRecurring(t, second.ID).NextPaymentDate)
}

func TestRecurringSweepSkipsPausedRecords(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.PauseRecurringPayment(ctx, rp.ID))
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 0, f.gateway.callCount())

	// Resume while the due date has elapsed: next sweep charges immediately
	require.NoError(t, f.svc.ResumeRecurringPayment(ctx, rp.ID))
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 1, f.gateway.callCount())
}

func TestRecurringSweepCompletesAtEndDate(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly,
		StartDate: "2025-01-15", EndDate: "2025-02-01",
	})
	require.NoError(t, err)

	// The advanced date (Feb 15) falls past the end date: final charge, then done
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))

	after := f.mustRecurring(t, rp.ID)
	require.Equal(t, models.RecurringStatusCompleted, after.Status)
	require.Len(t, f.payments.byStatus(models.PaymentStatusCompleted), 1)
	require.Contains(t, f.audit.actions(), models.AuditRecurringCompleted)

	// COMPLETED is terminal
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 1, f.gateway.callCount())
}

func TestRecurringSweepSuccessResetsAttemptCount(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	declined := true
	f.gateway.charge = func(uint, decimal.Decimal, string) (*ChargeResult, error) {
		if declined {
			return &ChargeResult{Success: false, ErrorMessage: "insufficient funds"}, nil
		}
		return &ChargeResult{Success: true, TransactionID: "TXN-RECOVER"}, nil
	}

	rp, err := f.svc.CreateRecurringPayment(ctx, &CreateRecurringPaymentInput{
		MemberID: 1, Amount: decimal.NewFromInt(1200), Frequency: models.FrequencyMonthly, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))
	require.Equal(t, 1, f.mustRecurring(t, rp.ID).AttemptCount)

	// The retry succeeds: attempt counter resets for the next cycle
	declined = false
	f.clock.Advance(61 * time.Minute)
	require.NoError(t, f.svc.ProcessRecurringPayments(ctx))

	after := f.mustRecurring(t, rp.ID)
	require.Equal(t, 0, after.AttemptCount)
	require.Empty(t, after.LastError)
	require.Equal(t, models.RecurringStatusActive, after.Status)
}

// ============================================================
// Installment sweep
// ============================================================

func TestInstallmentSweepRunsPlanToCompletion(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreateInstallmentPlan(ctx, &CreateInstallmentPlanInput{
		MemberID: 1, TotalAmount: decimal.NewFromInt(100), NumberOfInstallments: 3, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	// Three monthly sweeps settle the whole plan
	for i := 0; i < 3; i++ {
		require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))
		f.clock.now = f.clock.now.AddDate(0, 1, 0)
	}

	after := f.mustPlan(t, plan.ID)
	require.Equal(t, models.PlanStatusCompleted, after.Status)

	completed := f.payments.byStatus(models.PaymentStatusCompleted)
	require.Len(t, completed, 3)

	// 33.33 + 33.33 + 33.34 = 100.00, to the cent
	sum := decimal.Zero
	for _, p := range completed {
		sum = sum.Add(p.Amount)
	}
	require.True(t, sum.Equal(decimal.NewFromInt(100)), "sum = %s", sum)
	require.True(t, completed[2].Amount.Equal(decimal.RequireFromString("33.34")))

	require.Contains(t, f.audit.actions(), models.AuditPlanCompleted)

	// COMPLETED is terminal: no further charges
	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))
	require.Equal(t, 3, f.gateway.callCount())
}

func TestInstallmentSweepDeclineDefersWithoutAdvancing(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	f.gateway.charge = func(uint, decimal.Decimal, string) (*ChargeResult, error) {
		return &ChargeResult{Success: false, ErrorMessage: "insufficient funds"}, nil
	}

	plan, err := f.svc.CreateInstallmentPlan(ctx, &CreateInstallmentPlanInput{
		MemberID: 1, TotalAmount: decimal.NewFromInt(100), NumberOfInstallments: 3, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))

	// The plan stays where it was: same installment, same due date
	after := f.mustPlan(t, plan.ID)
	require.Equal(t, models.PlanStatusActive, after.Status)
	require.Equal(t, 1, after.CurrentInstallment)
	require.Equal(t, date(2025, time.January, 15), after.NextDueDate)
	require.Equal(t, "insufficient funds", after.LastError)
	require.Contains(t, f.audit.actions(), models.AuditInstallmentDeferred)

	// There is no attempt cap: a later sweep simply tries again
	f.gateway.charge = nil
	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))

	after = f.mustPlan(t, plan.ID)
	require.Equal(t, 2, after.CurrentInstallment)
	require.Equal(t, date(2025, time.February, 15), after.NextDueDate)
	require.Empty(t, after.LastError)
}

func TestInstallmentSweepCancelledPlanIsNeverCharged(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreateInstallmentPlan(ctx, &CreateInstallmentPlanInput{
		MemberID: 1, TotalAmount: decimal.NewFromInt(100), NumberOfInstallments: 3, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelInstallmentPlan(ctx, plan.ID))
	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))
	require.Equal(t, 0, f.gateway.callCount())
}

func TestInstallmentSweepSinglePayment(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreateInstallmentPlan(ctx, &CreateInstallmentPlanInput{
		MemberID: 1, TotalAmount: decimal.RequireFromString("59.99"), NumberOfInstallments: 1, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))

	require.Equal(t, models.PlanStatusCompleted, f.mustPlan(t, plan.ID).Status)
	completed := f.payments.byStatus(models.PaymentStatusCompleted)
	require.Len(t, completed, 1)
	require.True(t, completed[0].Amount.Equal(decimal.RequireFromString("59.99")))
}

func TestInstallmentPaymentRowsCarryTheInstallmentNumber(t *testing.T) {
	f := newBillingFixture(t)
	ctx := context.Background()

	plan, err := f.svc.CreateInstallmentPlan(ctx, &CreateInstallmentPlanInput{
		MemberID: 1, TotalAmount: decimal.NewFromInt(90), NumberOfInstallments: 3, StartDate: "2025-01-15",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))
	f.clock.now = f.clock.now.AddDate(0, 1, 0)
	require.NoError(t, f.svc.ProcessInstallmentPayments(ctx))

	completed := f.payments.byStatus(models.PaymentStatusCompleted)
	require.Len(t, completed, 2)
	for i, p := range completed {
		require.NotNil(t, p.InstallmentPlanID)
		require.Equal(t, plan.ID, *p.InstallmentPlanID)
		require.NotNil(t, p.InstallmentNumber)
		require.Equal(t, i+1, *p.InstallmentNumber)
	}
}
