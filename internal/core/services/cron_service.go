package services

import (
	"context"
	"log"

	"gymcore/internal/config"

	"github.com/robfig/cron/v3"
)

// CronService is the periodic trigger for the billing engine. It owns no
// billing policy: it only invokes the engine's sweep operations on the
// configured schedules.
type CronService struct {
	cron    *cron.Cron
	billing *BillingService
	cfg     *config.BillingConfig
}

// NewCronService creates a new cron service
func NewCronService(billing *BillingService, cfg *config.BillingConfig) *CronService {
	return &CronService{
		cron:    cron.New(),
		billing: billing,
		cfg:     cfg,
	}
}

// Start registers the sweep schedules and launches the cron runner
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RecurringSchedule, func() {
		if err := s.billing.ProcessRecurringPayments(context.Background()); err != nil {
			log.Printf("❌ Recurring payment sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.InstallmentSchedule, func() {
		if err := s.billing.ProcessInstallmentPayments(context.Background()); err != nil {
			log.Printf("❌ Installment sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.cfg.ReminderSchedule, func() {
		if err := s.billing.SendRenewalReminders(context.Background()); err != nil {
			log.Printf("❌ Renewal reminders failed: %v", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 Billing cron started [recurring: %s, installments: %s, reminders: %s]",
		s.cfg.RecurringSchedule, s.cfg.InstallmentSchedule, s.cfg.ReminderSchedule)
	return nil
}

// Stop stops the cron runner, waiting for a running job to finish
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Billing cron stopped")
}
