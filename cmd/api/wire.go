package main

import (
	"context"
	"fmt"
	"time"

	"estatedeal_backend/internal/repository"
	"estatedeal_backend/internal/repository/memory"
	"estatedeal_backend/internal/service"
	"estatedeal_backend/pkg/config"
	"estatedeal_backend/pkg/database"
	"estatedeal_backend/pkg/email"
	"estatedeal_backend/pkg/logger"
	"estatedeal_backend/pkg/notify"
	"estatedeal_backend/pkg/payout"
	"estatedeal_backend/pkg/seed"
	"estatedeal_backend/pkg/utils/jwt"
	"estatedeal_backend/pkg/utils/storage"
)

// stores groups one implementation per aggregate: either the postgres
// repositories or a single in-memory store.
type stores struct {
	accounts     service.AccountStore
	seed         seed.Store
	leads        service.LeadStore
	associations service.AssociationStore
	transactions service.TransactionStore
	payouts      service.PayoutStore
	otps         service.OTPStore
	progress     service.ProgressStore
	visits       service.VisitStore
	support      service.SupportStore
}

func postgresStores() stores {
	accounts := repository.NewAccountRepository(database.DB)
	return stores{
		accounts:     accounts,
		seed:         accounts,
		leads:        repository.NewLeadRepository(database.DB),
		associations: repository.NewAssociationRepository(database.DB),
		transactions: repository.NewTransactionRepository(database.DB),
		payouts:      repository.NewPayoutRepository(database.DB),
		otps:         repository.NewOTPRepository(database.DB),
		progress:     repository.NewProgressRepository(database.DB),
		visits:       repository.NewVisitRepository(database.DB),
		support:      repository.NewSupportRepository(database.DB),
	}
}

func memoryStores() stores {
	m := memory.New()
	return stores{
		accounts:     m,
		seed:         m,
		leads:        m,
		associations: m,
		transactions: m,
		payouts:      m,
		otps:         m,
		progress:     m,
		visits:       m,
		support:      m,
	}
}

type services struct {
	accounts     *service.AccountService
	associations *service.AssociationService
	leads        *service.LeadService
	otps         *service.OTPService
	transactions *service.TransactionService
	progress     *service.ProgressService
	visits       *service.VisitService
	support      *service.SupportService
}

func openStores(cfg *config.Config, inMemory bool) (stores, error) {
	if inMemory {
		logger.Log.Warn("Using the in-memory store, data is lost on exit")
		return memoryStores(), nil
	}
	if err := database.InitDB(cfg.Database.URL); err != nil {
		return stores{}, err
	}
	return postgresStores(), nil
}

func documentStore(cfg *config.Config) (service.DocumentStore, error) {
	if cfg.Storage.RemoteEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s, err := storage.NewR2Store(ctx, cfg.Storage.AccountID, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.PublicBase)
		if err != nil {
			return nil, fmt.Errorf("could not initialize R2 storage: %w", err)
		}
		logger.Log.WithField("bucket", cfg.Storage.Bucket).Info("Documents stored in R2")
		return s, nil
	}
	logger.Log.WithField("dir", cfg.Storage.UploadDir).Info("Documents stored on local disk")
	s, err := storage.NewDiskStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("could not initialize upload directory: %w", err)
	}
	return s, nil
}

// buildServices wires the collaborators chosen by cfg. Email is optional;
// when it is missing welcome, reminder and payout emails are skipped.
func buildServices(cfg *config.Config, st stores) (*services, error) {
	jwt.Init(cfg.JWT.Secret, time.Duration(cfg.JWT.TTLHours)*time.Hour)

	var (
		sms         notify.SMSSender
		otpMail     notify.EmailSender
		welcomeMail service.WelcomeMailer
		payoutMail  service.PayoutMailer
	)
	if cfg.Email.ResendAPIKey != "" {
		if err := email.InitEmailService(cfg.Email.ResendAPIKey, cfg.Email.From); err != nil {
			return nil, fmt.Errorf("could not initialize email service: %w", err)
		}
		otpMail = email.GlobalEmailService
		welcomeMail = email.GlobalEmailService
		payoutMail = email.GlobalEmailService
		logger.Log.Info("Email service initialized")
	}
	if cfg.SMS.Enabled() {
		sms = notify.NewTwilioSender(cfg.SMS.AccountSID, cfg.SMS.AuthToken, cfg.SMS.FromPhone)
		logger.Log.Info("SMS delivery through Twilio enabled")
	}
	notifier := notify.NewNotifier(sms, otpMail)

	var payer service.CommissionPayer = payout.LogPayer{}
	if cfg.Payout.StripeSecretKey != "" {
		payer = payout.NewStripePayer(cfg.Payout.StripeSecretKey)
		logger.Log.Info("Commission payouts through Stripe enabled")
	}

	docs, err := documentStore(cfg)
	if err != nil {
		return nil, err
	}

	associations := service.NewAssociationService(st.associations, st.accounts, nil)
	transactions := service.NewTransactionService(st.transactions, st.payouts, st.accounts, docs, payer, service.TransactionOptions{
		Currency: cfg.Payout.Currency,
		Mailer:   payoutMail,
	})
	return &services{
		accounts:     service.NewAccountService(st.accounts, associations, welcomeMail),
		associations: associations,
		leads: service.NewLeadService(st.leads, st.accounts, notifier, service.LeadOptions{
			RequireOTPBeforeOutcome: cfg.Workflow.RequireOTPBeforeOutcome,
		}),
		otps:         service.NewOTPService(st.otps, st.accounts, notifier, nil),
		transactions: transactions,
		progress:     service.NewProgressService(st.progress, st.transactions, st.accounts, nil),
		visits:       service.NewVisitService(st.visits, st.accounts, nil),
		support:      service.NewSupportService(st.support, st.accounts, nil),
	}, nil
}
