package cron

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"estatedeal_backend/internal/model"
	"estatedeal_backend/pkg/logger"
)

const ReminderWindow = 24 * time.Hour

type UpcomingVisits interface {
	UpcomingApproved(ctx context.Context, window time.Duration) ([]model.VisitRequest, error)
}

type ReminderLookup interface {
	GetBuyer(ctx context.Context, id uint) (*model.Buyer, error)
	GetProperty(ctx context.Context, id uint) (*model.Property, error)
}

type ReminderMailer interface {
	SendVisitReminder(ctx context.Context, email, name, propertyTitle string, scheduled time.Time) error
}

var (
	reminderMu      sync.Mutex
	lastReminderRun time.Time
)

// InitVisitReminderCron emails buyers about approved visits in the next day,
// every morning at 09:00.
func InitVisitReminderCron(visits UpcomingVisits, lookup ReminderLookup, mailer ReminderMailer) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("0 9 * * *", func() {
		reminderMu.Lock()
		defer reminderMu.Unlock()

		if time.Since(lastReminderRun) < 23*time.Hour {
			logger.Log.Info("Visit reminders already sent today, skipping")
			return
		}
		if _, err := SendVisitReminders(context.Background(), visits, lookup, mailer); err != nil {
			logger.Log.Errorf("Visit reminder run failed: %v", err)
			return
		}
		lastReminderRun = time.Now()
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.Info("Visit reminder cron initialized")
	return c, nil
}

// SendVisitReminders returns how many reminders went out. A failure for one
// visit is logged and does not stop the others.
func SendVisitReminders(ctx context.Context, visits UpcomingVisits, lookup ReminderLookup, mailer ReminderMailer) (int, error) {
	upcoming, err := visits.UpcomingApproved(ctx, ReminderWindow)
	if err != nil {
		return 0, err
	}
	logger.Log.Infof("Found %d approved visits in the next %s", len(upcoming), ReminderWindow)

	sent := 0
	for _, v := range upcoming {
		fields := logrus.Fields{"visit_id": v.ID, "buyer_id": v.BuyerID}

		buyer, err := lookup.GetBuyer(ctx, v.BuyerID)
		if err != nil {
			logger.Log.WithFields(fields).Warnf("Could not load buyer for reminder: %v", err)
			continue
		}
		if buyer.Email == "" {
			continue
		}
		title := "your visit"
		if prop, err := lookup.GetProperty(ctx, v.PropertyID); err == nil {
			title = prop.Title
		}

		if err := mailer.SendVisitReminder(ctx, buyer.Email, buyer.Name, title, v.ScheduledDate); err != nil {
			logger.Log.WithFields(fields).Warnf("Error sending visit reminder: %v", err)
			continue
		}
		sent++
	}
	return sent, nil
}
