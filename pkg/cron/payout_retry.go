package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"estatedeal_backend/pkg/logger"
)

const payoutRetryTimeout = 5 * time.Minute

type PayoutRetrier interface {
	RetryFailedPayouts(ctx context.Context) (int, error)
}

// InitPayoutRetryCron re-attempts failed commission payouts every hour.
func InitPayoutRetryCron(retrier PayoutRetrier) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))

	_, err := c.AddFunc("@hourly", func() {
		retryPayouts(retrier)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logger.Log.Info("Payout retry cron initialized")
	return c, nil
}

func retryPayouts(retrier PayoutRetrier) {
	ctx, cancel := context.WithTimeout(context.Background(), payoutRetryTimeout)
	defer cancel()

	sent, err := retrier.RetryFailedPayouts(ctx)
	if err != nil {
		logger.Log.Errorf("Payout retry run failed after %d payouts: %v", sent, err)
		return
	}
	if sent > 0 {
		logger.Log.Infof("Payout retry sent %d commission payouts", sent)
	}
}
