package worker

import (
	"context"
	"log"
	"time"

	"drivenmind/billing"
)

// BillingWorker periodically finalizes pending cancellations: a
// subscription flagged cancel-at-period-end keeps its access until the
// period lapses, then flips to canceled.
type BillingWorker struct {
	Subscriptions *billing.SubscriptionStore
	Interval      time.Duration
	Logger        *log.Logger
}

func NewBillingWorker(subs *billing.SubscriptionStore, interval time.Duration, logger *log.Logger) *BillingWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &BillingWorker{
		Subscriptions: subs,
		Interval:      interval,
		Logger:        logger,
	}
}

func (bw *BillingWorker) Start(ctx context.Context) {
	bw.Logger.Println("Billing worker started")

	ticker := time.NewTicker(bw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			bw.Logger.Println("Billing worker shutting down...")
			return
		case <-ticker.C:
			if err := bw.Subscriptions.ExpireDue(ctx); err != nil {
				bw.Logger.Printf("Error expiring due subscription: %v", err)
			}
		}
	}
}
