/**
 * @description
 * This file contains the payout status reconciler. A payout's status is a
 * function of wall-clock time: it is 'released' once its payout date has
 * passed and 'scheduled' before that. The service never authors this status
 * directly.
 *
 * Two forms are provided:
 * - DeriveStatus, the pure comparison, used on every read so that reported
 *   statuses are always consistent with the payout date regardless of what the
 *   persisted column says.
 * - ReconcileReleasedSchedules, the stateful sweep, which folds the persisted
 *   schedule_payout.status cache forward in one batch. It is triggered by read
 *   requests, not by a timer, so staleness is bounded by request frequency.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/pensiontrack/pension-service/internal/domain"
)

// DeriveStatus computes a payout's status from its payout date and the current
// time. Released strictly after the payout instant has passed.
func DeriveStatus(payoutDate, now time.Time) string {
	if payoutDate.Before(now) {
		return domain.PayoutStatusReleased
	}
	return domain.PayoutStatusScheduled
}

// ReconcileReleasedSchedules promotes stale persisted 'scheduled' rows to
// 'released'. Reconciliation is advisory: a persistence failure here is logged
// and swallowed so it never blocks the read that triggered it, and the next
// read retries naturally. Calling it again with no newly-due schedules writes
// nothing.
func (s *Service) ReconcileReleasedSchedules(ctx context.Context, now time.Time) {
	released, err := s.repo.ReleaseDuePayouts(ctx, now)
	if err != nil {
		log.Printf("level=warn component=service flow=payout_reconcile msg=\"release sweep failed; will retry on next read\" err=%v", err)
		return
	}
	if released > 0 {
		log.Printf("level=info component=service flow=payout_reconcile msg=\"schedules released\" count=%d", released)
	}
}
