package splitrequest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/groupledger/internal/models"
	"github.com/mmynk/groupledger/internal/storage"
)

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	Checked      int
	Repaired     int
	Inconsistent int
}

// Reconcile recomputes the status of every open request from its
// participants and writes back any that drifted. Cancelled requests are
// skipped. A completed request whose participants are not all paid is
// reported, not changed, because terminal statuses never move. Running it
// again without intervening writes repairs nothing.
func (e *Engine) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	ids, err := e.store.ListOpenSplitRequestIDs(ctx)
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		err := e.store.InSplitRequestTx(ctx, id, func(tx storage.SplitRequestTx) error {
			req, err := tx.SplitRequest(ctx)
			if err != nil {
				return err
			}
			report.Checked++

			switch req.Status {
			case models.SplitRequestCancelled:
				return nil
			case models.SplitRequestCompleted:
				if req.PaidCount() != len(req.Participants) {
					report.Inconsistent++
					slog.Warn("Completed split request has unpaid participants",
						"split_request_id", req.ID,
						"paid", req.PaidCount(),
						"participants", len(req.Participants),
					)
				}
				return nil
			case models.SplitRequestPending, models.SplitRequestPartiallyPaid:
				next := NextStatus(req.Status, req.Participants)
				if next == req.Status {
					return nil
				}
				if err := tx.UpdateStatus(ctx, next, e.now().Unix()); err != nil {
					return err
				}
				report.Repaired++
				slog.Info("Split request status repaired",
					"split_request_id", req.ID,
					"from", req.Status,
					"to", next,
				)
				return nil
			default:
				report.Inconsistent++
				slog.Warn("Split request has unknown status", "split_request_id", req.ID, "status", req.Status)
				return nil
			}
		})
		if err != nil {
			return report, fmt.Errorf("failed to reconcile split request %s: %w", id, err)
		}
	}

	e.metrics.ReconcileRepaired(report.Repaired)
	e.metrics.ReconcileInconsistent(report.Inconsistent)
	slog.Info("Split request reconciliation finished",
		"checked", report.Checked,
		"repaired", report.Repaired,
		"inconsistent", report.Inconsistent,
	)
	return report, nil
}

// RunReconciler reconciles every interval until ctx is done. A failed pass
// is logged and retried on the next tick.
func (e *Engine) RunReconciler(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := e.Reconcile(ctx); err != nil && ctx.Err() == nil {
				slog.Error("Split request reconciliation failed", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}
