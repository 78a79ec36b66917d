package worker

import (
	"context"
	"log"
	"time"

	"github.com/restriden/simpli-immo-sub002/internal/entity"
	"github.com/restriden/simpli-immo-sub002/internal/infra/http/middleware"
)

const defaultBatchSize = 100

// ReconcileReport sums up one sweep.
type ReconcileReport struct {
	Scanned   int `json:"scanned"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

// StatusReconciler sweeps outgoing messages stuck at pending and promotes
// them to whatever the CRM reported into crm_data. It only moves statuses
// forward; rows without a usable CRM status stay untouched, which makes
// repeated runs free.
type StatusReconciler struct {
	messages     entity.MessageRepositoryInterface
	batchSize    int
	tickInterval time.Duration
}

func NewStatusReconciler(messages entity.MessageRepositoryInterface, tickInterval time.Duration) *StatusReconciler {
	if tickInterval <= 0 {
		tickInterval = 5 * time.Minute
	}
	return &StatusReconciler{
		messages:     messages,
		batchSize:    defaultBatchSize,
		tickInterval: tickInterval,
	}
}

func (w *StatusReconciler) Start(ctx context.Context) {
	log.Printf("🕒 Status reconciler started (every %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Status reconciler stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *StatusReconciler) runOnce(ctx context.Context) {
	report, err := w.Reconcile(ctx)
	if err != nil {
		log.Printf("❌ Reconciler sweep failed: %v", err)
		return
	}
	if report.Corrected > 0 {
		middleware.RecordStatusesReconciled(report.Corrected)
	}
	if report.Corrected > 0 || report.Failed > 0 {
		log.Printf("✅ Reconciler: %d scanned, %d corrected, %d failed", report.Scanned, report.Corrected, report.Failed)
	}
}

// Reconcile runs one full sweep over all pending outgoing messages and
// returns what it saw. A failing row is logged and skipped, never fatal.
func (w *StatusReconciler) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	afterID := ""

	for {
		batch, err := w.messages.ListPendingOutgoing(ctx, afterID, w.batchSize)
		if err != nil {
			return report, err
		}
		if len(batch) == 0 {
			return report, nil
		}

		for _, msg := range batch {
			report.Scanned++
			afterID = msg.ID

			status, ok := entity.MapCrmStatus(msg.CRMData().Status)
			if !ok || status == msg.DeliveryStatus {
				continue
			}

			if err := w.messages.UpdateDeliveryStatus(ctx, msg.ID, status); err != nil {
				log.Printf("⚠️ Reconciler: could not update message %s to %s: %v", msg.ID, status, err)
				report.Failed++
				continue
			}
			report.Corrected++
		}

		if len(batch) < w.batchSize {
			return report, nil
		}
	}
}
