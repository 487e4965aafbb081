package worker

// notification_worker.go
// Processes notification jobs from QueueNotifications. Supplier order events
// additionally get a purchase order PDF emailed to the supplier contact; all
// other events are logged for the audit trail only.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kantman01/ai-stock-management-sub000/internal/infra"
	"github.com/kantman01/ai-stock-management-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const maxNotifyAttempts = 3

type NotificationWorker struct {
	mailer         *infra.Mailer
	orderRepo      repository.SupplierOrderRepository
	rdb            *redis.Client
	pdfStoragePath string
}

func NewNotificationWorker(
	mailer *infra.Mailer,
	orderRepo repository.SupplierOrderRepository,
	rdb *redis.Client,
	pdfStoragePath string,
) *NotificationWorker {
	return &NotificationWorker{
		mailer:         mailer,
		orderRepo:      orderRepo,
		rdb:            rdb,
		pdfStoragePath: pdfStoragePath,
	}
}

func (w *NotificationWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload NotificationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("notification_worker: invalid payload")
		return
	}

	log.Info().Str("event", payload.Event).RawJSON("data", payload.Data).Msg("notification_worker: event")

	switch payload.Event {
	case "supplier_order.created", "supplier_order.completed":
		w.notifySupplier(ctx, payload)
	}
}

// notifySupplier renders the purchase order PDF and emails it to the supplier
// contact. Exhausted retries land the job in the DLQ for manual inspection.
func (w *NotificationWorker) notifySupplier(ctx context.Context, payload NotificationPayload) {
	var data struct {
		SupplierOrderID string `json:"supplier_order_id"`
	}
	if err := json.Unmarshal(payload.Data, &data); err != nil || data.SupplierOrderID == "" {
		log.Error().Err(err).Msg("notification_worker: missing supplier_order_id")
		return
	}
	orderID, err := uuid.Parse(data.SupplierOrderID)
	if err != nil {
		log.Error().Str("supplier_order_id", data.SupplierOrderID).Msg("notification_worker: invalid supplier_order_id")
		return
	}

	order, err := w.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("supplier_order_id", data.SupplierOrderID).Msg("notification_worker: order not found")
		return
	}
	if order.Supplier == nil || order.Supplier.Email == nil || *order.Supplier.Email == "" {
		log.Warn().Str("supplier_order_id", data.SupplierOrderID).Msg("notification_worker: supplier has no email, skipping")
		return
	}

	pdfPath, err := infra.GeneratePurchaseOrderPDF(order, w.pdfStoragePath)
	if err != nil {
		// Send the email anyway — the PDF is an attachment, not the message.
		log.Warn().Err(err).Str("supplier_order_id", data.SupplierOrderID).Msg("notification_worker: PDF generation failed")
		pdfPath = ""
	}

	subject := fmt.Sprintf("Purchase order %s", order.ID)
	body := fmt.Sprintf("Please find attached purchase order %s.\nTotal: $%s", order.ID, order.TotalAmount.StringFixed(2))
	if payload.Event == "supplier_order.completed" {
		subject = fmt.Sprintf("Purchase order %s received", order.ID)
		body = fmt.Sprintf("Purchase order %s has been received and completed.\nTotal: $%s", order.ID, order.TotalAmount.StringFixed(2))
	}

	sendErr := withRetry(ctx, maxNotifyAttempts, func(attempt int) error {
		if err := w.mailer.SendPurchaseOrder(*order.Supplier.Email, subject, body, pdfPath); err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", *order.Supplier.Email).
				Msg("notification_worker: send attempt failed")
			return err
		}
		return nil
	})
	if sendErr != nil {
		SendToDLQ(ctx, w.rdb, QueueNotifications, "notification", payload.Data,
			fmt.Sprintf("max retries (%d) exceeded: %v", maxNotifyAttempts, sendErr), maxNotifyAttempts)
		return
	}
	log.Info().Str("to", *order.Supplier.Email).Str("supplier_order_id", data.SupplierOrderID).
		Msg("notification_worker: purchase order sent")
}
