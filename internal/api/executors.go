package api

import (
	"context"
	"encoding/json"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/models"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/dispatch"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/queue"
)

// Executors returns the dispatch registrations binding each queued
// (resource, operation) pair to its remote write. Server rejections are
// marked permanent so the processor fails them without retrying; the
// queue item id travels as the idempotency key.
func Executors(c *Client) []dispatch.Registration {
	return []dispatch.Registration{
		{
			Resource:  queue.ResourceReports,
			Operation: queue.OperationCreate,
			Execute: func(ctx context.Context, itemID string, payload json.RawMessage) error {
				var report models.Report
				if err := json.Unmarshal(payload, &report); err != nil {
					return dispatch.Permanent(errors.Wrap(errors.ErrSerialization, "bad report payload", err))
				}
				_, err := c.Reports().Create(ctx, itemID, &report)
				return classify(err)
			},
		},
		{
			Resource:  queue.ResourceReports,
			Operation: queue.OperationUpdate,
			Execute: func(ctx context.Context, itemID string, payload json.RawMessage) error {
				var update models.ReportUpdate
				if err := json.Unmarshal(payload, &update); err != nil {
					return dispatch.Permanent(errors.Wrap(errors.ErrSerialization, "bad report update payload", err))
				}
				return classify(c.Reports().Update(ctx, itemID, &update))
			},
		},
		{
			Resource:  queue.ResourceEvents,
			Operation: queue.OperationRegister,
			Execute: func(ctx context.Context, itemID string, payload json.RawMessage) error {
				var reg models.EventRegistration
				if err := json.Unmarshal(payload, &reg); err != nil {
					return dispatch.Permanent(errors.Wrap(errors.ErrSerialization, "bad event registration payload", err))
				}
				return classify(c.Events().Register(ctx, itemID, &reg))
			},
		},
		{
			Resource:  queue.ResourceUsers,
			Operation: queue.OperationRegister,
			Execute: func(ctx context.Context, itemID string, payload json.RawMessage) error {
				var reg models.Registration
				if err := json.Unmarshal(payload, &reg); err != nil {
					return dispatch.Permanent(errors.Wrap(errors.ErrSerialization, "bad registration payload", err))
				}
				_, err := c.Users().Register(ctx, itemID, &reg)
				return classify(err)
			},
		},
	}
}

// classify marks server rejections permanent; transient transport and
// server errors stay retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errors.ErrRemoteRejected) {
		return dispatch.Permanent(err)
	}
	return err
}
