package api

import (
	"context"
	"net/http"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/models"
)

// ReportsService wraps the incident report endpoints.
type ReportsService struct {
	client *Client
}

// Create submits a new incident report.
func (s *ReportsService) Create(ctx context.Context, idempotencyKey string, report *models.Report) (*models.Report, error) {
	var created models.Report
	if err := s.client.do(ctx, http.MethodPost, "/v1/reports", idempotencyKey, report, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies a partial update to an existing report.
func (s *ReportsService) Update(ctx context.Context, idempotencyKey string, update *models.ReportUpdate) error {
	return s.client.do(ctx, http.MethodPatch, "/v1/reports/"+update.ID, idempotencyKey, update, nil)
}
