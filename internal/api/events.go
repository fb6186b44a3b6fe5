package api

import (
	"context"
	"net/http"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/models"
)

// EventsService wraps the community event endpoints.
type EventsService struct {
	client *Client
}

// Register joins the authenticated user to an event.
func (s *EventsService) Register(ctx context.Context, idempotencyKey string, reg *models.EventRegistration) error {
	return s.client.do(ctx, http.MethodPost, "/v1/events/"+reg.EventID+"/registrations", idempotencyKey, reg, nil)
}

// List fetches upcoming events near a location.
func (s *EventsService) List(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := s.client.do(ctx, http.MethodGet, "/v1/events", "", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
