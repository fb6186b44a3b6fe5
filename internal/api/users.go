package api

import (
	"context"
	"net/http"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/models"
)

// UsersService wraps the account endpoints.
type UsersService struct {
	client *Client
}

// Register creates a new citizen account.
func (s *UsersService) Register(ctx context.Context, idempotencyKey string, reg *models.Registration) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodPost, "/v1/users", idempotencyKey, reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the authenticated user's profile, including points and level.
func (s *UsersService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.client.do(ctx, http.MethodGet, "/v1/users/me", "", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
