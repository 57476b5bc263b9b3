package dto

import (
	"strings"

	"github.com/hongminglow/valuation-be/internal/models"
)

type CreateAPIKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

func (r *CreateAPIKeyRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// CreateAPIKeyResponse is the only response that ever carries the plaintext key.
type CreateAPIKeyResponse struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Message   string `json:"message"`
}

type ListAPIKeysResponse struct {
	APIKeys []models.APIKey `json:"api_keys"`
}
