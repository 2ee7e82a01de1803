package postup

import (
	"context"
	"net/http"
)

const brandPath = "/brand/"

// BrandService handles the /brand endpoints
type BrandService service

// Brand represents a PostUp brand
type Brand struct {
	BrandID     int64  `json:"brandId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ExternalID  string `json:"externalId,omitempty"`
	Channel     string `json:"channel,omitempty"`
	Active      bool   `json:"active"`
}

// Get retrieves a single brand
func (s *BrandService) Get(ctx context.Context, brandID int64) (*Brand, error) {
	var brand Brand
	path := brandPath + BuildQuery(map[string]any{"brandId": brandID})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &brand); err != nil {
		return nil, err
	}
	return &brand, nil
}

// List retrieves all brands
func (s *BrandService) List(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := s.client.Do(ctx, http.MethodGet, brandPath, nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}
