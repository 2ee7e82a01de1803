package postup

import (
	"context"
	"net/http"
	"strconv"
)

const customFieldPath = "/customfield/"

// CustomFieldService handles the /customfield endpoints
type CustomFieldService service

// CustomField is a recipient attribute defined on the account
type CustomField struct {
	CustomFieldID int64           `json:"customFieldId"`
	Title         string          `json:"title"`
	Active        bool            `json:"active"`
	Type          CustomFieldType `json:"type"`
}

// CustomFieldRequest is the payload for creating or updating a custom field
type CustomFieldRequest struct {
	CustomFieldID int64           `json:"customFieldId,omitempty"`
	Title         string          `json:"title,omitempty"`
	Active        bool            `json:"active"`
	Type          CustomFieldType `json:"type,omitempty"`
}

// Create creates a custom field. Title is required.
func (s *CustomFieldService) Create(ctx context.Context, req CustomFieldRequest) (*CustomField, error) {
	if err := firstError(NoNull(optional(req.Title)), req.Type.Validate(false)); err != nil {
		return nil, err
	}

	var field CustomField
	if err := s.client.Do(ctx, http.MethodPost, customFieldPath, req, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

// Update modifies a custom field. Type is only validated when set.
func (s *CustomFieldService) Update(ctx context.Context, customFieldID int64, req CustomFieldRequest) (*CustomField, error) {
	if err := req.Type.Validate(false); err != nil {
		return nil, err
	}

	req.CustomFieldID = customFieldID

	var field CustomField
	path := customFieldPath + strconv.FormatInt(customFieldID, 10)
	if err := s.client.Do(ctx, http.MethodPut, path, req, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

// Get retrieves a single custom field
func (s *CustomFieldService) Get(ctx context.Context, customFieldID int64) (*CustomField, error) {
	var field CustomField
	path := customFieldPath + strconv.FormatInt(customFieldID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

// List retrieves all custom fields
func (s *CustomFieldService) List(ctx context.Context) ([]CustomField, error) {
	var fields []CustomField
	if err := s.client.Do(ctx, http.MethodGet, customFieldPath, nil, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
