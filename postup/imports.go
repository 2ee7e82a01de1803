package postup

import (
	"context"
	"net/http"
	"strconv"
)

const (
	importPath         = "/import/"
	importTemplatePath = "/importtemplate/"
)

// ImportService handles the /import endpoints
type ImportService service

// ImportTemplateService handles the /importtemplate endpoints
type ImportTemplateService service

// Import describes a recipient import job
type Import struct {
	ImportID         int64        `json:"importId"`
	ImportTemplateID int64        `json:"importTemplateId"`
	SendTemplateID   int64        `json:"sendTemplateId,omitempty"`
	Status           ImportStatus `json:"status"`
	StartTime        string       `json:"startTime,omitempty"`
	EndTime          string       `json:"endTime,omitempty"`
	RecordsProcessed int64        `json:"recordsProcessed"`
	RecordsAdded     int64        `json:"recordsAdded"`
	RecordsUpdated   int64        `json:"recordsUpdated"`
	RecordsRejected  int64        `json:"recordsRejected"`
}

// ImportRequest uploads rows through an import template
type ImportRequest struct {
	ImportTemplateID int64    `json:"importTemplateId"`
	Data             []string `json:"data"`
	SendTemplateID   int64    `json:"sendTemplateId,omitempty"`
}

// ImportStatsQuery filters import statistics. At least one field must be set.
type ImportStatsQuery struct {
	Status           ImportStatus
	Limit            int
	ImportTemplateID int64
}

// ImportTemplate maps the columns of an import file onto recipients
type ImportTemplate struct {
	ImportTemplateID   int64     `json:"importTemplateId,omitempty"`
	Title              string    `json:"title,omitempty"`
	Type               string    `json:"type,omitempty"`
	Delimiter          Delimiter `json:"delimiter,omitempty"`
	ColumnNames        string    `json:"columnNames,omitempty"`
	Channel            Channel   `json:"channel,omitempty"`
	Active             *int      `json:"active,omitempty"`
	Confirmed          *bool     `json:"confirmed,omitempty"`
	SendTemplateID     int64     `json:"sendTemplateId,omitempty"`
	SourceDescription  string    `json:"sourceDescription,omitempty"`
	SignupMethod       string    `json:"signupMethod,omitempty"`
	ListIDs            []int64   `json:"listIds,omitempty"`
	PurgeListIDs       []int64   `json:"purgeListIds,omitempty"`
	SuppressionListIDs []int64   `json:"suppressionListIds,omitempty"`
	WatchDirectory     string    `json:"watchDirectory,omitempty"`
}

// Validate checks the enumerated fields of the template, then that title,
// type and column names are set
func (t ImportTemplate) Validate() error {
	return firstError(
		t.Delimiter.Validate(true),
		t.Channel.Validate(true),
		OneOfPtr("active", t.Active, []int{1, 0}, false),
		NoNull(optional(t.Title), optional(t.Type), optional(t.ColumnNames)),
	)
}

// Upload starts an import of data through a template
func (s *ImportService) Upload(ctx context.Context, req ImportRequest) (*Import, error) {
	if err := NoNull(req.Data); err != nil {
		return nil, err
	}

	var result Import
	if err := s.client.Do(ctx, http.MethodPost, importPath, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Status retrieves the state of a single import
func (s *ImportService) Status(ctx context.Context, importID int64) (*Import, error) {
	var result Import
	path := importPath + strconv.FormatInt(importID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats lists imports matching query
func (s *ImportService) Stats(ctx context.Context, query ImportStatsQuery) ([]Import, error) {
	params := map[string]any{
		"status":           optional(string(query.Status)),
		"limit":            optionalInt(int64(query.Limit)),
		"importTemplateId": optionalInt(query.ImportTemplateID),
	}
	if err := firstError(
		NotAllNull(params["status"], params["limit"], params["importTemplateId"]),
		query.Status.Validate(false),
	); err != nil {
		return nil, err
	}

	var imports []Import
	if err := s.client.Do(ctx, http.MethodGet, importPath+BuildQuery(params), nil, &imports); err != nil {
		return nil, err
	}
	return imports, nil
}

// Create creates an import template
func (s *ImportTemplateService) Create(ctx context.Context, template ImportTemplate) (*ImportTemplate, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}

	var created ImportTemplate
	if err := s.client.Do(ctx, http.MethodPost, importTemplatePath, template, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update modifies an import template identified by its ImportTemplateID
func (s *ImportTemplateService) Update(ctx context.Context, template ImportTemplate) (*ImportTemplate, error) {
	if err := firstError(NoNull(optionalInt(template.ImportTemplateID)), template.Validate()); err != nil {
		return nil, err
	}

	var updated ImportTemplate
	if err := s.client.Do(ctx, http.MethodPut, importTemplatePath, template, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get retrieves a single import template
func (s *ImportTemplateService) Get(ctx context.Context, importTemplateID int64) (*ImportTemplate, error) {
	var template ImportTemplate
	path := importTemplatePath + strconv.FormatInt(importTemplateID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// List retrieves import templates. A limit of zero returns PostUp's default page.
func (s *ImportTemplateService) List(ctx context.Context, limit int) ([]ImportTemplate, error) {
	var templates []ImportTemplate
	path := importTemplatePath + BuildQuery(map[string]any{"limit": optionalInt(int64(limit))})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// optionalInt returns nil for zero so it reads as absent.
func optionalInt(n int64) *int64 {
	if n == 0 {
		return nil
	}
	return &n
}
