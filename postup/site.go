package postup

import (
	"context"
	"net/http"
)

const sitePath = "/site/"

// SiteService reports on the PostUp site itself
type SiteService service

// SiteStatusQuery filters the site status report
type SiteStatusQuery struct {
	Title   string
	Status  string
	Version string
}

// Status retrieves the health of the PostUp site
func (s *SiteService) Status(ctx context.Context, query SiteStatusQuery) (Object, error) {
	var status Object
	path := sitePath + BuildQuery(map[string]any{
		"title":   optional(query.Title),
		"status":  optional(query.Status),
		"version": optional(query.Version),
	})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &status); err != nil {
		return nil, err
	}
	return status, nil
}
