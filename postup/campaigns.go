package postup

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

const (
	campaignPath          = "/campaign/"
	campaignStatisticPath = "/campaignstatistics/"
	linkStatisticPath     = "/linkstatistics/"

	// statisticsDateLayout is the date format of statistics range queries
	statisticsDateLayout = "2006-01-02"
)

// CampaignService handles the /campaign endpoints
type CampaignService service

// CampaignStatisticService handles the /campaignstatistics endpoints
type CampaignStatisticService service

// LinkStatisticService handles the /linkstatistics endpoints
type LinkStatisticService service

// Campaign represents a PostUp campaign
type Campaign struct {
	CampaignID int64  `json:"campaignId"`
	Title      string `json:"title"`
	ExternalID string `json:"externalId,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// CampaignRequest is the payload for creating a campaign
type CampaignRequest struct {
	Title      string `json:"title"`
	ExternalID string `json:"externalId"`
	Comment    string `json:"comment"`
}

// CampaignStatistic holds the delivery totals of a campaign
type CampaignStatistic struct {
	CampaignID   int64  `json:"campaignId"`
	MailingID    int64  `json:"mailingId,omitempty"`
	Date         string `json:"date,omitempty"`
	Sent         int64  `json:"sent"`
	Delivered    int64  `json:"delivered"`
	Opens        int64  `json:"opens"`
	UniqueOpens  int64  `json:"uniqueOpens"`
	Clicks       int64  `json:"clicks"`
	UniqueClicks int64  `json:"uniqueClicks"`
	Unsubscribes int64  `json:"unsubscribes"`
	Bounces      int64  `json:"bounces"`
	Complaints   int64  `json:"complaints"`
}

// LinkStatistic holds click totals for one link of a mailing
type LinkStatistic struct {
	MailingID    int64  `json:"mailingId"`
	LinkID       int64  `json:"linkId"`
	URL          string `json:"url"`
	Clicks       int64  `json:"clicks"`
	UniqueClicks int64  `json:"uniqueClicks"`
}

// Create creates a campaign
func (s *CampaignService) Create(ctx context.Context, req CampaignRequest) (*Campaign, error) {
	var campaign Campaign
	if err := s.client.Do(ctx, http.MethodPost, campaignPath, req, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Get retrieves a single campaign
func (s *CampaignService) Get(ctx context.Context, campaignID int64) (*Campaign, error) {
	var campaign Campaign
	path := campaignPath + strconv.FormatInt(campaignID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// List retrieves all campaigns
func (s *CampaignService) List(ctx context.Context) ([]Campaign, error) {
	var campaigns []Campaign
	if err := s.client.Do(ctx, http.MethodGet, campaignPath, nil, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Get retrieves all statistics of a campaign
func (s *CampaignStatisticService) Get(ctx context.Context, campaignID int64) ([]CampaignStatistic, error) {
	var stats []CampaignStatistic
	path := campaignStatisticPath + strconv.FormatInt(campaignID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetByDate retrieves the statistics of a campaign between start and end
func (s *CampaignStatisticService) GetByDate(ctx context.Context, campaignID int64, start, end time.Time) ([]CampaignStatistic, error) {
	if err := firstError(IsDate("startDate", &start, true), IsDate("endDate", &end, true)); err != nil {
		return nil, err
	}

	var stats []CampaignStatistic
	path := campaignStatisticPath + strconv.FormatInt(campaignID, 10) + BuildQuery(map[string]any{
		"startDate": start.Format(statisticsDateLayout),
		"endDate":   end.Format(statisticsDateLayout),
	})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// GetByMailing retrieves link statistics for a mailing
func (s *LinkStatisticService) GetByMailing(ctx context.Context, mailingID int64) ([]LinkStatistic, error) {
	var stats []LinkStatistic
	path := linkStatisticPath + BuildQuery(map[string]any{"mailingId": mailingID})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
