package postup

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

const mailingPath = "/mailing/"

// MailingService handles the /mailing endpoints
type MailingService service

// scheduleLayout is the format of scheduledTime. PostUp reads it as
// Central time.
const scheduleLayout = "2006-01-02 15:04:05"

// Mailing is a one-off send to one or more lists
type Mailing struct {
	MailingID            int64                `json:"mailingId,omitempty"`
	Title                string               `json:"title,omitempty"`
	Status               string               `json:"status,omitempty"`
	BrandID              int64                `json:"brandId,omitempty"`
	CampaignID           int64                `json:"campaignId,omitempty"`
	CategoryID           int64                `json:"categoryId,omitempty"`
	SegmentID            int64                `json:"segmentId,omitempty"`
	Channel              Channel              `json:"channel,omitempty"`
	ExternalID           string               `json:"externalId,omitempty"`
	Content              *MailingContent      `json:"content,omitempty"`
	ABContent            *ABTestContent       `json:"abContent,omitempty"`
	ABSplitPercent       int                  `json:"aBSplitPercent,omitempty"`
	ABSplitRemainingType ABSplitRemainingType `json:"aBSplitRemainingType,omitempty"`
	ABSplitRemainingTime int                  `json:"aBSplitRemainingTime,omitempty"`
	ClickTrackType       ClickTrackType       `json:"clickTrackType,omitempty"`
	OpenTrackType        OpenTrackType        `json:"openTrackType,omitempty"`
	ListIDs              []int64              `json:"listIds,omitempty"`
	PurgeListIDs         []int64              `json:"purgeListIds,omitempty"`
	SuppressionListIDs   []int64              `json:"suppressionListIds,omitempty"`
	SeedListID           int64                `json:"seedListId,omitempty"`
	Seeds                []string             `json:"seeds,omitempty"`
	Segment              *Segment             `json:"segment,omitempty"`
	BlockDomains         []string             `json:"blockDomains,omitempty"`
	ScheduledTime        *time.Time           `json:"scheduledTime,omitempty"`
	MaxRecips            int64                `json:"maxRecips,omitempty"`
	DelayContentAssembly *bool                `json:"delayContentAssembly,omitempty"`
}

// mailingBody is the request body shape of a mailing, with ScheduledTime in
// PostUp's schedule format. A nil ScheduledTime sends the mailing immediately.
type mailingBody Mailing

func (m mailingBody) MarshalJSON() ([]byte, error) {
	type alias Mailing
	wire := struct {
		alias
		ScheduledTime string `json:"scheduledTime,omitempty"`
	}{alias: alias(m)}
	if m.ScheduledTime != nil {
		wire.ScheduledTime = m.ScheduledTime.Format(scheduleLayout)
	}
	return json.Marshal(wire)
}

// Validate checks the enumerated fields of the mailing, then that title,
// brand, campaign, lists, status and content are all set
func (m Mailing) Validate() error {
	var remainingTime *int
	if m.ABSplitRemainingTime != 0 {
		remainingTime = &m.ABSplitRemainingTime
	}
	return firstError(
		m.Channel.Validate(true),
		m.ClickTrackType.Validate(true),
		m.OpenTrackType.Validate(true),
		m.ABSplitRemainingType.Validate(false),
		OneOfPtr("aBSplitRemainingTime", remainingTime, ABSplitRemainingTimes, false),
		IsDate("scheduledTime", m.ScheduledTime, false),
		NoNull(
			optional(m.Title),
			optionalInt(m.BrandID),
			optionalInt(m.CampaignID),
			m.ListIDs,
			optional(m.Status),
			m.Content,
		),
	)
}

// Create creates a mailing. Everything Validate checks is required.
func (s *MailingService) Create(ctx context.Context, mailing Mailing) (*Mailing, error) {
	if err := mailing.Validate(); err != nil {
		return nil, err
	}

	var created Mailing
	if err := s.client.Do(ctx, http.MethodPost, mailingPath, mailingBody(mailing), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update modifies a mailing identified by its MailingID
func (s *MailingService) Update(ctx context.Context, mailing Mailing) (*Mailing, error) {
	if err := firstError(NoNull(optionalInt(mailing.MailingID)), mailing.Validate()); err != nil {
		return nil, err
	}

	var updated Mailing
	if err := s.client.Do(ctx, http.MethodPut, mailingPath, mailingBody(mailing), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get retrieves a single mailing
func (s *MailingService) Get(ctx context.Context, mailingID int64) (*Mailing, error) {
	var mailing Mailing
	path := mailingPath + strconv.FormatInt(mailingID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &mailing); err != nil {
		return nil, err
	}
	return &mailing, nil
}
