package postup

import (
	"context"
	"net/http"
	"strconv"
)

const (
	sendTemplatePath     = "/sendtemplate/"
	testMailingPath      = "/testmailing/"
	triggeredMailingPath = "/templatemailing/"
)

// SendTemplateService handles the /sendtemplate endpoints
type SendTemplateService service

// TestMailingService sends test copies of a mailing
type TestMailingService service

// TriggeredMailingService sends mailings through a send template
type TriggeredMailingService service

// SendTemplate is a reusable mailing used for triggered sends
type SendTemplate struct {
	SendTemplateID                    int64           `json:"sendTemplateId,omitempty"`
	Title                             string          `json:"title,omitempty"`
	BrandID                           int64           `json:"brandId,omitempty"`
	CampaignID                        int64           `json:"campaignId,omitempty"`
	CategoryID                        int64           `json:"categoryId,omitempty"`
	Channel                           Channel         `json:"channel,omitempty"`
	Content                           *MailingContent `json:"content,omitempty"`
	AllowTriggeredUnsubSends          *bool           `json:"allowTriggeredUnsubSends,omitempty"`
	AllowTriggeredHeldAndBlockedSends *bool           `json:"allowTriggeredHeldAndBlockedSends,omitempty"`
}

// TestMailingRequest sends a mailing to a handful of addresses
type TestMailingRequest struct {
	MailingID int64       `json:"mailingId"`
	Addresses []string    `json:"addresses"`
	Part      MailingPart `json:"part,omitempty"`
}

// TriggeredMailingRequest sends a template to recipients. Content overrides
// the template's content when set.
type TriggeredMailingRequest struct {
	SendTemplateID int64              `json:"sendTemplateId"`
	Recipients     []TriggerRecipient `json:"recipients"`
	Content        *MailingContent    `json:"content,omitempty"`
}

// Create creates a send template. Channel and Content are required.
func (s *SendTemplateService) Create(ctx context.Context, template SendTemplate) (*SendTemplate, error) {
	if err := firstError(NoNull(template.Content), template.Channel.Validate(true)); err != nil {
		return nil, err
	}

	var created SendTemplate
	if err := s.client.Do(ctx, http.MethodPost, sendTemplatePath, template, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update modifies a send template
func (s *SendTemplateService) Update(ctx context.Context, sendTemplateID int64, template SendTemplate) (*SendTemplate, error) {
	if err := template.Channel.Validate(false); err != nil {
		return nil, err
	}

	template.SendTemplateID = sendTemplateID

	var updated SendTemplate
	path := sendTemplatePath + strconv.FormatInt(sendTemplateID, 10)
	if err := s.client.Do(ctx, http.MethodPut, path, template, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get retrieves a single send template
func (s *SendTemplateService) Get(ctx context.Context, sendTemplateID int64) (*SendTemplate, error) {
	var template SendTemplate
	path := sendTemplatePath + strconv.FormatInt(sendTemplateID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &template); err != nil {
		return nil, err
	}
	return &template, nil
}

// ListByChannel retrieves the send templates of a channel
func (s *SendTemplateService) ListByChannel(ctx context.Context, channel Channel) ([]SendTemplate, error) {
	if err := channel.Validate(true); err != nil {
		return nil, err
	}

	var templates []SendTemplate
	path := sendTemplatePath + BuildQuery(map[string]any{"channel": string(channel)})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// List retrieves send templates. A limit of zero returns PostUp's default page.
func (s *SendTemplateService) List(ctx context.Context, limit int) ([]SendTemplate, error) {
	var templates []SendTemplate
	path := sendTemplatePath + BuildQuery(map[string]any{"limit": optionalInt(int64(limit))})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Send delivers a test copy of a mailing
func (s *TestMailingService) Send(ctx context.Context, req TestMailingRequest) (Object, error) {
	if err := firstError(NoNull(optionalInt(req.MailingID), req.Addresses), req.Part.Validate(false)); err != nil {
		return nil, err
	}

	var result Object
	if err := s.client.Do(ctx, http.MethodPost, testMailingPath, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Send triggers a send template for each recipient
func (s *TriggeredMailingService) Send(ctx context.Context, req TriggeredMailingRequest) (Object, error) {
	if err := NoNull(optionalInt(req.SendTemplateID), req.Recipients); err != nil {
		return nil, err
	}
	for _, recipient := range req.Recipients {
		if err := NoNull(optional(recipient.Address)); err != nil {
			return nil, err
		}
	}

	var result Object
	if err := s.client.Do(ctx, http.MethodPost, triggeredMailingPath, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}
