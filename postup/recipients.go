package postup

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	recipientPath           = "/recipient/"
	recipientPrivacyPath    = "/recipient/privacy/"
	recipientEngagementPath = "/recipientsengagement/"

	defaultRecipientConcurrency = 4
)

// RecipientService handles the /recipient endpoints
type RecipientService service

// RecipientPrivacyService handles the /recipient/privacy endpoints
type RecipientPrivacyService service

// RecipientEngagementService handles the /recipientsengagement endpoints
type RecipientEngagementService service

// Recipient is a PostUp recipient as returned by the API. Demographics are
// decoded from PostUp's "key=value" list.
type Recipient struct {
	RecipientID          int64             `json:"recipientId,omitempty"`
	Address              string            `json:"address,omitempty"`
	ExternalID           string            `json:"externalId,omitempty"`
	Channel              Channel           `json:"channel,omitempty"`
	Status               RecipientStatus   `json:"status,omitempty"`
	SourceDescription    string            `json:"sourceDescription,omitempty"`
	SourceSignupDate     string            `json:"sourceSignupDate,omitempty"`
	SignupIP             string            `json:"signupIP,omitempty"`
	SignupMethod         string            `json:"signupMethod,omitempty"`
	ThirdPartySource     string            `json:"thirdPartySource,omitempty"`
	ThirdPartySignupDate *time.Time        `json:"thirdPartySignupDate,omitempty"`
	DateJoined           *time.Time        `json:"dateJoined,omitempty"`
	DateUnsub            *time.Time        `json:"dateUnsub,omitempty"`
	Password             string            `json:"password,omitempty"`
	Resubscribe          *bool             `json:"resubscribe,omitempty"`
	Demographics         map[string]string `json:"demographics,omitempty"`
}

// recipientBody is the request body shape of a recipient. Read-only dates
// are left out and demographics go back to "key=value" pairs.
type recipientBody Recipient

func (r recipientBody) MarshalJSON() ([]byte, error) {
	type alias Recipient
	wire := struct {
		alias
		ThirdPartySignupDate string    `json:"thirdPartySignupDate,omitempty"`
		DateJoined           *struct{} `json:"dateJoined,omitempty"`
		DateUnsub            *struct{} `json:"dateUnsub,omitempty"`
		Demographics         []string  `json:"demographics,omitempty"`
	}{
		alias:        alias(r),
		Demographics: DemographicsToString(r.Demographics),
	}
	if r.ThirdPartySignupDate != nil {
		wire.ThirdPartySignupDate = FormatTimestamp(*r.ThirdPartySignupDate)
	}
	return json.Marshal(wire)
}

// Validate checks the enumerated fields of the recipient
func (r Recipient) Validate(channelRequired bool) error {
	return firstError(
		r.Channel.Validate(channelRequired),
		r.Status.Validate(false),
		IsDate("thirdPartySignupDate", r.ThirdPartySignupDate, false),
	)
}

// EngagementRange bounds an engagement report
type EngagementRange struct {
	Type  EngagementType
	Start time.Time
	End   time.Time
}

// Create creates a recipient. Address, ExternalID and Channel are required.
func (s *RecipientService) Create(ctx context.Context, recipient Recipient) (*Recipient, error) {
	if err := firstError(
		NoNull(optional(recipient.Address), optional(recipient.ExternalID)),
		recipient.Validate(true),
	); err != nil {
		return nil, err
	}

	var created Recipient
	if err := s.client.Do(ctx, http.MethodPost, recipientPath, recipientBody(recipient), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update modifies a recipient. Only the fields that are set are sent.
func (s *RecipientService) Update(ctx context.Context, recipientID int64, recipient Recipient) (*Recipient, error) {
	if err := recipient.Validate(false); err != nil {
		return nil, err
	}

	var updated Recipient
	path := recipientPath + strconv.FormatInt(recipientID, 10)
	if err := s.client.Do(ctx, http.MethodPut, path, recipientBody(recipient), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get retrieves a single recipient
func (s *RecipientService) Get(ctx context.Context, recipientID int64) (*Recipient, error) {
	var recipient Recipient
	path := recipientPath + strconv.FormatInt(recipientID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &recipient); err != nil {
		return nil, err
	}
	return &recipient, nil
}

// GetByExternalID retrieves the recipients sharing an external ID
func (s *RecipientService) GetByExternalID(ctx context.Context, externalID string) ([]Recipient, error) {
	var recipients []Recipient
	path := recipientPath + BuildQuery(map[string]any{"externalId": externalID})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

// GetByEmail retrieves the recipients with an address
func (s *RecipientService) GetByEmail(ctx context.Context, address string) ([]Recipient, error) {
	var recipients []Recipient
	path := recipientPath + BuildQuery(map[string]any{"address": address})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &recipients); err != nil {
		return nil, err
	}
	return recipients, nil
}

// GetMany fetches several recipients concurrently, at most concurrency at a
// time. The first failure cancels the remaining requests.
func (s *RecipientService) GetMany(ctx context.Context, recipientIDs []int64, concurrency int) (map[int64]*Recipient, error) {
	if concurrency <= 0 {
		concurrency = defaultRecipientConcurrency
	}

	var mu sync.Mutex
	results := make(map[int64]*Recipient, len(recipientIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, id := range recipientIDs {
		g.Go(func() error {
			recipient, err := s.Get(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			results[id] = recipient
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Delete removes a recipient's personal data within scope
func (s *RecipientPrivacyService) Delete(ctx context.Context, address string, scope PrivacyScope) (Object, error) {
	if err := firstError(NoNull(optional(address)), scope.Validate(true)); err != nil {
		return nil, err
	}

	var result Object
	path := recipientPrivacyPath + BuildQuery(map[string]any{"address": address, "scope": string(scope)})
	if err := s.client.Do(ctx, http.MethodDelete, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get retrieves the personal data stored for a recipient
func (s *RecipientPrivacyService) Get(ctx context.Context, recipientID int64) (Object, error) {
	var result Object
	path := recipientPrivacyPath + strconv.FormatInt(recipientID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByEmail retrieves the personal data stored for an address
func (s *RecipientPrivacyService) GetByEmail(ctx context.Context, address string) (Object, error) {
	var result Object
	path := recipientPrivacyPath + BuildQuery(map[string]any{"address": address})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByDate retrieves one day of engagement events
func (s *RecipientEngagementService) GetByDate(ctx context.Context, engagementType EngagementType, date time.Time) ([]Object, error) {
	if err := firstError(engagementType.Validate(true), IsDate("date", &date, true)); err != nil {
		return nil, err
	}
	return s.fetch(ctx, map[string]any{
		"type": string(engagementType),
		"date": date.Format(statisticsDateLayout),
	})
}

// GetByRange retrieves engagement events between two timestamps
func (s *RecipientEngagementService) GetByRange(ctx context.Context, r EngagementRange) ([]Object, error) {
	if err := firstError(
		r.Type.Validate(true),
		IsDate("startDate", &r.Start, true),
		IsDate("endDate", &r.End, true),
	); err != nil {
		return nil, err
	}
	return s.fetch(ctx, map[string]any{
		"type":      string(r.Type),
		"startDate": FormatTimestamp(r.Start),
		"endDate":   FormatTimestamp(r.End),
	})
}

func (s *RecipientEngagementService) fetch(ctx context.Context, params map[string]any) ([]Object, error) {
	var events []Object
	if err := s.client.Do(ctx, http.MethodGet, recipientEngagementPath+BuildQuery(params), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}
