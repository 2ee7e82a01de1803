package postup

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	listPath             = "/list/"
	listSubscriptionPath = "/listsubscription/"
)

// ListService handles the /list endpoints
type ListService service

// ListSubscriptionService handles the /listsubscription endpoints
type ListSubscriptionService service

// List is a mailing list. BlockDomains arrives as a single space separated
// string and is split by the response normalizer.
type List struct {
	ListID          int64    `json:"listId,omitempty"`
	Title           string   `json:"title,omitempty"`
	FriendlyTitle   string   `json:"friendlyTitle,omitempty"`
	Description     string   `json:"description,omitempty"`
	Populated       bool     `json:"populated"`
	PublicSignup    bool     `json:"publicSignup"`
	GlobalUnsub     bool     `json:"globalUnsub"`
	CountRecips     bool     `json:"countRecips"`
	TestMessageList *bool    `json:"testMessageList,omitempty"`
	Channel         Channel  `json:"channel,omitempty"`
	Query           string   `json:"query,omitempty"`
	CategoryID      int64    `json:"categoryId,omitempty"`
	SeedListID      int64    `json:"seedListId,omitempty"`
	CreateTime      string   `json:"createTime,omitempty"`
	Creator         string   `json:"creator,omitempty"`
	ExternalID      string   `json:"externalId,omitempty"`
	Custom1         string   `json:"custom1,omitempty"`
	BlockDomains    []string `json:"blockDomains,omitempty"`
	BrandIDs        []int64  `json:"brandIds,omitempty"`
}

// listBody is the request body shape of a list, with BlockDomains joined
// the way PostUp stores them
type listBody List

func (l listBody) MarshalJSON() ([]byte, error) {
	type alias List
	return json.Marshal(struct {
		alias
		BlockDomains string `json:"blockDomains,omitempty"`
	}{
		alias:        alias(l),
		BlockDomains: strings.Join(l.BlockDomains, " "),
	})
}

// ListSubscription is the membership of a recipient in a list
type ListSubscription struct {
	RecipientID  int64              `json:"recipientId"`
	ListID       int64              `json:"listId"`
	Status       SubscriptionStatus `json:"status,omitempty"`
	ListStatus   string             `json:"listStatus,omitempty"`
	GlobalStatus string             `json:"globalStatus,omitempty"`
	SourceID     string             `json:"sourceId,omitempty"`
	MailingID    string             `json:"mailingId,omitempty"`
	Confirmed    string             `json:"confirmed,omitempty"`
	DateJoined   *time.Time         `json:"dateJoined,omitempty"`
	DateUnsub    *time.Time         `json:"dateUnsub,omitempty"`
}

// SubscribeRequest subscribes a recipient to a list. Confirmed is "true",
// "false" or empty.
type SubscribeRequest struct {
	RecipientID  int64              `json:"recipientId"`
	ListID       int64              `json:"listId"`
	Status       SubscriptionStatus `json:"status"`
	ListStatus   string             `json:"listStatus,omitempty"`
	GlobalStatus string             `json:"globalStatus,omitempty"`
	SourceID     string             `json:"sourceId,omitempty"`
	Confirmed    string             `json:"confirmed,omitempty"`
}

// UnsubscribeRequest removes a recipient from a list
type UnsubscribeRequest struct {
	RecipientID int64              `json:"recipientId"`
	ListID      int64              `json:"listId"`
	Status      SubscriptionStatus `json:"status"`
	MailingID   string             `json:"mailingId,omitempty"`
}

// SubscriberQuery pages through the subscribers of a list. The cursor
// fields are only sent when Limit, LastRecipID and LastListID are all set.
type SubscriberQuery struct {
	ListID      int64
	Limit       int
	LastRecipID int64
	LastListID  int64
}

// Create creates a list
func (s *ListService) Create(ctx context.Context, list List) (*List, error) {
	if err := firstError(NoNull(optional(list.Title)), list.Channel.Validate(true)); err != nil {
		return nil, err
	}

	var created List
	if err := s.client.Do(ctx, http.MethodPost, listPath, listBody(list), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update modifies a list identified by its ListID
func (s *ListService) Update(ctx context.Context, list List) (*List, error) {
	if err := firstError(NoNull(optionalInt(list.ListID)), list.Channel.Validate(true)); err != nil {
		return nil, err
	}

	var updated List
	if err := s.client.Do(ctx, http.MethodPut, listPath, listBody(list), &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Get retrieves a single list
func (s *ListService) Get(ctx context.Context, listID int64) (*List, error) {
	var list List
	path := listPath + strconv.FormatInt(listID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// List retrieves every list on the account
func (s *ListService) List(ctx context.Context) ([]List, error) {
	var lists []List
	if err := s.client.Do(ctx, http.MethodGet, listPath, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// ListByBrand retrieves the lists attached to a brand
func (s *ListService) ListByBrand(ctx context.Context, brandID int64) ([]List, error) {
	var lists []List
	path := listPath + BuildQuery(map[string]any{"brandid": brandID})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Counts retrieves subscriber counts for a list. The report layout varies
// by account, so it is returned as an Object.
func (s *ListService) Counts(ctx context.Context, listID int64) (Object, error) {
	var counts Object
	path := listPath + strconv.FormatInt(listID, 10) + "/counts"
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Subscribe adds a recipient to a list
func (s *ListSubscriptionService) Subscribe(ctx context.Context, req SubscribeRequest) (*ListSubscription, error) {
	if err := firstError(
		req.Status.Validate(true),
		OneOf("confirmed", req.Confirmed, []string{"true", "false"}, false),
	); err != nil {
		return nil, err
	}

	var sub ListSubscription
	if err := s.client.Do(ctx, http.MethodPost, listSubscriptionPath, req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// Unsubscribe removes a recipient from a list
func (s *ListSubscriptionService) Unsubscribe(ctx context.Context, req UnsubscribeRequest) (*ListSubscription, error) {
	if err := req.Status.Validate(true); err != nil {
		return nil, err
	}

	var sub ListSubscription
	if err := s.client.Do(ctx, http.MethodPut, listSubscriptionPath, req, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// IsSubscribed retrieves the subscription of a recipient to a list
func (s *ListSubscriptionService) IsSubscribed(ctx context.Context, recipientID, listID int64) (*ListSubscription, error) {
	var sub ListSubscription
	path := listSubscriptionPath + strconv.FormatInt(listID, 10) + "/" + strconv.FormatInt(recipientID, 10)
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &sub); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ForRecipient retrieves every subscription of a recipient
func (s *ListSubscriptionService) ForRecipient(ctx context.Context, recipientID int64) ([]ListSubscription, error) {
	var subs []ListSubscription
	path := listSubscriptionPath + BuildQuery(map[string]any{"recipid": recipientID})
	if err := s.client.Do(ctx, http.MethodGet, path, nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

// Subscribers retrieves one page of the subscribers of a list
func (s *ListSubscriptionService) Subscribers(ctx context.Context, query SubscriberQuery) ([]ListSubscription, error) {
	params := map[string]any{"listid": query.ListID}
	if query.Limit > 0 && query.LastRecipID > 0 && query.LastListID > 0 {
		params["limit"] = query.Limit
		params["lastrecipid"] = query.LastRecipID
		params["lastlistid"] = query.LastListID
	}

	var subs []ListSubscription
	if err := s.client.Do(ctx, http.MethodGet, listSubscriptionPath+BuildQuery(params), nil, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}
