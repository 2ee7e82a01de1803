package postup

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// DefaultBaseURL is the PostUp REST API root
	DefaultBaseURL = "https://api.postup.com/api"
	// DefaultUserAgent identifies this client to PostUp
	DefaultUserAgent = "PostUpApiWrapper/1.0"
	// DefaultTimeout bounds every request
	DefaultTimeout = 5 * time.Second
)

// Body is an untyped request body. Keys holding nil values are removed
// before the body is sent.
type Body map[string]any

// service is embedded by every resource group to reach the shared client.
type service struct {
	client *Client
}

// Client represents a PostUp API client. It is safe for concurrent use;
// its configuration is fixed once NewClient returns.
type Client struct {
	baseURL           string
	token             string
	userAgent         string
	timeout           time.Duration
	statusPassthrough bool
	httpClient        *http.Client
	metrics           *Metrics
	logger            zerolog.Logger

	common service

	Brands              *BrandService
	Campaigns           *CampaignService
	CampaignStatistics  *CampaignStatisticService
	Content             *ContentService
	ContentFolders      *ContentFolderService
	CustomFields        *CustomFieldService
	Imports             *ImportService
	ImportTemplates     *ImportTemplateService
	LinkStatistics      *LinkStatisticService
	Lists               *ListService
	ListSubscriptions   *ListSubscriptionService
	Mailings            *MailingService
	Recipients          *RecipientService
	RecipientPrivacy    *RecipientPrivacyService
	RecipientEngagement *RecipientEngagementService
	SendTemplates       *SendTemplateService
	Site                *SiteService
	TestMailings        *TestMailingService
	TriggeredMailings   *TriggeredMailingService
}

// NewClient creates a new PostUp client. The credentials are encoded once
// into the Basic authorization token used by every request.
func NewClient(username, password string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidConfig)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidConfig)
	}

	c := &Client{
		baseURL:   DefaultBaseURL,
		token:     base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	c.common.client = c
	c.Brands = (*BrandService)(&c.common)
	c.Campaigns = (*CampaignService)(&c.common)
	c.CampaignStatistics = (*CampaignStatisticService)(&c.common)
	c.Content = (*ContentService)(&c.common)
	c.ContentFolders = (*ContentFolderService)(&c.common)
	c.CustomFields = (*CustomFieldService)(&c.common)
	c.Imports = (*ImportService)(&c.common)
	c.ImportTemplates = (*ImportTemplateService)(&c.common)
	c.LinkStatistics = (*LinkStatisticService)(&c.common)
	c.Lists = (*ListService)(&c.common)
	c.ListSubscriptions = (*ListSubscriptionService)(&c.common)
	c.Mailings = (*MailingService)(&c.common)
	c.Recipients = (*RecipientService)(&c.common)
	c.RecipientPrivacy = (*RecipientPrivacyService)(&c.common)
	c.RecipientEngagement = (*RecipientEngagementService)(&c.common)
	c.SendTemplates = (*SendTemplateService)(&c.common)
	c.Site = (*SiteService)(&c.common)
	c.TestMailings = (*TestMailingService)(&c.common)
	c.TriggeredMailings = (*TriggeredMailingService)(&c.common)

	return c, nil
}

// BaseURL returns the API root requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TestConnection verifies the credentials by listing brands
func (c *Client) TestConnection(ctx context.Context) error {
	if _, err := c.Brands.List(ctx); err != nil {
		return err
	}
	return nil
}

// Request sends method and path (including any query string) through the
// pipeline and returns the normalized response: an Object, a []any, a
// scalar, or nil for an empty body.
//
// Transport failures return a *ConnectionError. Malformed response bodies
// return a *ValidationError. Status codes >= 400 return an *APIError unless
// the client was built WithStatusPassthrough.
func (c *Client) Request(ctx context.Context, method, path string, body any) (any, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	requestID := uuid.NewString()
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.recordTransportError(method, time.Since(start))
		c.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Msg("PostUp request failed")
		return nil, newConnectionError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.recordTransportError(method, time.Since(start))
		return nil, newConnectionError(fmt.Errorf("failed to read response body: %w", err))
	}

	duration := time.Since(start)
	c.metrics.recordRequest(method, resp.StatusCode, duration)
	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("PostUp request completed")

	if resp.StatusCode >= http.StatusBadRequest && !c.statusPassthrough {
		return nil, newAPIError(resp.StatusCode, data)
	}

	if resp.StatusCode < http.StatusMultipleChoices && len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	if err := ValidJSON(data); err != nil {
		return nil, err
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, jsonError(JSONErrorSyntax, err)
	}

	return Normalize(decoded)
}

// Do is Request followed by decoding the normalized response into out,
// matching fields by their json tags.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	result, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || result == nil {
		return nil
	}
	return decodeInto(result, out)
}

func decodeInto(result, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.DecodeHookFuncType(timestampHook),
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// timestampHook parses string fields decoded into time.Time.
func timestampHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	if s == "" {
		return time.Time{}, nil
	}
	return ParseTimestamp(s)
}

// CleanBody returns a copy of body without the keys whose value is absent.
func CleanBody(body Body) Body {
	cleaned := make(Body, len(body))
	for key, value := range body {
		if isAbsent(value) {
			continue
		}
		cleaned[key] = value
	}
	return cleaned
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case Body:
		cleaned := CleanBody(b)
		if len(cleaned) == 0 {
			return nil, nil
		}
		body = cleaned
	case map[string]any:
		cleaned := CleanBody(b)
		if len(cleaned) == 0 {
			return nil, nil
		}
		body = cleaned
	}

	if isAbsent(body) {
		return nil, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	if s := string(data); s == "{}" || s == "null" {
		return nil, nil
	}
	return data, nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    http.StatusText(statusCode),
		Body:       string(body),
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"message", "errorMessage", "error"} {
			if msg, ok := payload[key].(string); ok && msg != "" {
				apiErr.Message = msg
				break
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		apiErr.Message = text
	}

	return apiErr
}
