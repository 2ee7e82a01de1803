package postup

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithBaseURL(server.URL)}, opts...)
	client, err := NewClient("user", "secret", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name     string
		username string
		password string
		opts     []Option
		wantErr  bool
		errMsg   string
	}{
		{
			name:     "valid config",
			username: "user",
			password: "secret",
		},
		{
			name:     "missing username",
			password: "secret",
			wantErr:  true,
			errMsg:   "username is required",
		},
		{
			name:     "missing password",
			username: "user",
			wantErr:  true,
			errMsg:   "password is required",
		},
		{
			name:     "empty base URL",
			username: "user",
			password: "secret",
			opts:     []Option{WithBaseURL("")},
			wantErr:  true,
			errMsg:   "base URL is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.username, tt.password, logger, tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DefaultBaseURL, client.BaseURL())
			assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
			assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("user:secret")), client.token)
			assert.NotNil(t, client.Recipients)
			assert.NotNil(t, client.TriggeredMailings)
		})
	}
}

func TestClientOptions(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("with base URL", func(t *testing.T) {
		client, err := NewClient("u", "p", logger, WithBaseURL("https://example.test/api/"))
		require.NoError(t, err)
		assert.Equal(t, "https://example.test/api", client.BaseURL())
	})

	t.Run("with timeout", func(t *testing.T) {
		client, err := NewClient("u", "p", logger, WithTimeout(30*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	})

	t.Run("with custom http client", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		client, err := NewClient("u", "p", logger, WithHTTPClient(customClient))
		require.NoError(t, err)
		assert.Same(t, customClient, client.httpClient)
	})

	t.Run("with user agent", func(t *testing.T) {
		client, err := NewClient("u", "p", logger, WithUserAgent("custom/2.0"))
		require.NoError(t, err)
		assert.Equal(t, "custom/2.0", client.userAgent)
	})
}

func TestRequest_Headers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/brand/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))

		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "user", username)
		assert.Equal(t, "secret", password)

		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)

		_, _ = w.Write([]byte(`[]`))
	})

	result, err := client.Request(context.Background(), http.MethodGet, "/brand/", nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, result)
}

func TestRequest_StripsNullFields(t *testing.T) {
	var received map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	var missing *string
	body := Body{
		"title":   "Weekly",
		"comment": nil,
		"source":  missing,
		"active":  false,
		"count":   0,
	}

	_, err := client.Request(context.Background(), http.MethodPost, "/campaign/", body)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "Weekly", "active": false, "count": float64(0)}, received)
}

func TestRequest_EmptyBodyNotSent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Empty(t, body)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.Request(context.Background(), http.MethodPost, "/x/", Body{"a": nil})
	require.NoError(t, err)
}

func TestRequest_NormalizesResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"recipientId":5,"demographics":["city=Oslo"],"blockDomains":"a.com b.com"}`))
	})

	result, err := client.Request(context.Background(), http.MethodGet, "/recipient/5", nil)
	require.NoError(t, err)

	obj, ok := result.(Object)
	require.True(t, ok)
	assert.Equal(t, float64(5), obj["recipientId"])
	assert.Equal(t, map[string]string{"city": "Oslo"}, obj["demographics"])
	assert.Equal(t, []string{"a.com", "b.com"}, obj["blockDomains"])
}

func TestRequest_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient("user", "secret", zerolog.Nop(), WithBaseURL(baseURL))
	require.NoError(t, err)

	_, err = client.Request(context.Background(), http.MethodGet, "/brand/", nil)
	require.Error(t, err)

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, 500, connErr.Code)
	assert.Equal(t, "unable to connect to PostUp", connErr.Message)
	assert.NotNil(t, connErr.Err)
	assert.ErrorIs(t, err, ErrConnection)
	assert.True(t, IsConnectionError(err))
	assert.False(t, IsValidationError(err))
}

func TestRequest_MalformedJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"a":1`))
	})

	_, err := client.Request(context.Background(), http.MethodGet, "/brand/", nil)
	vErr := validationKind(t, err)
	assert.Equal(t, KindJSON, vErr.Kind)
	assert.Equal(t, JSONErrorSyntax, vErr.JSONKind)
}

func TestRequest_InvalidDateInResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dateJoined":"not a date"}`))
	})

	_, err := client.Request(context.Background(), http.MethodGet, "/recipient/1", nil)
	assert.Equal(t, KindDate, validationKind(t, err).Kind)
}

func TestRequest_EmptySuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	result, err := client.Request(context.Background(), http.MethodDelete, "/recipient/privacy/?address=a", nil)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRequest_APIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		notFound   bool
		unauthored bool
	}{
		{name: "json message", status: http.StatusBadRequest, body: `{"message":"bad channel"}`, wantMsg: "bad channel"},
		{name: "plain text", status: http.StatusInternalServerError, body: "boom", wantMsg: "boom"},
		{name: "empty body", status: http.StatusNotFound, body: "", wantMsg: "Not Found", notFound: true},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad credentials"}`, wantMsg: "bad credentials", unauthored: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.Request(context.Background(), http.MethodGet, "/list/1", nil)
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.body, apiErr.Body)
			assert.Equal(t, tt.notFound, IsNotFound(err))
			assert.Equal(t, tt.unauthored, IsUnauthorized(err))
		})
	}
}

func TestRequest_StatusPassthrough(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorCode":"INVALID","message":"bad"}`))
	}, WithStatusPassthrough())

	result, err := client.Request(context.Background(), http.MethodGet, "/list/1", nil)
	require.NoError(t, err)
	assert.Equal(t, Object{"errorCode": "INVALID", "message": "bad"}, result)
}

func TestRequest_ContextCanceled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Request(ctx, http.MethodGet, "/brand/", nil)
	require.Error(t, err)
	assert.True(t, IsConnectionError(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDo_DecodesTypedResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"recipientId": 12,
			"address": "jane@example.com",
			"channel": "E",
			"status": "N",
			"dateJoined": "2024-05-06 07:08:09",
			"thirdPartySignupDate": "2024-01-01T00:00:00Z",
			"demographics": ["city=Oslo", "tier=gold"]
		}`))
	})

	var recipient Recipient
	err := client.Do(context.Background(), http.MethodGet, "/recipient/12", nil, &recipient)
	require.NoError(t, err)

	assert.Equal(t, int64(12), recipient.RecipientID)
	assert.Equal(t, ChannelEmail, recipient.Channel)
	assert.Equal(t, RecipientNormal, recipient.Status)
	require.NotNil(t, recipient.DateJoined)
	assert.Equal(t, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC), *recipient.DateJoined)
	assert.Nil(t, recipient.DateUnsub)
	require.NotNil(t, recipient.ThirdPartySignupDate)
	assert.Equal(t, 2024, recipient.ThirdPartySignupDate.Year())
	assert.Equal(t, map[string]string{"city": "Oslo", "tier": "gold"}, recipient.Demographics)
}

func TestDo_SingleObjectIntoSlice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"brandId": 3, "title": "Main"}`))
	})

	var brands []Brand
	require.NoError(t, client.Do(context.Background(), http.MethodGet, "/brand/", nil, &brands))
	require.Len(t, brands, 1)
	assert.Equal(t, "Main", brands[0].Title)
}

func TestCleanBody(t *testing.T) {
	var nilSlice []string
	body := Body{"a": 1, "b": nil, "c": nilSlice, "d": "", "e": []string{}}

	cleaned := CleanBody(body)
	assert.Equal(t, Body{"a": 1, "d": "", "e": []string{}}, cleaned)
	assert.Len(t, body, 5)
}

func TestTestConnection(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/brand/", r.URL.Path)
		_, _ = w.Write([]byte(`[{"brandId":1,"title":"Main"}]`))
	})
	assert.NoError(t, client.TestConnection(context.Background()))

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	err := failing.TestConnection(context.Background())
	assert.True(t, IsUnauthorized(err))
}
