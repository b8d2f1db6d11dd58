// Package msgraph provides a minimal Microsoft Graph mail client for paging
// through a mailbox.
package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/pankajverma010101-svg/predict-cpi/internal/resilience"
)

// Message is one mailbox message, trimmed to the fields ingest needs.
type Message struct {
	ID               string    `json:"id"`
	ConversationID   string    `json:"conversationId"`
	Subject          string    `json:"subject"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	Body             Body      `json:"body"`
	From             Recipient `json:"from"`
}

// Body is the message body with its declared content type ("html" or "text").
type Body struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Recipient wraps Graph's nested address shape.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress is a display name plus SMTP address.
type EmailAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Page is one page of messages plus the opaque cursor for the next one.
// NextLink is empty on the last page.
type Page struct {
	Messages []Message
	NextLink string
}

// Client defines the Graph mail operations.
type Client interface {
	// ListMessages pages through a mailbox window. Pass an empty nextLink to
	// start from the window's beginning, or a previously returned NextLink to
	// resume.
	ListMessages(ctx context.Context, mailbox string, since, until time.Time, nextLink string) (*Page, error)
}

// Option configures the Graph client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option { return func(c *httpClient) { c.baseURL = u } }

// WithLoginURL sets a custom token endpoint base (for testing).
func WithLoginURL(u string) Option { return func(c *httpClient) { c.loginURL = u } }

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *httpClient) { c.http = hc } }

// WithPageSize sets the $top page size.
func WithPageSize(n int) Option { return func(c *httpClient) { c.pageSize = n } }

type httpClient struct {
	tenantID     string
	clientID     string
	clientSecret string
	baseURL      string
	loginURL     string
	pageSize     int
	http         *http.Client

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewClient creates a Graph client using the client-credentials flow.
func NewClient(tenantID, clientID, clientSecret string, opts ...Option) Client {
	c := &httpClient{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      "https://graph.microsoft.com/v1.0",
		loginURL:     "https://login.microsoftonline.com",
		pageSize:     50,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) ListMessages(ctx context.Context, mailbox string, since, until time.Time, nextLink string) (*Page, error) {
	reqURL := nextLink
	if reqURL == "" {
		filter := fmt.Sprintf("receivedDateTime ge %s and receivedDateTime lt %s",
			since.UTC().Format(time.RFC3339), until.UTC().Format(time.RFC3339))
		q := url.Values{}
		q.Set("$filter", filter)
		q.Set("$orderby", "receivedDateTime asc")
		q.Set("$top", strconv.Itoa(c.pageSize))
		q.Set("$select", "id,conversationId,subject,receivedDateTime,body,from")
		reqURL = fmt.Sprintf("%s/users/%s/messages?%s", c.baseURL, url.PathEscape(mailbox), q.Encode())
	}

	pol := resilience.Policy{
		Attempts: 5,
		OnRetry:  resilience.RetryLogger("msgraph", "list messages"),
	}

	return resilience.DoVal(ctx, pol, func(ctx context.Context) (*Page, error) {
		return c.fetchPage(ctx, reqURL)
	})
}

type listResponse struct {
	Value    []Message `json:"value"`
	NextLink string    `json:"@odata.nextLink"`
}

func (c *httpClient) fetchPage(ctx context.Context, reqURL string) (*Page, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "msgraph: create request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, resilience.NewTransientError(eris.Wrap(err, "msgraph: request"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "msgraph: read response body")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Token expired or revoked server-side. Drop it so the retry mints a
		// fresh one.
		c.invalidateToken()
		return nil, resilience.NewTransientError(
			eris.Errorf("msgraph: status 401: %s", string(body)), resp.StatusCode)
	case resilience.IsTransientHTTPStatus(resp.StatusCode):
		return nil, resilience.NewTransientError(
			eris.Errorf("msgraph: status %d: %s", resp.StatusCode, string(body)), resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, eris.Errorf("msgraph: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var lr listResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "msgraph: unmarshal response")
	}
	return &Page{Messages: lr.Value, NextLink: lr.NextLink}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached app token, minting a new one when absent or
// within a minute of expiry.
func (c *httpClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExp) > time.Minute {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("scope", "https://graph.microsoft.com/.default")

	tokenURL := fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginURL, url.PathEscape(c.tenantID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "msgraph: create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", resilience.NewTransientError(eris.Wrap(err, "msgraph: token request"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "msgraph: read token body")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("msgraph: token status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", eris.Wrap(err, "msgraph: unmarshal token")
	}
	if tr.AccessToken == "" {
		return "", eris.New("msgraph: empty access token")
	}

	c.token = tr.AccessToken
	c.tokenExp = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return c.token, nil
}

func (c *httpClient) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
