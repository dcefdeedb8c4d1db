package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nugget/twitch-eventsub-ws/internal/config"
	"github.com/nugget/twitch-eventsub-ws/internal/httpkit"
)

// RESTClient abstracts the Helix REST side-channel Controller uses to
// create and tear down subscriptions. Tests substitute a fake to drive
// place()'s error-classification branches without a real HTTP call.
type RESTClient interface {
	CreateSubscription(ctx context.Context, req Request, sessionID string) (serverSubscriptionID string, err error)
	DeleteSubscription(ctx context.Context, serverSubscriptionID string) error
}

// ErrClass classifies a REST failure for place()'s retry decision.
type ErrClass int

const (
	ErrClassOther ErrClass = iota
	ErrClassBadRequest
	ErrClassUnauthorized
	ErrClassForbidden
	ErrClassConflict
	ErrClassRatelimited
)

func (c ErrClass) String() string {
	switch c {
	case ErrClassBadRequest:
		return "bad_request"
	case ErrClassUnauthorized:
		return "unauthorized"
	case ErrClassForbidden:
		return "forbidden"
	case ErrClassConflict:
		return "conflict"
	case ErrClassRatelimited:
		return "ratelimited"
	default:
		return "other"
	}
}

// Permanent reports whether c should never be retried.
func (c ErrClass) Permanent() bool {
	switch c {
	case ErrClassBadRequest, ErrClassUnauthorized, ErrClassForbidden:
		return true
	default:
		return false
	}
}

func classifyStatus(code int) ErrClass {
	switch code {
	case http.StatusBadRequest:
		return ErrClassBadRequest
	case http.StatusUnauthorized:
		return ErrClassUnauthorized
	case http.StatusForbidden:
		return ErrClassForbidden
	case http.StatusConflict:
		return ErrClassConflict
	case http.StatusTooManyRequests:
		return ErrClassRatelimited
	default:
		return ErrClassOther
	}
}

// RESTError is returned by httpRESTClient for any non-2xx Helix
// response, carrying enough to classify it.
type RESTError struct {
	StatusCode int
	Body       string
}

func (e *RESTError) Error() string {
	return fmt.Sprintf("helix: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Class classifies e by HTTP status code.
func (e *RESTError) Class() ErrClass { return classifyStatus(e.StatusCode) }

// classify extracts an ErrClass from err, defaulting to Other for
// transport-level failures that never reached a response.
func classify(err error) ErrClass {
	if restErr, ok := err.(*RESTError); ok {
		return restErr.Class()
	}
	return ErrClassOther
}

// httpRESTClient implements RESTClient against Twitch's Helix API,
// built on internal/httpkit's shared client construction.
type httpRESTClient struct {
	client      *http.Client
	baseURL     string
	clientID    string
	accessToken string
}

// NewHTTPRESTClient builds the production RESTClient from rest
// credentials, reusing httpkit's shared transport/timeout defaults.
func NewHTTPRESTClient(rest config.RESTConfig, opts ...httpkit.ClientOption) RESTClient {
	return &httpRESTClient{
		client:      httpkit.NewClient(opts...),
		baseURL:     rest.BaseURL,
		clientID:    rest.ClientID,
		accessToken: rest.AccessToken,
	}
}

type createSubscriptionRequest struct {
	Type      string            `json:"type"`
	Version   string            `json:"version"`
	Condition map[string]string `json:"condition"`
	Transport struct {
		Method    string `json:"method"`
		SessionID string `json:"session_id"`
	} `json:"transport"`
}

type createSubscriptionResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *httpRESTClient) CreateSubscription(ctx context.Context, req Request, sessionID string) (string, error) {
	body := createSubscriptionRequest{
		Type:      req.Type,
		Version:   req.Version,
		Condition: req.ConditionMap(),
	}
	body.Transport.Method = "websocket"
	body.Transport.SessionID = sessionID

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode subscription request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/eventsub/subscriptions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.setAuthHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer httpkit.DrainAndClose(resp.Body, 1<<16)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return "", &RESTError{StatusCode: resp.StatusCode, Body: string(b)}
	}

	var decoded createSubscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode subscription response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return "", fmt.Errorf("helix: create subscription response had no data")
	}
	return decoded.Data[0].ID, nil
}

func (c *httpRESTClient) DeleteSubscription(ctx context.Context, serverSubscriptionID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/eventsub/subscriptions?id="+serverSubscriptionID, nil)
	if err != nil {
		return err
	}
	c.setAuthHeaders(httpReq)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpkit.DrainAndClose(resp.Body, 1<<16)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		return &RESTError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	return nil
}

func (c *httpRESTClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("Client-Id", c.clientID)
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
}

var _ RESTClient = (*httpRESTClient)(nil)
