// Package client is the HTTP implementation of the itinerary store's remote
// trip-storage collaborator. Each call carries the bearer token it is given;
// the client holds no session state of its own.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultPageSize = domain.MaxPageLimit
	defaultMaxPages = 20
)

// compile-time check: Client must satisfy itinerary.Remote.
var _ itinerary.Remote = (*Client)(nil)

// Client talks to the trip-storage API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	pageSize   int
	maxPages   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 15s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithPageSize sets how many summaries ListTrips requests per page and how
// many pages it walks at most.
func WithPageSize(size, maxPages int) Option {
	return func(c *Client) {
		c.pageSize = size
		c.maxPages = maxPages
	}
}

// New returns a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        slog.New(slog.DiscardHandler),
		pageSize:   defaultPageSize,
		maxPages:   defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---- wire types -------------------------------------------------------------

type tripBody struct {
	Title       string        `json:"title"`
	Destination string        `json:"destination"`
	DayCount    int           `json:"day_count"`
	Itinerary   []domain.Item `json:"itinerary"`
}

type listBody struct {
	Data       []domain.TripSummary `json:"data"`
	Pagination struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	} `json:"pagination"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ---- itinerary.Remote -------------------------------------------------------

// ListTrips returns every saved trip summary, most recently updated first.
// It walks the paginated list until a short page, the reported total, or
// the page cap is reached.
func (c *Client) ListTrips(ctx context.Context, token string) ([]domain.TripSummary, error) {
	out := []domain.TripSummary{}
	for page := 1; page <= c.maxPages; page++ {
		p := domain.PaginationParams{Page: page, Limit: c.pageSize}
		q := url.Values{}
		q.Set("page", strconv.Itoa(p.Page))
		q.Set("limit", strconv.Itoa(p.Limit))

		var body listBody
		if err := c.do(ctx, token, http.MethodGet, "/trips?"+q.Encode(), nil, &body); err != nil {
			return nil, fmt.Errorf("client.Client.ListTrips: %w", err)
		}
		out = append(out, body.Data...)
		if !p.More(len(body.Data), int64(body.Pagination.Total)) {
			return out, nil
		}
	}
	c.log.Warn("trip list truncated", "pages", c.maxPages, "trips", len(out))
	return out, nil
}

// GetTrip returns trip id with its full itinerary.
func (c *Client) GetTrip(ctx context.Context, token string, id uuid.UUID) (domain.Trip, error) {
	var trip domain.Trip
	if err := c.do(ctx, token, http.MethodGet, "/trips/"+id.String(), nil, &trip); err != nil {
		return domain.Trip{}, fmt.Errorf("client.Client.GetTrip: %w", err)
	}
	if trip.Itinerary == nil {
		trip.Itinerary = []domain.Item{}
	}
	return trip, nil
}

// SaveTrip creates trip with POST when it has no id and replaces it with
// PUT otherwise. It returns the id the service stored the trip under.
func (c *Client) SaveTrip(ctx context.Context, token string, trip domain.Trip) (uuid.UUID, error) {
	body := tripBody{
		Title:       trip.Title,
		Destination: trip.Destination,
		DayCount:    trip.DayCount,
		Itinerary:   trip.Itinerary,
	}
	if body.Itinerary == nil {
		body.Itinerary = []domain.Item{}
	}

	method, path := http.MethodPost, "/trips"
	if trip.ID != uuid.Nil {
		method, path = http.MethodPut, "/trips/"+trip.ID.String()
	}

	var saved domain.Trip
	if err := c.do(ctx, token, method, path, body, &saved); err != nil {
		return uuid.Nil, fmt.Errorf("client.Client.SaveTrip: %w", err)
	}
	if saved.ID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("client.Client.SaveTrip: %w: response carried no id", domain.ErrRemote)
	}
	return saved.ID, nil
}

// DeleteTrip deletes trip id.
func (c *Client) DeleteTrip(ctx context.Context, token string, id uuid.UUID) error {
	if err := c.do(ctx, token, http.MethodDelete, "/trips/"+id.String(), nil, nil); err != nil {
		return fmt.Errorf("client.Client.DeleteTrip: %w", err)
	}
	return nil
}

// ---- transport --------------------------------------------------------------

// do sends one request. in, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, token, method, path string, in, out any) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}

	var reqBody io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrRemote, err)
	}
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRemote, err)
	}
	defer resp.Body.Close()
	c.log.Debug("api request", "method", method, "path", path, "status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrRemote, err)
	}
	return nil
}

// statusError maps a non-2xx response onto the domain sentinels.
func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	var body errorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil && body.Error.Message != "" {
		msg = body.Error.Message
	}

	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthenticated
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusUnprocessableEntity:
		sentinel = domain.ErrValidation
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrRemote, resp.StatusCode, msg)
	}
	return &StatusError{Code: resp.StatusCode, Message: msg, err: sentinel}
}

// StatusError is a rejected request. It unwraps to the matching domain
// sentinel (ErrUnauthenticated, ErrNotFound or ErrValidation).
type StatusError struct {
	Code    int
	Message string
	err     error
}

func (e *StatusError) Error() string { return e.err.Error() + ": " + e.Message }

func (e *StatusError) Unwrap() error { return e.err }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}
