package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/agendahub/agenda-api/config"
	"github.com/agendahub/agenda-api/pkg/circuitbreaker"
	apperrors "github.com/agendahub/agenda-api/pkg/errors"
)

// Client talks to the hosted backend's REST surface with the anon key.
// Repeated transport failures open the breaker so requests fail fast into
// the local fallback instead of hanging on a dead connection.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
}

func NewClient(cfg config.BackendConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("backend URL is required")
	}
	if cfg.AnonKey == "" {
		return nil, fmt.Errorf("backend anon key is required")
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		breaker: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:             "backend",
			FailureThreshold: 5,
			Timeout:          30 * time.Second,
		}),
	}, nil
}

// Ping probes the REST root. Any response the server managed to send counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUnavailable("backend", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return apperrors.NewUnavailable("backend", fmt.Errorf("status %d", resp.StatusCode))
	}
	return nil
}

// From starts a query builder for a table.
func (c *Client) From(table string) *QueryBuilder {
	return &QueryBuilder{
		client: c,
		table:  table,
	}
}

// QueryBuilder accumulates PostgREST filter params.
type QueryBuilder struct {
	client     *Client
	table      string
	columns    string
	filters    url.Values
	orders     []string
	limit      int
	single     bool
	onConflict string
}

func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.columns = columns
	return q
}

func (q *QueryBuilder) filter(column, op string, value interface{}) *QueryBuilder {
	if q.filters == nil {
		q.filters = url.Values{}
	}
	q.filters.Add(column, fmt.Sprintf("%s.%v", op, value))
	return q
}

func (q *QueryBuilder) Eq(column string, value interface{}) *QueryBuilder {
	return q.filter(column, "eq", value)
}

func (q *QueryBuilder) Gte(column string, value interface{}) *QueryBuilder {
	return q.filter(column, "gte", value)
}

func (q *QueryBuilder) Lt(column string, value interface{}) *QueryBuilder {
	return q.filter(column, "lt", value)
}

func (q *QueryBuilder) Lte(column string, value interface{}) *QueryBuilder {
	return q.filter(column, "lte", value)
}

// Or adds a raw or-expression, e.g. "(name.ilike.*ana*,email.ilike.*ana*)".
func (q *QueryBuilder) Or(expr string) *QueryBuilder {
	if q.filters == nil {
		q.filters = url.Values{}
	}
	q.filters.Add("or", expr)
	return q
}

func (q *QueryBuilder) Order(column string, ascending bool) *QueryBuilder {
	dir := "asc"
	if !ascending {
		dir = "desc"
	}
	q.orders = append(q.orders, fmt.Sprintf("%s.%s", column, dir))
	return q
}

func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limit = n
	return q
}

// Single makes the read expect exactly one object; the backend answers 406
// when the row is missing.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.single = true
	return q
}

// OnConflict names the unique columns a subsequent Upsert merges on.
func (q *QueryBuilder) OnConflict(columns string) *QueryBuilder {
	q.onConflict = columns
	return q
}

func (q *QueryBuilder) params() url.Values {
	params := url.Values{}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	for column, values := range q.filters {
		for _, v := range values {
			params.Add(column, v)
		}
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	if q.onConflict != "" {
		params.Set("on_conflict", q.onConflict)
	}
	return params
}

func (q *QueryBuilder) endpoint() string {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.table)
	if params := q.params(); len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// Get runs the select and decodes rows into dest.
func (q *QueryBuilder) Get(ctx context.Context, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint(), nil)
	if err != nil {
		return err
	}
	q.client.setHeaders(req)
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}

	resp, err := q.client.do(req, q.table)
	if err != nil {
		return err
	}
	if dest == nil || len(resp.Body) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body, dest)
}

// Count returns the exact row count for the current filters.
func (q *QueryBuilder) Count(ctx context.Context) (int, error) {
	q.columns = "id"
	q.limit = 1

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint(), nil)
	if err != nil {
		return 0, err
	}
	q.client.setHeaders(req)
	req.Header.Set("Prefer", "count=exact")

	resp, err := q.client.do(req, q.table)
	if err != nil {
		return 0, err
	}
	return parseContentRange(resp.Headers.Get("Content-Range"))
}

// Insert posts data and decodes the representation into dest when non-nil.
func (q *QueryBuilder) Insert(ctx context.Context, data, dest interface{}) error {
	return q.write(ctx, http.MethodPost, data, dest, "return=representation")
}

// Upsert merges on the OnConflict columns.
func (q *QueryBuilder) Upsert(ctx context.Context, data, dest interface{}) error {
	return q.write(ctx, http.MethodPost, data, dest, "resolution=merge-duplicates,return=representation")
}

// Update patches the rows matched by the current filters.
func (q *QueryBuilder) Update(ctx context.Context, data, dest interface{}) error {
	return q.write(ctx, http.MethodPatch, data, dest, "return=representation")
}

// Delete removes the rows matched by the current filters and reports how
// many were returned.
func (q *QueryBuilder) Delete(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, q.endpoint(), nil)
	if err != nil {
		return 0, err
	}
	q.client.setHeaders(req)
	req.Header.Set("Prefer", "return=representation")

	resp, err := q.client.do(req, q.table)
	if err != nil {
		return 0, err
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(resp.Body, &rows); err != nil {
		return 0, nil
	}
	return len(rows), nil
}

func (q *QueryBuilder) write(ctx context.Context, method string, data, dest interface{}, prefer string) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.endpoint(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	q.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", prefer)

	resp, err := q.client.do(req, q.table)
	if err != nil {
		return err
	}
	if dest == nil || len(resp.Body) == 0 {
		return nil
	}
	return json.Unmarshal(resp.Body, dest)
}

type response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// do runs the request through the breaker. Transport failures and 5xx trip
// it; responses the backend actually produced (4xx) do not.
func (c *Client) do(req *http.Request, entity string) (*response, error) {
	var resp *response

	err := c.breaker.Execute(func() error {
		httpResp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer httpResp.Body.Close()

		body, err := readBody(httpResp)
		if err != nil {
			return err
		}
		resp = &response{
			StatusCode: httpResp.StatusCode,
			Body:       body,
			Headers:    httpResp.Header,
		}
		if httpResp.StatusCode >= 500 {
			return fmt.Errorf("status %d", httpResp.StatusCode)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrOpen) || resp == nil || resp.StatusCode >= 500 {
			return nil, apperrors.NewUnavailable("backend", err)
		}
		return nil, apperrors.NewInternal(err)
	}

	if resp.StatusCode >= 400 {
		return nil, mapStatus(entity, resp)
	}
	return resp, nil
}

// mapStatus turns PostgREST error responses into application errors.
func mapStatus(entity string, resp *response) error {
	detail := fmt.Errorf("status %d: %s", resp.StatusCode, pgrstMessage(resp.Body))

	switch resp.StatusCode {
	case http.StatusNotAcceptable, http.StatusNotFound:
		return apperrors.NewNotFound(entity, detail)
	case http.StatusConflict:
		return apperrors.NewConflict(entity, detail)
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperrors.Unauthorized(detail)
	case http.StatusBadRequest:
		return apperrors.NewBadRequest(pgrstMessage(resp.Body), detail)
	default:
		return apperrors.NewInternal(detail)
	}
}

func pgrstMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return errResp.Message
	}
	return "backend error"
}

func readBody(resp *http.Response) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// parseContentRange extracts the total from a "0-0/42" style header.
func parseContentRange(header string) (int, error) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 || idx == len(header)-1 {
		return 0, fmt.Errorf("missing count in Content-Range %q", header)
	}
	total := header[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("backend did not count rows")
	}
	return strconv.Atoi(total)
}
