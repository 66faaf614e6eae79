// Package intakeclient is an HTTP client for the loan intake REST API.
package intakeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/loanintake/internal/application/dto"
	"github.com/bibbank/loanintake/internal/domain/model"
	"github.com/bibbank/loanintake/internal/domain/valueobject"
)

// APIError is a non-2xx response. It unwraps to the matching domain
// sentinel where one exists, so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("intake api: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("intake api: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return model.ErrUnauthorized
	case http.StatusNotFound:
		return model.ErrApplicationNotFound
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return model.ErrStoreUnavailable
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends token as the bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// Client calls one intake server.
type Client struct {
	base  *url.URL
	http  *http.Client
	token string
}

// New creates a client for the server at baseURL, e.g. http://localhost:8087.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", baseURL)
	}
	c := &Client{base: u, http: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken changes the bearer credential, e.g. after Login.
func (c *Client) SetToken(token string) { c.token = token }

// Quote fetches an EMI quote. full requests the whole schedule.
func (c *Client) Quote(ctx context.Context, principal, ratePercent decimal.Decimal, years int, full bool) (dto.EMIQuoteResponse, error) {
	q := url.Values{}
	q.Set("principal", principal.String())
	q.Set("rate", ratePercent.String())
	q.Set("years", strconv.Itoa(years))
	if full {
		q.Set("full", "true")
	}
	var out dto.EMIQuoteResponse
	err := c.doJSON(ctx, http.MethodGet, "/api/emi?"+q.Encode(), nil, &out)
	return out, err
}

// Submit sends an application. A 422 is returned as *model.ValidationError.
func (c *Client) Submit(ctx context.Context, req dto.SubmitApplicationRequest) (dto.SubmitApplicationResponse, error) {
	var out dto.SubmitApplicationResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/loans", req, &out)
	return out, err
}

// Login exchanges the admin password for a session token and keeps it for
// later admin calls.
func (c *Client) Login(ctx context.Context, password string) (dto.AdminLoginResponse, error) {
	var out dto.AdminLoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/admin/login", dto.AdminLoginRequest{Password: password}, &out); err != nil {
		return out, err
	}
	c.token = out.Token
	return out, nil
}

// List returns stored applications newest first, optionally for one date.
func (c *Client) List(ctx context.Context, date string) (dto.ListApplicationsResponse, error) {
	path := "/api/admin/loans"
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}
	var out dto.ListApplicationsResponse
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// Delete removes one application.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/admin/loans/"+url.PathEscape(id), nil, nil)
}

// DeleteDay removes every application created on date.
func (c *Client) DeleteDay(ctx context.Context, date string) (dto.DeleteApplicationsResponse, error) {
	var out dto.DeleteApplicationsResponse
	err := c.doJSON(ctx, http.MethodDelete, "/api/admin/loans?date="+url.QueryEscape(date), nil, &out)
	return out, err
}

// Export downloads one day of applications. A day with nothing to export
// comes back with Empty set and no error.
func (c *Client) Export(ctx context.Context, req dto.ExportRequest) (dto.ExportResponse, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/export", req)
	if err != nil {
		return dto.ExportResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		apiErr := decodeAPIError(resp)
		var ae *APIError
		if errors.As(apiErr, &ae) {
			return dto.ExportResponse{Empty: true, Message: ae.Message}, nil
		}
		return dto.ExportResponse{}, apiErr
	}
	if resp.StatusCode != http.StatusOK {
		return dto.ExportResponse{}, decodeAPIError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return dto.ExportResponse{}, fmt.Errorf("read export: %w", err)
	}
	out := dto.ExportResponse{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		out.Filename = params["filename"]
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// send performs the request. Transport failures are reported as
// model.ErrStoreUnavailable.
func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return resp, nil
}

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func decodeAPIError(resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body) //nolint:errcheck // body is best effort

	if resp.StatusCode == http.StatusUnprocessableEntity && len(body.Fields) > 0 {
		fields := make(valueobject.FieldErrors, len(body.Fields))
		for name, msg := range body.Fields {
			if f, ok := valueobject.ParseField(name); ok {
				fields[f] = msg
			}
		}
		return model.NewValidationError(fields)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
}
