package fhir

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gofhir/fhir/r4"

	loincmapper "github.com/gofhir/loinc-mapper"
	"github.com/gofhir/loinc-mapper/internal/logger"
	"github.com/gofhir/loinc-mapper/terminology"
)

const (
	// DefaultBaseURL is the LOINC FHIR terminology service.
	DefaultBaseURL = "https://fhir.loinc.org"

	// LoincSystem is the LOINC code system URI.
	LoincSystem = "http://loinc.org"

	// LoincValueSet is the implicit ValueSet covering all of LOINC.
	LoincValueSet = "http://loinc.org/vs"

	// DefaultTimeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the initial
	// request, so at most 1+DefaultMaxRetries requests go out.
	DefaultMaxRetries = 3

	// DefaultRetryBase is the initial backoff delay; it doubles per
	// retry.
	DefaultRetryBase = 500 * time.Millisecond
)

// Retryable HTTP statuses: rate limiting and transient gateway errors.
func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Client is a LOINC FHIR terminology service client. It implements
// terminology.Service and terminology.Prober.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      Credentials
	maxRetries int
	retryBase  time.Duration
	store      ResponseStore
	log        *logger.Logger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom service base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithRetries sets the retry count (beyond the first request) and the
// initial backoff delay.
func WithRetries(maxRetries int, base time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryBase = base
	}
}

// WithResponseStore attaches a local store that caches raw responses
// by request URL.
func WithResponseStore(store ResponseStore) ClientOption {
	return func(c *Client) {
		c.store = store
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new terminology service client.
func NewClient(creds Credentials, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		baseURL:    DefaultBaseURL,
		creds:      creds,
		maxRetries: DefaultMaxRetries,
		retryBase:  DefaultRetryBase,
		log:        logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Probe verifies the credentials with a cheap CodeSystem read. A
// failure here means every later call would fail the same way.
func (c *Client) Probe(ctx context.Context) error {
	u := fmt.Sprintf("%s/CodeSystem?%s", c.baseURL, url.Values{"url": {LoincSystem}}.Encode())
	_, err := c.get(ctx, "probe", u, false)
	return err
}

// Expand searches LOINC for codes matching filter via ValueSet
// $expand, returning at most count candidates.
func (c *Client) Expand(ctx context.Context, filter string, count int) ([]terminology.Candidate, error) {
	q := url.Values{
		"url":    {LoincValueSet},
		"filter": {filter},
		"count":  {strconv.Itoa(count)},
	}
	u := fmt.Sprintf("%s/ValueSet/$expand?%s", c.baseURL, q.Encode())

	body, err := c.get(ctx, "expand", u, true)
	if err != nil {
		return nil, err
	}

	var vs r4.ValueSet
	if err := json.Unmarshal(body, &vs); err != nil {
		return nil, fmt.Errorf("expand: failed to decode ValueSet: %w", err)
	}
	if vs.Expansion == nil {
		return nil, nil
	}

	var out []terminology.Candidate
	collectContains(vs.Expansion.Contains, &out)
	return out, nil
}

// collectContains flattens the (possibly nested) expansion contains
// list, keeping LOINC entries with a code.
func collectContains(contains []r4.ValueSetExpansionContains, out *[]terminology.Candidate) {
	for i := range contains {
		entry := &contains[i]
		code, display := deref(entry.Code), deref(entry.Display)
		system := deref(entry.System)
		if code != "" && (system == "" || system == LoincSystem) {
			*out = append(*out, terminology.Candidate{Code: code, Display: display})
		}
		if len(entry.Contains) > 0 {
			collectContains(entry.Contains, out)
		}
	}
}

// lookupParameter is one entry of a FHIR Parameters resource, with
// only the value types $lookup actually returns.
type lookupParameter struct {
	Name         string            `json:"name"`
	ValueString  string            `json:"valueString"`
	ValueCode    string            `json:"valueCode"`
	ValueUri     string            `json:"valueUri"`
	ValueBoolean *bool             `json:"valueBoolean"`
	ValueDecimal json.Number       `json:"valueDecimal"`
	ValueInteger *int              `json:"valueInteger"`
	Part         []lookupParameter `json:"part"`
}

// value flattens whichever value[x] field is populated to a string.
func (p *lookupParameter) value() string {
	switch {
	case p.ValueString != "":
		return p.ValueString
	case p.ValueCode != "":
		return p.ValueCode
	case p.ValueUri != "":
		return p.ValueUri
	case p.ValueBoolean != nil:
		return strconv.FormatBool(*p.ValueBoolean)
	case p.ValueDecimal != "":
		return p.ValueDecimal.String()
	case p.ValueInteger != nil:
		return strconv.Itoa(*p.ValueInteger)
	}
	return ""
}

// Lookup fetches the full concept detail for a LOINC code via
// CodeSystem $lookup, flattening the returned properties into a
// ConceptDetail.
func (c *Client) Lookup(ctx context.Context, code string) (*terminology.ConceptDetail, error) {
	q := url.Values{
		"system": {LoincSystem},
		"code":   {code},
	}
	u := fmt.Sprintf("%s/CodeSystem/$lookup?%s", c.baseURL, q.Encode())

	body, err := c.get(ctx, "lookup", u, true)
	if err != nil {
		return nil, err
	}

	var params struct {
		Parameter []lookupParameter `json:"parameter"`
	}
	if err := json.Unmarshal(body, &params); err != nil {
		return nil, fmt.Errorf("lookup %s: failed to decode Parameters: %w", code, err)
	}

	var display, definition string
	props := make(map[string]string)
	for i := range params.Parameter {
		p := &params.Parameter[i]
		switch p.Name {
		case "display":
			display = p.value()
		case "definition":
			definition = p.value()
		case "property":
			var key, val string
			for j := range p.Part {
				part := &p.Part[j]
				switch part.Name {
				case "code":
					key = part.value()
				case "value":
					val = part.value()
				}
			}
			if key != "" {
				props[key] = val
			}
		}
	}
	status := props["STATUS"]
	return terminology.NewConceptDetail(code, display, definition, status, props), nil
}

// get performs a GET with basic auth, retrying transient failures with
// exponential backoff. cacheable requests consult and fill the
// response store when one is attached.
func (c *Client) get(ctx context.Context, op, u string, cacheable bool) ([]byte, error) {
	if cacheable && c.store != nil {
		if body, ok := c.store.Get(op, u); ok {
			return body, nil
		}
	}

	var lastErr error
	delay := c.retryBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			c.log.Debug("%s: retry %d/%d after %s", op, attempt, c.maxRetries, delay)
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
			delay *= 2
		}

		body, retryAfter, err := c.doOnce(ctx, op, u)
		if err == nil {
			if cacheable && c.store != nil {
				if serr := c.store.Put(op, u, body); serr != nil {
					c.log.Warn("%s: response store write failed: %v", op, serr)
				}
			}
			return body, nil
		}
		lastErr = err

		var se *ServiceError
		if !errors.As(err, &se) || !retryable(se.Status) {
			return nil, err
		}
		if retryAfter > 0 {
			delay = retryAfter
		}
	}
	return nil, fmt.Errorf("%s: giving up after %d retries: %w", op, c.maxRetries, lastErr)
}

// doOnce performs a single request. On a retryable status it returns a
// ServiceError plus any Retry-After delay the server asked for.
func (c *Client) doOnce(ctx context.Context, op, u string) (body []byte, retryAfter time.Duration, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Password)
	req.Header.Set("Accept", "application/fhir+json")
	req.Header.Set("User-Agent", loincmapper.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: failed to read response: %w", op, err)
		}
		return body, 0, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, 0, &AuthError{Status: resp.StatusCode}
	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		if retryable(resp.StatusCode) {
			if s := resp.Header.Get("Retry-After"); s != "" {
				if secs, perr := strconv.Atoi(s); perr == nil && secs > 0 {
					retryAfter = time.Duration(secs) * time.Second
				}
			}
		}
		return nil, retryAfter, &ServiceError{Op: op, Status: resp.StatusCode, Msg: string(snippet)}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
