package sportradar

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchstats-etl/internal/platform/logging"
	"github.com/riskibarqy/matchstats-etl/internal/platform/resilience"
	"github.com/riskibarqy/matchstats-etl/internal/platform/xmltree"
	"github.com/riskibarqy/matchstats-etl/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL    = "https://api.sportradar.com/soccer-extended/production/v4/en"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 2
	defaultRetryDelay = 2 * time.Second
	maxBodyBytes      = 16 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`api_key=[^&\s"']+`)
var errSportradarTransient = crerr.New("sportradar transient failure")
var errResponseTooLarge = crerr.Newf("response too large: exceeds %d bytes", maxBodyBytes)

var scheduleNamespaces = map[string]string{"ns": usecase.SummaryNamespace}

var (
	pathSchedule            = xmltree.MustCompile(".//ns:schedule", scheduleNamespaces)
	pathScheduleSportEvent  = xmltree.MustCompile(".//ns:sport_event", scheduleNamespaces)
	pathScheduleCompetitors = xmltree.MustCompile(".//ns:competitor", scheduleNamespaces)
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries     int
	RetryDelay     time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads season schedules and match summaries from the soccer-extended
// v4 XML API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	retryDelay time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
}

var _ usecase.SummaryProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.HTTPClient != nil {
		copied := *cfg.HTTPClient
		httpClient = &copied
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	// api_key is set beneath otelhttp and never reaches span attributes.
	httpClient.Transport = otelhttp.NewTransport(
		apiKeyTransport{next: base, apiKey: strings.TrimSpace(cfg.APIKey)},
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "sportradar " + r.Method + " " + routeOf(r.URL.Path)
		}),
	)

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("sportradar circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		logger:     logger,
		breaker:    breaker,
	}
}

func (c *Client) ListSeasonSchedule(ctx context.Context, seasonID string) ([]usecase.ScheduledEvent, error) {
	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return nil, fmt.Errorf("%w: season id is required", usecase.ErrInvalidInput)
	}

	raw, err := c.doXML(ctx, "/seasons/"+url.PathEscape(seasonID)+"/schedules.xml")
	if err != nil {
		return nil, fmt.Errorf("fetch schedule season_id=%s: %w", seasonID, err)
	}
	events, err := parseSchedule(raw)
	if err != nil {
		return nil, fmt.Errorf("decode schedule season_id=%s: %w", seasonID, err)
	}
	c.logger.InfoContext(ctx, "season schedule loaded", "season_id", seasonID, "events", len(events))
	return events, nil
}

func (c *Client) FetchEventSummary(ctx context.Context, eventID string) ([]byte, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", usecase.ErrInvalidInput)
	}
	raw, err := c.doXML(ctx, "/sport_events/"+url.PathEscape(eventID)+"/summary.xml")
	if err != nil {
		return nil, fmt.Errorf("fetch summary event_id=%s: %w", eventID, err)
	}
	return raw, nil
}

// parseSchedule lists the events of a schedules document. Missing team names
// read as "Unknown".
func parseSchedule(raw []byte) ([]usecase.ScheduledEvent, error) {
	doc, err := xmltree.ParseBytes(raw)
	if err != nil {
		return nil, err
	}

	schedules := doc.FindAll(pathSchedule)
	out := make([]usecase.ScheduledEvent, 0, len(schedules))
	for _, schedule := range schedules {
		sportEvent := schedule.Find(pathScheduleSportEvent)
		eventID, ok := sportEvent.Attr("id")
		if !ok || strings.TrimSpace(eventID) == "" {
			continue
		}
		item := usecase.ScheduledEvent{EventID: eventID, HomeTeam: "Unknown", AwayTeam: "Unknown"}
		item.StartTime, _ = sportEvent.Attr("start_time")
		for _, competitor := range sportEvent.FindAll(pathScheduleCompetitors) {
			qualifier, _ := competitor.Attr("qualifier")
			name, _ := competitor.Attr("name")
			switch qualifier {
			case "home":
				item.HomeTeam = name
			case "away":
				item.AwayTeam = name
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (c *Client) doXML(ctx context.Context, path string) ([]byte, error) {
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "sportradar circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return nil, fmt.Errorf("%w: sport data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + path

	raw, err, _ := c.flight.Do(path, func() ([]byte, error) {
		return c.executeRequest(ctx, fullURL)
	})
	if err != nil && isSportradarCircuitFailure(err) {
		c.breaker.RecordFailure()
	} else {
		c.breaker.RecordSuccess()
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/xml")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("%w: send request: %s", errSportradarTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case crerr.Is(readErr, errResponseTooLarge):
				c.logger.WarnContext(ctx, "sportradar response too large", "url", redactAPIURL(fullURL), "limit", maxBodyBytes)
				return nil, readErr
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errSportradarTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errSportradarTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				lastErr = fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				c.logger.WarnContext(ctx, "sportradar request rejected", "url", redactAPIURL(fullURL), "status", resp.StatusCode)
				return nil, lastErr
			}
		}

		if attempt == c.maxRetries {
			break
		}
		c.logger.WarnContext(ctx, "sportradar request retry",
			"url", redactAPIURL(fullURL),
			"attempt", attempt+1,
			"error", lastErr,
		)
		timer := time.NewTimer(c.retryDelay * time.Duration(attempt+1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "sportradar request failed", "url", redactAPIURL(fullURL), "error", lastErr)
	return nil, lastErr
}

type apiKeyTransport struct {
	next   http.RoundTripper
	apiKey string
}

func (t apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	query := out.URL.Query()
	query.Set("api_key", t.apiKey)
	out.URL.RawQuery = query.Encode()
	return t.next.RoundTrip(out)
}

// routeOf keeps span names low-cardinality by dropping ids from the path.
func routeOf(path string) string {
	switch {
	case strings.HasSuffix(path, "/schedules.xml"):
		return "/seasons/{season_id}/schedules.xml"
	case strings.HasSuffix(path, "/summary.xml"):
		return "/sport_events/{event_id}/summary.xml"
	default:
		return "other"
	}
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxBodyBytes+1)); err != nil {
		return nil, err
	}
	if buf.Len() > maxBodyBytes {
		return nil, errResponseTooLarge
	}
	return append([]byte(nil), buf.B...), nil
}

func isSportradarCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errSportradarTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "api_key=REDACTED")
}

func redactAPIURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return apiKeyParamRegex.ReplaceAllString(rawURL, "api_key=REDACTED")
	}
	query := parsed.Query()
	if query.Has("api_key") {
		query.Set("api_key", "REDACTED")
		parsed.RawQuery = query.Encode()
	}
	return parsed.String()
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
