package kma

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/kma-weather-etl/internal/domain"
	"github.com/couchcryptid/kma-weather-etl/internal/observability"
)

const (
	stationPath = "/api/typ02/openApi/SfcMtlyInfoService/getSfcStnLstTbl"
	monthlyPath = "/api/typ01/url/kma_sfctm3.php"

	// resultOK is the only success code in the station directory envelope.
	resultOK = "00"

	endpointStations = "stations"
	endpointMonthly  = "monthly"
)

// Client fetches the station directory and hourly observations from the KMA API hub.
type Client struct {
	authKey        string
	stationAuthKey string
	stationHTTP    *http.Client
	monthlyHTTP    *http.Client
	baseURL        string
	logger         *slog.Logger
	metrics        *observability.Metrics
}

// Options configures a Client.
type Options struct {
	AuthKey        string
	StationAuthKey string // defaults to AuthKey
	BaseURL        string
	StationTimeout time.Duration
	MonthlyTimeout time.Duration
}

// NewClient creates a KMA API hub client.
func NewClient(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Client {
	stationKey := opts.StationAuthKey
	if stationKey == "" {
		stationKey = opts.AuthKey
	}
	return &Client{
		authKey:        opts.AuthKey,
		stationAuthKey: stationKey,
		stationHTTP:    &http.Client{Timeout: opts.StationTimeout},
		monthlyHTTP:    &http.Client{Timeout: opts.MonthlyTimeout},
		baseURL:        opts.BaseURL,
		logger:         logger,
		metrics:        metrics,
	}
}

// FetchStations retrieves the station directory. Any failure is returned; the
// caller must not write a partial directory.
func (c *Client) FetchStations(ctx context.Context) ([]domain.Station, error) {
	const op = "fetch stations"

	params := url.Values{
		"authKey":   {c.stationAuthKey},
		"pageNo":    {"1"},
		"numOfRows": {"1000"},
		"dataType":  {"XML"},
	}
	body, err := c.get(ctx, c.stationHTTP, endpointStations, c.baseURL+stationPath+"?"+params.Encode(), op)
	if err != nil {
		return nil, err
	}

	var env stationEnvelope
	if err := xml.Unmarshal(body, &env); err != nil {
		return nil, &domain.UpstreamError{Op: op, Message: "malformed XML", Err: err}
	}
	if env.Header.ResultCode != resultOK {
		msg := env.Header.ResultMsg
		if msg == "" {
			msg = "missing result code"
		}
		return nil, &domain.UpstreamError{Op: op, Message: fmt.Sprintf("result code %q: %s", env.Header.ResultCode, msg)}
	}

	stations := make([]domain.Station, 0, len(env.Body.Items))
	for _, it := range env.Body.Items {
		id, ok := domain.ParseStationID(it.ID)
		if !ok {
			return nil, &domain.UpstreamError{Op: op, Message: fmt.Sprintf("invalid stn_id %q", it.ID)}
		}
		stations = append(stations, domain.Station{
			ID:        id,
			Name:      it.Name,
			Latitude:  domain.ParseCoordinate(it.Lat),
			Longitude: domain.ParseCoordinate(it.Lon),
		})
	}

	c.logger.Info("station directory fetched", "stations", len(stations))
	return stations, nil
}

// FetchMonth retrieves every station's hourly readings for one month. It never
// fails the caller: errors are logged and reported as MonthFailed.
func (c *Client) FetchMonth(ctx context.Context, ym domain.YearMonth) domain.MonthResult {
	op := "fetch month " + ym.String()
	log := c.logger.With("month", ym.String())

	w := domain.MonthWindow(ym)
	params := url.Values{
		"tm1":     {domain.FormatWire(w.Start)},
		"tm2":     {domain.FormatWire(w.End)},
		"stn":     {"0"},
		"authKey": {c.authKey},
	}

	log.Info("collecting month")
	body, err := c.get(ctx, c.monthlyHTTP, endpointMonthly, c.baseURL+monthlyPath+"?"+params.Encode(), op)
	if err != nil {
		log.Warn("month collection failed", "error", err)
		return domain.MonthResult{Month: ym, Status: domain.MonthFailed, Err: err}
	}

	obs, stats, err := domain.ParseObservations(bytes.NewReader(body))
	if err != nil {
		perr := &domain.UpstreamError{Op: op, Message: "unreadable body", Err: err}
		log.Warn("month collection failed", "error", perr)
		return domain.MonthResult{Month: ym, Status: domain.MonthFailed, Err: perr}
	}
	if len(obs) == 0 {
		log.Info("no data for month")
		return domain.MonthResult{Month: ym, Status: domain.MonthEmpty}
	}

	cleared := 0
	for i := range obs {
		cleared += domain.NormalizeMissing(&obs[i])
	}
	if stats.Coerced > 0 || stats.Skipped > 0 {
		log.Debug("month coercion", "coerced_cells", stats.Coerced, "skipped_lines", stats.Skipped)
	}

	log.Info("month collected", "rows", len(obs), "missing_cells", cleared)
	return domain.MonthResult{Month: ym, Status: domain.MonthOK, Observations: obs}
}

func (c *Client) get(ctx context.Context, hc *http.Client, endpoint, fullURL, op string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.UpstreamError{Op: op, Message: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(body, 200))}
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// Station directory envelope types.

type stationEnvelope struct {
	Header struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items []stationItem `xml:"items>item"`
	} `xml:"body"`
}

type stationItem struct {
	ID   string `xml:"stn_id"`
	Name string `xml:"stn_ko"`
	Lat  string `xml:"lat"`
	Lon  string `xml:"lon"`
}
