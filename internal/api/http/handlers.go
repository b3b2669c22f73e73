package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"pairScope/internal/httputil"
	"pairScope/internal/model"
	"pairScope/internal/series"
	"pairScope/internal/stats"
)

// PairStats is the stats.Service surface the API reads.
type PairStats interface {
	Pair(ctx context.Context, address string) model.Result[model.PairStats]
	Peek(address string) (model.Result[model.PairStats], bool)
	EthPrice(ctx context.Context) (model.EthPrice, error)
}

// HourlySeries is the series.Builder surface the API reads.
type HourlySeries interface {
	Hourly(ctx context.Context, pairAddress string, window series.Window) model.HourlyRates
	Peek(pairAddress string, window series.Window) (model.HourlyRates, bool)
}

// LiveRates supplies the current rate used to close the last candle.
type LiveRates interface {
	LiveRate(ctx context.Context, pairAddress string) (float64, error)
}

type Deps struct {
	Stats  PairStats
	Series HourlySeries
	// Live is optional; without it the current candle is omitted.
	Live    LiveRates
	Timeout time.Duration
	Now     func() time.Time
	Log     *zap.Logger
}

type API struct {
	dependency Deps
}

func NewAPI(d Deps) *API {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &API{dependency: d}
}

// PairResponse is the body of GET /api/pairs/{address}.
type PairResponse struct {
	Status model.Status     `json:"status"`
	Pair   *model.PairStats `json:"pair,omitempty"`
	Panels *model.Panels    `json:"panels,omitempty"`
}

// HourlyResponse is the body of GET /api/pairs/{address}/hourly.
type HourlyResponse struct {
	Pair    string                  `json:"pair"`
	Window  series.Window           `json:"window"`
	Status  model.Status            `json:"status"`
	Rate0   []model.HourlyRatePoint `json:"rate0"`
	Rate1   []model.HourlyRatePoint `json:"rate1"`
	Candles []model.Candle          `json:"candles"`
}

func (a *API) Healthz(w http.ResponseWriter, _ *http.Request) {
	if err := httputil.JSON(w, http.StatusOK, map[string]any{}, nil); err != nil {
		a.dependency.Log.Error("healthz write failed", zap.Error(err))
	}
}

func (a *API) Pair(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	if peeked, ok := a.dependency.Stats.Peek(address); ok && peeked.Status == model.StatusPending {
		a.write(w, r, http.StatusAccepted, PairResponse{Status: model.StatusPending})
		return
	}

	ctx, cancel := a.timeout(r.Context())
	defer cancel()

	res := a.dependency.Stats.Pair(ctx, address)
	switch res.Status {
	case model.StatusReady:
		panels := stats.Panels(res.Value)
		a.write(w, r, http.StatusOK, PairResponse{Status: res.Status, Pair: &res.Value, Panels: &panels})
	case model.StatusPending:
		a.write(w, r, http.StatusAccepted, PairResponse{Status: res.Status})
	case model.StatusAbsent:
		a.fail(w, r, http.StatusNotFound, "not_found", "pair not found", nil)
	default:
		if errors.Is(res.Err, stats.ErrInvalidAddress) {
			a.fail(w, r, http.StatusBadRequest, "bad_request", "invalid pair address", nil)
			return
		}
		a.fail(w, r, http.StatusBadGateway, "upstream_failed", "pair fetch failed", errString(res.Err))
	}
}

func (a *API) Hourly(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	window, err := series.ParseWindow(r.URL.Query().Get("window"))
	if err != nil {
		a.fail(w, r, http.StatusBadRequest, "bad_request", err.Error(), nil)
		return
	}

	if peeked, ok := a.dependency.Series.Peek(address, window); ok && peeked.Status == model.StatusPending {
		a.write(w, r, http.StatusAccepted, HourlyResponse{Pair: address, Window: window, Status: model.StatusPending})
		return
	}

	ctx, cancel := a.timeout(r.Context())
	defer cancel()

	rates := a.dependency.Series.Hourly(ctx, address, window)
	if rates.Status == model.StatusFailed {
		a.fail(w, r, http.StatusBadGateway, "upstream_failed", "hourly rates fetch failed", errString(rates.Err))
		return
	}

	status := http.StatusOK
	if rates.Status == model.StatusPending {
		status = http.StatusAccepted
	}
	// absent is a valid empty chart
	a.write(w, r, status, HourlyResponse{
		Pair:    address,
		Window:  window,
		Status:  rates.Status,
		Rate0:   rates.Rate0,
		Rate1:   rates.Rate1,
		Candles: a.candles(ctx, address, rates.Rate0),
	})
}

func (a *API) EthPrice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.timeout(r.Context())
	defer cancel()

	price, err := a.dependency.Stats.EthPrice(ctx)
	if err != nil {
		a.fail(w, r, http.StatusBadGateway, "upstream_failed", "eth price fetch failed", errString(err))
		return
	}
	a.write(w, r, http.StatusOK, price)
}

func (a *API) candles(ctx context.Context, address string, points []model.HourlyRatePoint) []model.Candle {
	if len(points) == 0 {
		return []model.Candle{}
	}
	if a.dependency.Live != nil {
		live, err := a.dependency.Live.LiveRate(ctx, address)
		if err == nil {
			return series.Candles(points, live, a.dependency.Now())
		}
		a.dependency.Log.Warn("live rate unavailable", zap.String("pair", address), zap.Error(err))
	}
	all := series.Candles(points, 0, a.dependency.Now())
	return all[:len(points)]
}

func (a *API) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.dependency.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.dependency.Timeout)
}

func (a *API) write(w http.ResponseWriter, r *http.Request, status int, body any) {
	if err := httputil.JSON(w, status, body, nil); err != nil {
		a.dependency.Log.Error("write response failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	if err := httputil.Error(w, r, status, code, message, details); err != nil {
		a.dependency.Log.Error("write error response failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func errString(err error) any {
	if err == nil {
		return nil
	}
	return map[string]string{"error": err.Error()}
}
