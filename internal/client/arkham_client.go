package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"wallet_enricher/internal/app/port"
	"wallet_enricher/internal/domain/entity"
	"wallet_enricher/internal/pkg/metrics"
)

const (
	endpointPortfolio = "portfolio"
	endpointLabel     = "intelligence"

	userAgent = "wallet-enricher"
)

// ArkhamConfig configures the Arkham intelligence client.
type ArkhamConfig struct {
	BaseURL           string
	APIKey            string
	RequestDelay      time.Duration // slept before every request
	RateLimitCooldown time.Duration // slept after a 429
	Timeout           time.Duration
	// Limiter is shared by all sessions when set.
	Limiter *rate.Limiter
}

// ArkhamClient creates per-worker sessions against the Arkham API.
type ArkhamClient struct {
	cfg    ArkhamConfig
	logger *zap.Logger
	sleep  func(time.Duration)
	now    func() time.Time
}

// NewArkhamClient creates a new ArkhamClient.
func NewArkhamClient(cfg ArkhamConfig, logger *zap.Logger) *ArkhamClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ArkhamClient{
		cfg:    cfg,
		logger: logger.Named("ArkhamClient"),
		sleep:  time.Sleep,
		now:    time.Now,
	}
}

// NewSession opens a session owning its own connection pool. Sessions are not safe for concurrent use.
func (c *ArkhamClient) NewSession() port.VendorSession {
	return &ArkhamSession{
		parent: c,
		http: &fasthttp.Client{
			Name:         userAgent,
			ReadTimeout:  c.cfg.Timeout,
			WriteTimeout: c.cfg.Timeout,
		},
	}
}

// ArkhamSession is one worker's connection to the Arkham API.
type ArkhamSession struct {
	parent *ArkhamClient
	http   *fasthttp.Client
}

// FetchLabel queries /intelligence/address/{address}/all.
func (s *ArkhamSession) FetchLabel(ctx context.Context, address string) entity.Result[entity.WalletLabel] {
	uri := fmt.Sprintf("%s/intelligence/address/%s/all", s.parent.cfg.BaseURL, url.PathEscape(address))

	body, err := s.get(ctx, endpointLabel, address, uri)
	if err != nil {
		return entity.Failure[entity.WalletLabel](err)
	}

	label, err := entity.ParseWalletLabel(address, body)
	if err != nil {
		return entity.Failure[entity.WalletLabel](s.decodeError(endpointLabel, address, body, err))
	}
	return entity.Success(label)
}

// FetchPortfolio queries /portfolio/address/{address}. asOfMillis of 0 uses the current time.
func (s *ArkhamSession) FetchPortfolio(ctx context.Context, address string, asOfMillis int64) entity.Result[entity.WalletPortfolio] {
	if asOfMillis == 0 {
		asOfMillis = s.parent.now().UnixMilli()
	}
	uri := fmt.Sprintf("%s/portfolio/address/%s?time=%s",
		s.parent.cfg.BaseURL, url.PathEscape(address), strconv.FormatInt(asOfMillis, 10))

	body, err := s.get(ctx, endpointPortfolio, address, uri)
	if err != nil {
		return entity.Failure[entity.WalletPortfolio](err)
	}

	portfolio, err := entity.ParseWalletPortfolio(address, body)
	if err != nil {
		return entity.Failure[entity.WalletPortfolio](s.decodeError(endpointPortfolio, address, body, err))
	}
	return entity.Success(portfolio)
}

// Close releases idle connections held by the session.
func (s *ArkhamSession) Close() {
	s.http.CloseIdleConnections()
}

// get performs exactly one GET after the fixed request delay and returns a copy of the 200 body.
func (s *ArkhamSession) get(ctx context.Context, endpoint, address, uri string) ([]byte, error) {
	c := s.parent
	c.sleep(c.cfg.RequestDelay)

	if c.cfg.Limiter != nil {
		if err := c.cfg.Limiter.Wait(ctx); err != nil {
			metrics.VendorRequests.WithLabelValues(endpoint, string(entity.FetchErrorTransport)).Inc()
			return nil, &entity.FetchError{Kind: entity.FetchErrorTransport, Address: address, Err: err}
		}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set("API-Key", c.cfg.APIKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Requesting Arkham API", zap.String("endpoint", endpoint), zap.String("address", address))

	if err := s.http.DoTimeout(req, resp, c.cfg.Timeout); err != nil {
		kind := entity.FetchErrorTransport
		if errors.Is(err, fasthttp.ErrTimeout) {
			kind = entity.FetchErrorTimeout
			c.logger.Warn("Arkham request timed out", zap.String("address", address), zap.Duration("timeout", c.cfg.Timeout))
		} else {
			c.logger.Error("Failed to execute request to Arkham", zap.String("address", address), zap.Error(err))
		}
		metrics.VendorRequests.WithLabelValues(endpoint, string(kind)).Inc()
		return nil, &entity.FetchError{Kind: kind, Address: address, Err: err}
	}

	status := resp.StatusCode()
	rawBody := resp.Body()

	switch status {
	case fasthttp.StatusOK:
		metrics.VendorRequests.WithLabelValues(endpoint, "ok").Inc()
		return append([]byte(nil), rawBody...), nil
	case fasthttp.StatusTooManyRequests:
		c.logger.Warn("Too many requests, API rate limit",
			zap.String("address", address),
			zap.ByteString("responseBody", rawBody),
			zap.Duration("cooldown", c.cfg.RateLimitCooldown))
		metrics.VendorRequests.WithLabelValues(endpoint, string(entity.FetchErrorRateLimited)).Inc()
		c.sleep(c.cfg.RateLimitCooldown)
		return nil, &entity.FetchError{
			Kind:       entity.FetchErrorRateLimited,
			Address:    address,
			StatusCode: status,
			Body:       string(rawBody),
		}
	default:
		c.logger.Error("Arkham API request failed",
			zap.String("address", address),
			zap.Int("statusCode", status),
			zap.String("reason", statusReason(status)),
			zap.ByteString("responseBody", rawBody))
		metrics.VendorRequests.WithLabelValues(endpoint, string(entity.FetchErrorStatus)).Inc()
		return nil, &entity.FetchError{
			Kind:       entity.FetchErrorStatus,
			Address:    address,
			StatusCode: status,
			Body:       string(rawBody),
		}
	}
}

func (s *ArkhamSession) decodeError(endpoint, address string, body []byte, err error) error {
	s.parent.logger.Error("Failed to decode Arkham response",
		zap.String("endpoint", endpoint),
		zap.String("address", address),
		zap.ByteString("responseBody", body),
		zap.Error(err))
	return &entity.FetchError{Kind: entity.FetchErrorDecode, Address: address, StatusCode: fasthttp.StatusOK, Err: err}
}

func statusReason(status int) string {
	switch status {
	case fasthttp.StatusBadRequest:
		return "request parameter error"
	case fasthttp.StatusUnauthorized:
		return "unauthorized access"
	case fasthttp.StatusInternalServerError:
		return "server internal error"
	default:
		return fasthttp.StatusMessage(status)
	}
}
