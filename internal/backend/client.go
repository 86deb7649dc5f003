// Package backend reads public catalog data from a remote catalog backend.
// Requests never carry credentials.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caffeinepub/saree-catalogue-portal/internal/domain"
	apperrors "github.com/caffeinepub/saree-catalogue-portal/pkg/errors"
	"github.com/caffeinepub/saree-catalogue-portal/pkg/httpclient"
)

const serviceName = "catalog-backend"

type envelope[T any] struct {
	Data T `json:"data"`
}

// Client implements repository.PublicCatalogReader over HTTP.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// New builds a client for baseURL with retries and a circuit breaker.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	cfg := httpclient.DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	cfg.UserAgent = "saree-catalogue-portal/" + serviceName

	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig(serviceName),
		logger,
	)
	return NewWithClient(baseURL, cb, logger)
}

// NewWithClient builds a client around an existing breaker client.
func NewWithClient(baseURL string, c *httpclient.CircuitBreakerClient, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid backend url %q", baseURL)
	}
	return &Client{
		http:    c,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}, nil
}

// PublicCatalog fetches the owner's catalog for ct.
func (c *Client) PublicCatalog(ctx context.Context, owner string, ct domain.CustomerType) ([]domain.Product, error) {
	endpoint := c.baseURL + "/public/v1/catalogs/" + url.PathEscape(owner) +
		"?customer_type=" + url.QueryEscape(ct.Token())

	var env envelope[[]domain.Product]
	if err := c.get(ctx, endpoint, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []domain.Product{}
	}
	return env.Data, nil
}

// PublicProduct fetches one product. A 404 becomes apperrors.ErrNotFound.
func (c *Client) PublicProduct(ctx context.Context, owner string, id uint64) (*domain.Product, error) {
	endpoint := c.baseURL + "/public/v1/products/" + url.PathEscape(owner) + "/" + strconv.FormatUint(id, 10)

	var env envelope[*domain.Product]
	if err := c.get(ctx, endpoint, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, apperrors.NotFound("product", strconv.FormatUint(id, 10))
	}
	return env.Data, nil
}

// Ping checks the backend's liveness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.Get(ctx, c.baseURL+"/health/live")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s liveness returned %d", serviceName, resp.StatusCode)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, dst any) error {
	resp, err := c.http.Get(ctx, endpoint)
	if err != nil {
		if errors.Is(err, httpclient.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "backend circuit open", slog.String("url", endpoint))
		}
		return fmt.Errorf("get %s: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", serviceName, err)
	}
	return nil
}
