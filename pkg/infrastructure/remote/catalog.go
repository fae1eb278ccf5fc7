package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

// CatalogClient reads the public catalog. BaseURL is the full catalog URL,
// e.g. https://fake-coffee-api.vercel.app/api.
type CatalogClient struct {
	endpoint
}

var _ model.CatalogSource = (*CatalogClient)(nil)

func NewCatalogClient(cfg Config, logger logrus.FieldLogger) (*CatalogClient, error) {
	e, err := newEndpoint(cfg, logger.WithField("component", "catalog"))
	if err != nil {
		return nil, err
	}
	return &CatalogClient{endpoint: e}, nil
}

func (c *CatalogClient) FetchCatalog(ctx context.Context, limit int) ([]model.CatalogItem, error) {
	const op = "fetchCatalog"
	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	status, resp, err := c.do(ctx, op, http.MethodGet, "", query, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejection(op, status, resp, 0)
	}
	return c.decodeItems(op, status, resp)
}
