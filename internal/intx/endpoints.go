package intx

import (
	"context"
	"net/url"
	"strconv"
)

const apiPrefix = "/api/v1"

// Endpoint names used in logs and metrics.
const (
	EndpointPortfolios = "portfolios"
	EndpointFills      = "fills"
	EndpointTransfers  = "transfers"
	EndpointBalances   = "balances"
	EndpointPositions  = "positions"
	EndpointSummary    = "summary"
)

// TransferQuery is the single page of transfers requested. Later pages are
// not fetched.
type TransferQuery struct {
	ResultLimit int
	Type        string
}

func DefaultTransferQuery() TransferQuery {
	return TransferQuery{ResultLimit: 100, Type: "ALL"}
}

func (c *Client) portfolioPath(resource string) string {
	return apiPrefix + "/portfolios/" + url.PathEscape(c.accountID) + "/" + resource
}

// Portfolios lists every portfolio the key can see. It is not scoped to the
// client's account.
func (c *Client) Portfolios(ctx context.Context) (Result, error) {
	return c.get(ctx, EndpointPortfolios, apiPrefix+"/portfolios", nil)
}

// Fills returns {"results": [...]} with the account's executed trades.
func (c *Client) Fills(ctx context.Context) (Result, error) {
	return c.get(ctx, EndpointFills, c.portfolioPath("fills"), nil)
}

// Transfers returns {"results": [...]} capped at the configured page size.
func (c *Client) Transfers(ctx context.Context) (Result, error) {
	q := url.Values{}
	q.Set("portfolios", c.accountID)
	q.Set("result_limit", strconv.Itoa(c.transfers.ResultLimit))
	q.Set("type", c.transfers.Type)
	return c.get(ctx, EndpointTransfers, apiPrefix+"/transfers", q)
}

// Balances returns a bare list of asset balances.
func (c *Client) Balances(ctx context.Context) (Result, error) {
	return c.get(ctx, EndpointBalances, c.portfolioPath("balances"), nil)
}

// Positions returns a bare list of open positions.
func (c *Client) Positions(ctx context.Context) (Result, error) {
	return c.get(ctx, EndpointPositions, c.portfolioPath("positions"), nil)
}

// Summary returns a single object describing the portfolio.
func (c *Client) Summary(ctx context.Context) (Result, error) {
	return c.get(ctx, EndpointSummary, c.portfolioPath("summary"), nil)
}
