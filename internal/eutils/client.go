// Package eutils runs converted PubMed queries against NCBI ESearch: hit
// counts, PubMed's own query translation and phrase errors, and whether a
// set of known relevant PMIDs is captured.
package eutils

import (
	"github.com/henrybloomingdale/searchconv/internal/ncbi"
)

// Client is an ESearch client. It embeds ncbi.BaseClient for rate
// limiting and common parameters.
type Client struct {
	*ncbi.BaseClient
}

// Option configures the underlying ncbi.BaseClient.
type Option = ncbi.Option

// Options re-exported so callers need not import ncbi.
var (
	WithBaseURL    = ncbi.WithBaseURL
	WithAPIKey     = ncbi.WithAPIKey
	WithEmail      = ncbi.WithEmail
	WithHTTPClient = ncbi.WithHTTPClient
)

// NewClient creates a client with its own base client.
func NewClient(opts ...Option) *Client {
	return &Client{BaseClient: ncbi.NewBaseClient(opts...)}
}

// NewClientWithBase creates a client sharing base, and with it the rate
// limiter, with other NCBI clients.
func NewClientWithBase(base *ncbi.BaseClient) *Client {
	return &Client{BaseClient: base}
}
