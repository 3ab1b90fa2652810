// SPDX-License-Identifier: Apache-2.0

package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/opensearch-project/opensearch-go"
	"github.com/opensearch-project/opensearch-go/opensearchapi"
	"github.com/xataio/catalogsearch/internal/searchstore"
)

type Client struct {
	client *opensearch.Client
}

type Option func(*clientOptions)

type clientOptions struct {
	tlsConfig *tls.Config
}

// WithTLS sets the TLS configuration used to connect to OpenSearch. A nil
// config keeps the default transport.
func WithTLS(cfg *tls.Config) Option {
	return func(o *clientOptions) {
		o.tlsConfig = cfg
	}
}

func NewClient(url string, opts ...Option) (*Client, error) {
	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}
	client, err := newClient(url, options)
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) GetMapper() searchstore.Mapper {
	return NewMapper()
}

func (c *Client) CreateIndex(ctx context.Context, index string, body map[string]any) error {
	reader, err := searchstore.CreateReader(body)
	if err != nil {
		return err
	}
	res, err := c.client.Indices.Create(index,
		c.client.Indices.Create.WithContext(ctx),
		c.client.Indices.Create.WithBody(reader),
	)
	if err != nil {
		return fmt.Errorf("[CreateIndex] error from OpenSearch: %w", err)
	}
	defer res.Body.Close()

	if err := c.isErrResponse(res); err != nil {
		return fmt.Errorf("[CreateIndex] error response from OpenSearch: %w", err)
	}

	return nil
}

func (c *Client) DeleteIndex(ctx context.Context, index []string) error {
	res, err := c.client.Indices.Delete(
		index,
		c.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("[DeleteIndex] error from OpenSearch: %w", err)
	}
	defer res.Body.Close()

	if err := c.isErrResponse(res); err != nil {
		return fmt.Errorf("[DeleteIndex] error response from OpenSearch: %w", err)
	}

	return nil
}

func (c *Client) IndexWithID(ctx context.Context, req *searchstore.IndexWithIDRequest) error {
	opts := []func(*opensearchapi.IndexRequest){
		c.client.Index.WithContext(ctx),
		c.client.Index.WithDocumentID(req.ID),
	}
	if req.Refresh != "" {
		opts = append(opts, c.client.Index.WithRefresh(req.Refresh))
	}

	res, err := c.client.Index(req.Index, bytes.NewReader(req.Body), opts...)
	if err != nil {
		return fmt.Errorf("[IndexWithID] error from OpenSearch: %w", err)
	}
	defer res.Body.Close()

	if err := c.isErrResponse(res); err != nil {
		return fmt.Errorf("[IndexWithID] error response from OpenSearch: %w", err)
	}

	return nil
}

func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.client.Indices.Exists([]string{index},
		c.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("[IndexExists] error from OpenSearch: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		// exists requests are HEAD requests, there's no error body to decode
		return false, fmt.Errorf("[IndexExists] error response from OpenSearch: %s", res.Status())
	}
}

func (c *Client) isErrResponse(res *opensearchapi.Response) error {
	return searchstore.IsErrResponse(newAPIResponse(res))
}

func newClient(address string, options *clientOptions) (*opensearch.Client, error) {
	if address == "" {
		return nil, errors.New("no address provided")
	}

	cfg := opensearch.Config{
		Addresses: []string{
			address,
		},
		Transport: newTransport(options.tlsConfig),
	}

	return opensearch.NewClient(cfg)
}

type apiResponse struct {
	*opensearchapi.Response
}

func newAPIResponse(res *opensearchapi.Response) *apiResponse {
	return &apiResponse{Response: res}
}

func (r *apiResponse) GetBody() io.ReadCloser {
	return r.Body
}

func (r *apiResponse) GetStatusCode() int {
	return r.StatusCode
}

func newTransport(tlsConfig *tls.Config) http.RoundTripper {
	if tlsConfig == nil {
		return http.DefaultTransport
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return transport
}
