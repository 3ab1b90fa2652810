// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/xataio/catalogsearch/internal/searchstore"
)

type Client struct {
	client *elasticsearch.Client
}

type Option func(*clientOptions)

type clientOptions struct {
	tlsConfig *tls.Config
}

// WithTLS sets the TLS configuration used to connect to Elasticsearch. A nil
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
	es, err := newClient(url, options)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Client{client: es}, nil
}

func (ec *Client) GetMapper() searchstore.Mapper {
	return NewMapper()
}

func (ec *Client) CreateIndex(ctx context.Context, index string, body map[string]any) error {
	reader, err := searchstore.CreateReader(body)
	if err != nil {
		return err
	}
	res, err := ec.client.Indices.Create(index,
		ec.client.Indices.Create.WithContext(ctx),
		ec.client.Indices.Create.WithBody(reader),
	)
	if err != nil {
		return fmt.Errorf("[CreateIndex] error from Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if err := ec.isErrResponse(res); err != nil {
		return fmt.Errorf("[CreateIndex] error response from Elasticsearch: %w", err)
	}

	return nil
}

func (ec *Client) DeleteIndex(ctx context.Context, index []string) error {
	res, err := ec.client.Indices.Delete(
		index,
		ec.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("[DeleteIndex] error from Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if err := ec.isErrResponse(res); err != nil {
		return fmt.Errorf("[DeleteIndex] error response from Elasticsearch: %w", err)
	}

	return nil
}

func (ec *Client) IndexWithID(ctx context.Context, req *searchstore.IndexWithIDRequest) error {
	opts := []func(*esapi.IndexRequest){
		ec.client.Index.WithContext(ctx),
		ec.client.Index.WithDocumentID(req.ID),
	}
	if req.Refresh != "" {
		opts = append(opts, ec.client.Index.WithRefresh(req.Refresh))
	}

	res, err := ec.client.Index(req.Index, bytes.NewReader(req.Body), opts...)
	if err != nil {
		return fmt.Errorf("[IndexWithID] error from Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if err := ec.isErrResponse(res); err != nil {
		return fmt.Errorf("[IndexWithID] error response from Elasticsearch: %w", err)
	}

	return nil
}

func (ec *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := ec.client.Indices.Exists([]string{index},
		ec.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("[IndexExists] error from Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		// exists requests are HEAD requests, there's no error body to decode
		return false, fmt.Errorf("[IndexExists] error response from Elasticsearch: %s", res.Status())
	}
}

func (ec *Client) isErrResponse(res *esapi.Response) error {
	return searchstore.IsErrResponse(newAPIResponse(res))
}

func newClient(address string, options *clientOptions) (*elasticsearch.Client, error) {
	if address == "" {
		return nil, errors.New("no address provided")
	}

	cfg := elasticsearch.Config{
		Addresses: []string{
			address,
		},
		Transport: newTransport(options.tlsConfig),
	}

	return elasticsearch.NewClient(cfg)
}

type apiResponse struct {
	*esapi.Response
}

func newAPIResponse(res *esapi.Response) *apiResponse {
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
