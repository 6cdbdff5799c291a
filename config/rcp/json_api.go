package rcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/flashbots/fee-manager/config/rcp/dto"
)

const (
	executionConfigPath = "/vouch/v2/execution-config/"
	muxKeysPath         = "/commit-boost/v1/mux/"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// JSONAPI is a client of the public endpoints of the service.
type JSONAPI struct {
	providerURL string
	client      HTTPClient
}

func NewJSONAPI(client HTTPClient, providerURL string) *JSONAPI {
	if client == nil {
		client = http.DefaultClient
	}

	return &JSONAPI{providerURL: strings.TrimRight(providerURL, "/"), client: client}
}

// ExecutionConfig fetches the execution config of the default config name for keys and tags.
func (p *JSONAPI) ExecutionConfig(ctx context.Context, name string, keys, tags []string) (*dto.ExecutionConfig, error) {
	endpoint := p.providerURL + executionConfigPath + url.PathEscape(name)
	if len(tags) > 0 {
		endpoint += "?" + url.Values{"tags": {strings.Join(tags, ",")}}.Encode()
	}

	if keys == nil {
		keys = []string{}
	}

	body, err := json.Marshal(dto.ExecutionConfigRequest{Keys: keys})
	if err != nil {
		return nil, p.wrapConfigProviderErr(err)
	}

	var cfg *dto.ExecutionConfig
	if err := p.do(ctx, http.MethodPost, endpoint, body, &cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MuxKeys fetches the keys of the mux config name.
func (p *JSONAPI) MuxKeys(ctx context.Context, name string) ([]string, error) {
	endpoint := p.providerURL + muxKeysPath + url.PathEscape(name)

	var keys []string
	if err := p.do(ctx, http.MethodGet, endpoint, nil, &keys); err != nil {
		return nil, err
	}

	return keys, nil
}

func (p *JSONAPI) do(ctx context.Context, method, endpoint string, body []byte, target any) error {
	resp, err := p.doRequest(ctx, method, endpoint, body)
	if err != nil {
		return p.wrapConfigProviderErr(err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Code: resp.StatusCode}
		if err := decodeResponseBody(resp.Body, apiErr); err != nil {
			return p.wrapConfigProviderErr(err)
		}

		return apiErr
	}

	if err := decodeResponseBody(resp.Body, target); err != nil {
		return p.wrapConfigProviderErr(err)
	}

	return nil
}

func (p *JSONAPI) doRequest(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedProviderURL, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	return resp, nil
}

func decodeResponseBody(body io.Reader, target any) error {
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return fmt.Errorf("%w: cannot decode response: %w", ErrMalformedResponseBody, err)
	}

	return nil
}

func (p *JSONAPI) wrapConfigProviderErr(err error) Error {
	return Error{
		Cause:   err,
		Message: ErrCannotFetchConfig.Error(),
	}
}
