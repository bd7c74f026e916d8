// Client for the Etherscan API (https://docs.etherscan.io/), used as the block data source
package etherscan

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.etherscan.io/api"

var (
	ErrNotFound = errors.New("not found")
	ErrAPI      = errors.New("etherscan API error")
)

type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	// OnRequest is called after every API request (action, error), if set
	OnRequest func(action string, err error)
}

func NewClient(apiKey string, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// get sends one API request and returns the raw JSON body. OnRequest also sees errors reported
// inside a valid response (see envelopeError); those are left to the caller to interpret.
func (c *Client) get(ctx context.Context, module string, action string, params url.Values) (body []byte, err error) {
	defer func() {
		if c.OnRequest == nil {
			return
		}
		reported := err
		if reported == nil {
			reported = envelopeError(module, action, body)
		}
		c.OnRequest(action, reported)
	}()

	if params == nil {
		params = url.Values{}
	}
	params.Set("module", module)
	params.Set("action", action)
	params.Set("apikey", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "etherscan %s request", action)
	}
	defer resp.Body.Close()

	body, err = ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading etherscan %s response", action)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrAPI, "%s: http status %s", action, resp.Status)
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.Wrapf(ErrAPI, "%s: invalid JSON response", action)
	}

	return body, nil
}

// envelopeError returns the error reported inside an API response: a JSON-RPC error object,
// a "NOTOK" message, or a string result of a proxy call (invalid API key, rate limit etc.).
func envelopeError(module string, action string, body []byte) error {
	if rpcErr := gjson.GetBytes(body, "error"); rpcErr.Exists() {
		return errors.Wrapf(ErrAPI, "%s: %s", action, rpcErr.Get("message").String())
	}

	result := gjson.GetBytes(body, "result")
	if gjson.GetBytes(body, "message").String() == "NOTOK" || (module == "proxy" && result.Type == gjson.String) {
		return errors.Wrapf(ErrAPI, "%s: %s", action, result.String())
	}
	return nil
}

// proxyResult returns the "result" object of a JSON-RPC proxy response.
// A null result means the requested object does not exist.
func proxyResult(action string, body []byte) (gjson.Result, error) {
	if err := envelopeError("proxy", action, body); err != nil {
		return gjson.Result{}, err
	}

	result := gjson.GetBytes(body, "result")
	switch {
	case !result.Exists() || result.Type == gjson.Null:
		return result, ErrNotFound
	case !result.IsObject():
		return result, errors.Wrapf(ErrAPI, "%s: unexpected result %s", action, result.Raw)
	}

	return result, nil
}

func normalizeAddress(address string) string {
	return strings.ToLower(address)
}

func notFound(format string, args ...interface{}) error {
	return errors.Wrap(ErrNotFound, fmt.Sprintf(format, args...))
}
