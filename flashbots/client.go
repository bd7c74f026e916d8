package flashbots

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const DefaultBaseURL = "https://blocks.flashbots.net"

var ErrBlockNotYetIndexed = errors.New("flashbots API latest height < requested block height")

type GetBlocksOptions struct {
	BlockNumber int64
}

func (b GetBlocksOptions) ToUriQuery() string {
	args := []string{}
	if b.BlockNumber > 0 {
		args = append(args, fmt.Sprintf("block_number=%d", b.BlockNumber))
	}

	s := strings.Join(args, "&")
	if len(s) > 0 {
		s = "?" + s
	}

	return s
}

type GetBlocksResponse struct {
	LatestBlockNumber int64            `json:"latest_block_number"`
	Blocks            []FlashbotsBlock `json:"blocks"`
}

// Block returns the block with the given number, if it is part of the response
func (r *GetBlocksResponse) Block(number int64) (block FlashbotsBlock, found bool) {
	for _, b := range r.Blocks {
		if b.BlockNumber == number {
			return b, true
		}
	}
	return block, false
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GetBlocks returns the most recent flashbots blocks (filtered by options). This also contains a list of
// transactions that were part of the flashbots bundles.
// https://blocks.flashbots.net/v1/blocks
func (c *Client) GetBlocks(options *GetBlocksOptions) (response GetBlocksResponse, err error) {
	url := c.BaseURL + "/v1/blocks"
	if options != nil {
		url = url + options.ToUriQuery()
	}

	resp, err := c.HTTPClient.Get(url)
	if err != nil {
		return response, errors.Wrap(err, "flashbots blocks request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("flashbots blocks request: unexpected status %s", resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		return response, errors.Wrap(err, "decoding flashbots blocks response")
	}

	return response, nil
}

// GetBlock returns the bundles of one block. found is false if the API has indexed the height
// but there were no Flashbots bundles in it.
func (c *Client) GetBlock(blockNumber int64) (block FlashbotsBlock, found bool, err error) {
	response, err := c.GetBlocks(&GetBlocksOptions{BlockNumber: blockNumber})
	if err != nil {
		return block, false, err
	}

	if response.LatestBlockNumber < blockNumber { // block is not yet processed by Flashbots
		return block, false, ErrBlockNotYetIndexed
	}

	block, found = response.Block(blockNumber)
	return block, found, nil
}
