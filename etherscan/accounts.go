package etherscan

import (
	"context"
	"math/big"
	"net/url"
	"strconv"
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/metachris/mev-block-analyzer/common"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

func parseDecimalBig(v gjson.Result, field string) (*big.Int, error) {
	i, ok := new(big.Int).SetString(v.Get(field).String(), 10)
	if !ok {
		return nil, errors.Wrapf(ErrAPI, "field %s: invalid number %q", field, v.Get(field).String())
	}
	return i, nil
}

// FetchBlockReward returns the fee recipient and rewards of a block (module=block, action=getblockreward).
func (c *Client) FetchBlockReward(ctx context.Context, blockNumber int64) (*common.BlockReward, error) {
	params := url.Values{}
	params.Set("blockno", strconv.FormatInt(blockNumber, 10))

	body, err := c.get(ctx, "block", "getblockreward", params)
	if err != nil {
		return nil, err
	}

	if gjson.GetBytes(body, "status").String() != "1" {
		return nil, notFound("block reward for block %d: %s", blockNumber, gjson.GetBytes(body, "message").String())
	}

	result := gjson.GetBytes(body, "result")
	reward := common.BlockReward{
		BlockNumber:  blockNumber,
		FeeRecipient: normalizeAddress(result.Get("blockMiner").String()),
	}
	if reward.BlockReward, err = parseDecimalBig(result, "blockReward"); err != nil {
		return nil, err
	}
	if reward.UncleInclusionReward, err = parseDecimalBig(result, "uncleInclusionReward"); err != nil {
		return nil, err
	}
	return &reward, nil
}

// FetchTransfersToAddress returns the internal transfers into address within one block (action=txlistinternal).
// Any non-successful API status (including "No transactions found") yields an empty list.
func (c *Client) FetchTransfersToAddress(ctx context.Context, address string, blockNumber int64) ([]common.InternalTransfer, error) {
	if !ethcommon.IsHexAddress(address) {
		return nil, errors.Errorf("invalid address: %s", address)
	}

	params := url.Values{}
	params.Set("address", address)
	params.Set("startblock", strconv.FormatInt(blockNumber, 10))
	params.Set("endblock", strconv.FormatInt(blockNumber, 10))

	body, err := c.get(ctx, "account", "txlistinternal", params)
	if err != nil {
		return nil, err
	}

	transfers := make([]common.InternalTransfer, 0)
	if gjson.GetBytes(body, "status").String() != "1" {
		return transfers, nil
	}

	for _, item := range gjson.GetBytes(body, "result").Array() {
		if !strings.EqualFold(item.Get("to").String(), address) {
			continue
		}
		value, err := parseDecimalBig(item, "value")
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, common.InternalTransfer{
			Hash:  item.Get("hash").String(),
			From:  normalizeAddress(item.Get("from").String()),
			To:    normalizeAddress(item.Get("to").String()),
			Value: value,
		})
	}
	return transfers, nil
}
