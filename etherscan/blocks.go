package etherscan

import (
	"context"
	"math/big"
	"net/url"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/metachris/mev-block-analyzer/common"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type Receipt struct {
	TransactionHash string
	GasUsed         uint64
	Status          uint64 // 1 = success, 0 = reverted
}

// Failed returns true if the transaction reverted
func (r Receipt) Failed() bool {
	return r.Status == 0
}

func decodeBigField(obj gjson.Result, field string) (*big.Int, error) {
	v := obj.Get(field)
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return nil, nil
	}
	i, err := hexutil.DecodeBig(v.String())
	if err != nil {
		return nil, errors.Wrapf(err, "field %s: %q", field, v.String())
	}
	return i, nil
}

func decodeUint64Field(obj gjson.Result, field string) (uint64, error) {
	v := obj.Get(field)
	if !v.Exists() || v.Type == gjson.Null {
		return 0, errors.Wrapf(ErrAPI, "missing field %s", field)
	}
	i, err := hexutil.DecodeUint64(v.String())
	if err != nil {
		return 0, errors.Wrapf(err, "field %s: %q", field, v.String())
	}
	return i, nil
}

func parseTransaction(obj gjson.Result) (tx common.TransactionRecord, err error) {
	tx.Hash = obj.Get("hash").String()
	tx.Sender = normalizeAddress(obj.Get("from").String())
	if tx.Hash == "" || tx.Sender == "" || !obj.Get("nonce").Exists() {
		return tx, errors.Wrap(common.ErrInvalidRecord, "missing hash, from or nonce")
	}

	if tx.Nonce, err = decodeUint64Field(obj, "nonce"); err != nil {
		return tx, err
	}
	if tx.GasPrice, err = decodeBigField(obj, "gasPrice"); err != nil {
		return tx, err
	}
	if tx.MaxPriorityFeePerGas, err = decodeBigField(obj, "maxPriorityFeePerGas"); err != nil {
		return tx, err
	}
	return tx, nil
}

// FetchBlock returns the block with its full transaction objects (eth_getBlockByNumber).
// Returns ErrNotFound if the block does not exist.
func (c *Client) FetchBlock(ctx context.Context, blockNumber int64) (*common.Block, error) {
	params := url.Values{}
	params.Set("tag", hexutil.EncodeBig(big.NewInt(blockNumber)))
	params.Set("boolean", "true")

	body, err := c.get(ctx, "proxy", "eth_getBlockByNumber", params)
	if err != nil {
		return nil, err
	}

	result, err := proxyResult("eth_getBlockByNumber", body)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("block %d", blockNumber)
	} else if err != nil {
		return nil, err
	}

	block := common.Block{Transactions: make([]common.TransactionRecord, 0)}
	block.Number = blockNumber

	if block.BaseFeePerGas, err = decodeBigField(result, "baseFeePerGas"); err != nil {
		return nil, err
	}
	if block.BaseFeePerGas == nil { // pre-London
		block.BaseFeePerGas = new(big.Int)
	}
	if block.GasLimit, err = decodeUint64Field(result, "gasLimit"); err != nil {
		return nil, err
	}

	for _, txObj := range result.Get("transactions").Array() {
		if !txObj.IsObject() {
			return nil, errors.Wrapf(ErrAPI, "block %d: transactions are not full objects", blockNumber)
		}
		tx, err := parseTransaction(txObj)
		if err != nil {
			return nil, errors.Wrapf(err, "block %d tx %s", blockNumber, txObj.Get("hash").String())
		}
		block.Transactions = append(block.Transactions, tx)
	}

	return &block, nil
}

// FetchTransactionReceipt returns the receipt of a transaction (eth_getTransactionReceipt).
// Returns ErrNotFound if there is no receipt.
func (c *Client) FetchTransactionReceipt(ctx context.Context, hash string) (*Receipt, error) {
	params := url.Values{}
	params.Set("txhash", hash)

	body, err := c.get(ctx, "proxy", "eth_getTransactionReceipt", params)
	if err != nil {
		return nil, err
	}

	result, err := proxyResult("eth_getTransactionReceipt", body)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound("receipt for tx %s", hash)
	} else if err != nil {
		return nil, err
	}

	receipt := Receipt{TransactionHash: hash, Status: 1} // pre-Byzantium receipts have no status
	if receipt.GasUsed, err = decodeUint64Field(result, "gasUsed"); err != nil {
		return nil, err
	}
	if result.Get("status").Exists() {
		if receipt.Status, err = decodeUint64Field(result, "status"); err != nil {
			return nil, err
		}
	}
	return &receipt, nil
}
