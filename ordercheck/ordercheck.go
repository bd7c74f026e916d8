// Check whether the transactions of a block are ordered by gas price.
//
// A block built by a plain gas-price auction orders transactions by gas price, highest first.
// Any deviation hints at a builder that reordered transactions for profit (MEV).
package ordercheck

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/metachris/go-ethutils/utils"
	"github.com/metachris/mev-block-analyzer/common"
	"github.com/metachris/mev-block-analyzer/flashbots"
	"github.com/pkg/errors"
)

const (
	MsgOrdered    = "Transactions are ordered by gas price (likely non-MEV block)."
	MsgNotOrdered = "Transactions are NOT ordered by gas price (potential MEV block)."
)

var ErrInvalidRecord = common.ErrInvalidRecord

type GasFee struct {
	Hash     string
	GasPrice *big.Int
}

func (f GasFee) Equal(other GasFee) bool {
	return f.Hash == other.Hash && f.GasPrice.Cmp(other.GasPrice) == 0
}

// OrderError is a transaction that pays more than the one before it
type OrderError struct {
	Index            int
	Hash             string
	PercentPriceDiff *big.Float // % difference to previous tx
}

type Result struct {
	BlockNumber int64
	GasFees     []GasFee // in block order
	Sorted      []GasFee // by gas price, descending
	IsOrdered   bool
	OrderErrors []OrderError

	// Flashbots information, only set after AddFlashbotsBlock
	HasFlashbotsInfo   bool
	FlashbotsBundles   int
	RogueBundles       int // bundles mined without going through the Flashbots relay
	FlashbotsTxInBlock int
}

// Classification is the fixed verdict string
func (r *Result) Classification() string {
	if r.IsOrdered {
		return MsgOrdered
	}
	return MsgNotOrdered
}

// CheckTransactionOrder compares the block order of the transactions with the same transactions
// stably sorted by gas price. An empty list is trivially ordered.
func CheckTransactionOrder(blockNumber int64, txs []common.TransactionRecord) (*Result, error) {
	result := Result{
		BlockNumber: blockNumber,
		GasFees:     make([]GasFee, 0, len(txs)),
		OrderErrors: make([]OrderError, 0),
	}

	for _, tx := range txs {
		if tx.GasPrice == nil {
			return nil, errors.Wrapf(ErrInvalidRecord, "tx %s has no gasPrice", tx.Hash)
		}
		result.GasFees = append(result.GasFees, GasFee{Hash: tx.Hash, GasPrice: tx.GasPrice})
	}

	result.Sorted = make([]GasFee, len(result.GasFees))
	copy(result.Sorted, result.GasFees)
	sort.SliceStable(result.Sorted, func(i, j int) bool {
		return result.Sorted[i].GasPrice.Cmp(result.Sorted[j].GasPrice) == 1
	})

	result.IsOrdered = true
	for i := range result.GasFees {
		if !result.GasFees[i].Equal(result.Sorted[i]) {
			result.IsOrdered = false
			break
		}
	}

	// Find the transactions that pay more than their predecessor
	for i := 1; i < len(result.GasFees); i++ {
		prev, cur := result.GasFees[i-1], result.GasFees[i]
		if cur.GasPrice.Cmp(prev.GasPrice) != 1 {
			continue
		}

		percentDiff := new(big.Float)
		if prev.GasPrice.Sign() > 0 {
			percentDiff = new(big.Float).Quo(new(big.Float).SetInt(cur.GasPrice), new(big.Float).SetInt(prev.GasPrice))
			percentDiff = new(big.Float).Sub(percentDiff, big.NewFloat(1))
			percentDiff = new(big.Float).Mul(percentDiff, big.NewFloat(100))
		}
		result.OrderErrors = append(result.OrderErrors, OrderError{Index: i, Hash: cur.Hash, PercentPriceDiff: percentDiff})
	}

	return &result, nil
}

// AddFlashbotsBlock adds the bundle information of the Flashbots mev-blocks API. Pass found=false
// if the API has indexed the height but has no bundles for it.
func (r *Result) AddFlashbotsBlock(block flashbots.FlashbotsBlock, found bool) {
	r.HasFlashbotsInfo = true
	if !found {
		return
	}

	r.FlashbotsBundles = block.NumBundlesOfType(flashbots.BundleTypeFlashbots)
	r.RogueBundles = block.NumBundlesOfType(flashbots.BundleTypeRogue)
	for _, fee := range r.GasFees {
		if block.HasTx(fee.Hash) {
			r.FlashbotsTxInBlock += 1
		}
	}
}

func (r *Result) Sprint(color bool, markdown bool) (msg string) {
	if markdown {
		msg = fmt.Sprintf("Block [%d](<https://etherscan.io/block/%d>) - tx: %d\n", r.BlockNumber, r.BlockNumber, len(r.GasFees))
	} else {
		msg = fmt.Sprintf("Block %d - tx: %d\n", r.BlockNumber, len(r.GasFees))
	}

	verdict := r.Classification() + "\n"
	if color && !r.IsOrdered {
		msg += fmt.Sprintf(utils.WarningColor, verdict)
	} else {
		msg += verdict
	}

	if r.HasFlashbotsInfo {
		msg += fmt.Sprintf("Flashbots bundles: %d, rogue bundles: %d, flashbots tx: %d\n", r.FlashbotsBundles, r.RogueBundles, r.FlashbotsTxInBlock)
	}

	if markdown && len(r.OrderErrors) > 0 {
		msg += "```\n"
	}
	for _, e := range r.OrderErrors {
		msg += fmt.Sprintf("- tx %d %s pays %s%% more than previous tx\n", e.Index, e.Hash, e.PercentPriceDiff.Text('f', 2))
	}
	if markdown && len(r.OrderErrors) > 0 {
		msg += "```"
	}

	return msg
}
