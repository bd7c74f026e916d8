package simulate

import (
	"math/big"
	"sort"

	"github.com/metachris/mev-block-analyzer/common"
)

const (
	VerdictImproved    = "Reordering increased builder revenue in this simulation."
	VerdictNotImproved = "Reordering did not improve revenue in this simulation."
)

// Comparison holds the simulation of the original ordering and of the tip-sorted ordering
type Comparison struct {
	BaseFee  *big.Int
	GasLimit uint64

	OriginalOrder  []common.TransactionRecord
	ReorderedOrder []common.TransactionRecord
	Original       *Result
	Reordered      *Result

	// Improved is true only if the reordered revenue is strictly higher
	Improved bool
}

func (c *Comparison) Verdict() string {
	if c.Improved {
		return VerdictImproved
	}
	return VerdictNotImproved
}

type txWithTip struct {
	tx  common.TransactionRecord
	tip *big.Int
}

// SortByTipDescending returns a copy of txs sorted by effective tip, highest first. Equal tips keep their order.
func SortByTipDescending(txs []common.TransactionRecord, baseFee *big.Int) ([]common.TransactionRecord, error) {
	entries := make([]txWithTip, len(txs))
	for i, tx := range txs {
		tip, err := EffectiveTip(tx, baseFee)
		if err != nil {
			return nil, err
		}
		entries[i] = txWithTip{tx: tx, tip: tip}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].tip.Cmp(entries[j].tip) == 1
	})

	sorted := make([]common.TransactionRecord, len(entries))
	for i, e := range entries {
		sorted[i] = e.tx
	}
	return sorted, nil
}

// CompareOrderings simulates the block once in the given order and once sorted by tip, with the same base fee and gas limit
func CompareOrderings(txs []common.TransactionRecord, baseFee *big.Int, gasLimit uint64) (*Comparison, error) {
	original, err := SimulateBlock(txs, baseFee, gasLimit)
	if err != nil {
		return nil, err
	}

	reorderedTxs, err := SortByTipDescending(txs, baseFee)
	if err != nil {
		return nil, err
	}

	reordered, err := SimulateBlock(reorderedTxs, baseFee, gasLimit)
	if err != nil {
		return nil, err
	}

	originalOrder := make([]common.TransactionRecord, len(txs))
	copy(originalOrder, txs)

	return &Comparison{
		BaseFee:        baseFee,
		GasLimit:       gasLimit,
		OriginalOrder:  originalOrder,
		ReorderedOrder: reorderedTxs,
		Original:       original,
		Reordered:      reordered,
		Improved:       reordered.TotalRevenue.GreaterThan(original.TotalRevenue),
	}, nil
}
