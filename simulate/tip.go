package simulate

import (
	"math/big"

	"github.com/metachris/mev-block-analyzer/common"
	"github.com/pkg/errors"
)

var ErrInvalidRecord = common.ErrInvalidRecord

// EffectiveTip returns the priority fee a transaction pays above the base fee.
//
// - EIP-1559 transactions: maxPriorityFeePerGas, as is.
// - Legacy transactions: gasPrice - baseFee, but never below zero.
func EffectiveTip(tx common.TransactionRecord, baseFee *big.Int) (*big.Int, error) {
	if tx.MaxPriorityFeePerGas != nil {
		return new(big.Int).Set(tx.MaxPriorityFeePerGas), nil
	}

	if tx.GasPrice == nil {
		return nil, errors.Wrapf(ErrInvalidRecord, "tx %s has neither gasPrice nor maxPriorityFeePerGas", tx.Hash)
	}

	tip := new(big.Int).Set(tx.GasPrice)
	if baseFee != nil {
		tip.Sub(tip, baseFee)
	}
	if tip.Sign() < 0 {
		return new(big.Int), nil
	}
	return tip, nil
}
