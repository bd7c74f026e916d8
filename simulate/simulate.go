// Simulation of builder revenue for a given transaction ordering
package simulate

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/metachris/mev-block-analyzer/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type SkipReason string

const (
	SkipNonceViolation   SkipReason = "nonce violation"
	SkipGasLimitExceeded SkipReason = "gas limit exceeded"
)

// SkippedTx is a transaction that was excluded from the simulated block
type SkippedTx struct {
	Hash     string
	Position int
	Reason   SkipReason
	Detail   string
}

func (s SkippedTx) String() string {
	return fmt.Sprintf("Skipping tx %s due to %s (%s).", s.Hash, s.Reason, s.Detail)
}

// IncludedTx is a transaction that made it into the simulated block
type IncludedTx struct {
	Hash         string
	Position     int
	SimulatedGas decimal.Decimal
	EffectiveTip *big.Int
	Revenue      decimal.Decimal
}

type Result struct {
	TotalRevenue decimal.Decimal // wei
	TotalGasUsed decimal.Decimal
	GasLimit     uint64
	Included     []IncludedTx
	Skipped      []SkippedTx
}

func (r *Result) HasSkipped() bool {
	return len(r.Skipped) > 0
}

func validateRecord(tx common.TransactionRecord, position int) error {
	if tx.Hash == "" {
		return errors.Wrapf(ErrInvalidRecord, "tx at position %d has no hash", position)
	}
	if tx.Sender == "" {
		return errors.Wrapf(ErrInvalidRecord, "tx %s has no sender", tx.Hash)
	}
	if tx.GasPrice == nil && tx.MaxPriorityFeePerGas == nil {
		return errors.Wrapf(ErrInvalidRecord, "tx %s has neither gasPrice nor maxPriorityFeePerGas", tx.Hash)
	}
	return nil
}

// SimulateBlock executes the transactions strictly in the given order and sums up the builder revenue.
//
// For each transaction at index i:
// 1. nonce must be higher than the last accepted nonce of the sender, else it's skipped
// 2. the nonce is recorded as the sender's last nonce (even if the tx is skipped in the next step)
// 3. gas usage is simulated for position i, and the tx is skipped if it would exceed the gas limit
// 4. revenue += simulated gas * effective tip
//
// Malformed records fail the whole run with ErrInvalidRecord. An empty list yields a zero result.
func SimulateBlock(txs []common.TransactionRecord, baseFee *big.Int, gasLimit uint64) (*Result, error) {
	for i, tx := range txs {
		if err := validateRecord(tx, i); err != nil {
			return nil, err
		}
	}

	result := &Result{
		TotalRevenue: decimal.Zero,
		TotalGasUsed: decimal.Zero,
		GasLimit:     gasLimit,
		Included:     make([]IncludedTx, 0),
		Skipped:      make([]SkippedTx, 0),
	}
	limit := decimal.NewFromBigInt(new(big.Int).SetUint64(gasLimit), 0)
	lastNonceForSender := make(map[string]uint64)

	for i, tx := range txs {
		sender := strings.ToLower(tx.Sender)
		if lastNonce, found := lastNonceForSender[sender]; found && tx.Nonce <= lastNonce {
			result.Skipped = append(result.Skipped, SkippedTx{
				Hash:     tx.Hash,
				Position: i,
				Reason:   SkipNonceViolation,
				Detail:   fmt.Sprintf("nonce %d <= last %d", tx.Nonce, lastNonce),
			})
			continue
		}
		lastNonceForSender[sender] = tx.Nonce

		simulatedGas := SimulatedGasUsed(tx.BaseGasUsed(), i)
		if result.TotalGasUsed.Add(simulatedGas).GreaterThan(limit) {
			result.Skipped = append(result.Skipped, SkippedTx{
				Hash:     tx.Hash,
				Position: i,
				Reason:   SkipGasLimitExceeded,
				Detail:   fmt.Sprintf("simulated gas %s exceeds block gas limit %d, gas used so far: %s", simulatedGas.StringFixed(0), gasLimit, result.TotalGasUsed.StringFixed(0)),
			})
			continue
		}
		result.TotalGasUsed = result.TotalGasUsed.Add(simulatedGas)

		tip, err := EffectiveTip(tx, baseFee)
		if err != nil {
			return nil, err
		}
		revenue := simulatedGas.Mul(decimal.NewFromBigInt(tip, 0))
		result.TotalRevenue = result.TotalRevenue.Add(revenue)
		result.Included = append(result.Included, IncludedTx{
			Hash:         tx.Hash,
			Position:     i,
			SimulatedGas: simulatedGas,
			EffectiveTip: tip,
			Revenue:      revenue,
		})
	}

	return result, nil
}
