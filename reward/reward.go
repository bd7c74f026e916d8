// Net reward of a block builder: total block reward minus the internal transfers it received in the same block
package reward

import (
	"fmt"
	"math/big"

	"github.com/metachris/mev-block-analyzer/common"
	"github.com/shopspring/decimal"
)

// Report holds all amounts in ETH
type Report struct {
	BlockNumber  int64
	FeeRecipient string

	BlockReward          decimal.Decimal
	UncleInclusionReward decimal.Decimal
	TotalReward          decimal.Decimal

	InternalTxCount        int
	InternalTransfersTotal decimal.Decimal

	NetReward decimal.Decimal
}

// CalculateNetReward computes netReward = (blockReward + uncleInclusionReward) - sum(internal transfers to the fee recipient)
func CalculateNetReward(blockReward common.BlockReward, transfers []common.InternalTransfer) *Report {
	values := make([]*big.Int, len(transfers))
	for i, t := range transfers {
		values[i] = t.Value
	}

	report := Report{
		BlockNumber:            blockReward.BlockNumber,
		FeeRecipient:           blockReward.FeeRecipient,
		BlockReward:            common.WeiToEth(blockReward.BlockReward),
		UncleInclusionReward:   common.WeiToEth(blockReward.UncleInclusionReward),
		TotalReward:            common.WeiToEth(blockReward.TotalReward()),
		InternalTxCount:        len(transfers),
		InternalTransfersTotal: common.WeiToEth(common.SumBigInts(values...)),
	}
	report.NetReward = report.TotalReward.Sub(report.InternalTransfersTotal)
	return &report
}

// Lines returns the report as a list of human readable lines
func (r *Report) Lines() []string {
	return []string{
		fmt.Sprintf("Block Number: %d", r.BlockNumber),
		fmt.Sprintf("Fee Recipient (Builder Address): %s", r.FeeRecipient),
		fmt.Sprintf("Block Reward: %s ETH", r.BlockReward.String()),
		fmt.Sprintf("Uncle Inclusion Reward: %s ETH", r.UncleInclusionReward.String()),
		fmt.Sprintf("Total Block Reward: %s ETH", r.TotalReward.String()),
		fmt.Sprintf("Total Internal Transactions to Builder: %d", r.InternalTxCount),
		fmt.Sprintf("Total Internal Transfers to Builder: %s ETH", r.InternalTransfersTotal.StringFixed(6)),
		fmt.Sprintf("Net Reward for Builder (Total Block Reward - Internal Transfers): %s ETH", r.NetReward.StringFixed(6)),
	}
}

func (r *Report) String() (msg string) {
	for _, line := range r.Lines() {
		msg += line + "\n"
	}
	return msg
}
