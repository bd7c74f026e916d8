// Data model shared by the data sources and the analyses
package common

import (
	"math/big"
)

// DefaultGasUsed is used for transactions without a known gas usage (a plain transfer)
const DefaultGasUsed uint64 = 21000

// TransactionRecord is one transaction of a block, as delivered by a block explorer.
// GasPrice and MaxPriorityFeePerGas are nil when the source did not provide them.
// GasUsed is 0 until it has been filled in from the receipt.
type TransactionRecord struct {
	Hash                 string
	Sender               string
	Nonce                uint64
	GasPrice             *big.Int
	MaxPriorityFeePerGas *big.Int
	GasUsed              uint64
	Failed               bool // receipt status 0, only known after receipt enrichment
}

// WithReceipt returns a copy of the record with the gas usage and status of its receipt
func (tx TransactionRecord) WithReceipt(gasUsed uint64, failed bool) TransactionRecord {
	tx.GasUsed = gasUsed
	tx.Failed = failed
	return tx
}

// BaseGasUsed returns GasUsed, or DefaultGasUsed if it is unknown. A receipt reporting
// 0 gas cannot be told apart from a missing one; no mined transaction uses less than 21000.
func (tx TransactionRecord) BaseGasUsed() uint64 {
	if tx.GasUsed == 0 {
		return DefaultGasUsed
	}
	return tx.GasUsed
}

type BlockContext struct {
	Number        int64
	BaseFeePerGas *big.Int
	GasLimit      uint64
}

type Block struct {
	BlockContext
	Transactions []TransactionRecord
}

// Window returns up to num transactions starting at index start, clamped to the block
func (b *Block) Window(start, num int) []TransactionRecord {
	if start < 0 {
		start = 0
	}
	if start >= len(b.Transactions) || num <= 0 {
		return []TransactionRecord{}
	}
	end := start + num
	if end > len(b.Transactions) {
		end = len(b.Transactions)
	}

	res := make([]TransactionRecord, end-start)
	copy(res, b.Transactions[start:end])
	return res
}

// BlockReward holds the getblockreward details of a block (amounts in wei)
type BlockReward struct {
	BlockNumber          int64
	FeeRecipient         string
	BlockReward          *big.Int
	UncleInclusionReward *big.Int
}

// TotalReward is block reward + uncle inclusion reward, in wei
func (r BlockReward) TotalReward() *big.Int {
	total := new(big.Int)
	if r.BlockReward != nil {
		total.Add(total, r.BlockReward)
	}
	if r.UncleInclusionReward != nil {
		total.Add(total, r.UncleInclusionReward)
	}
	return total
}

// InternalTransfer is an internal transaction (value transfer from a contract call), value in wei
type InternalTransfer struct {
	Hash  string
	From  string
	To    string
	Value *big.Int
}
