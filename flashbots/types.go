// Client for [Flashbots mev-blocks API](https://blocks.flashbots.net/)
package flashbots

const (
	BundleTypeFlashbots = "flashbots"
	BundleTypeRogue     = "rogue"
)

type FlashbotsBlock struct {
	BlockNumber       int64  `json:"block_number"`
	Miner             string `json:"miner"`
	MinerReward       string `json:"miner_reward"`
	CoinbaseTransfers string `json:"coinbase_transfers"`

	GasUsed      int64                  `json:"gas_used"`
	GasPrice     string                 `json:"gas_price"`
	Transactions []FlashbotsTransaction `json:"transactions"`
}

type FlashbotsTransaction struct {
	Hash             string `json:"transaction_hash"`
	TxIndex          int64  `json:"tx_index"`
	BundleType       string `json:"bundle_type"`
	BundleIndex      int64  `json:"bundle_index"`
	BlockNumber      int64  `json:"block_number"`
	EoaAddress       string `json:"eoa_address"`
	ToAddress        string `json:"to_address"`
	GasUsed          int64  `json:"gas_used"`
	GasPrice         string `json:"gas_price"`
	CoinbaseTransfer string `json:"coinbase_transfer"`
	TotalMinerReward string `json:"total_miner_reward"`
}

// HasTx returns true if the transaction hash is part of a bundle in this block
func (b FlashbotsBlock) HasTx(hash string) bool {
	for _, tx := range b.Transactions {
		if tx.Hash == hash {
			return true
		}
	}
	return false
}

// NumBundlesOfType returns the number of distinct bundles with the given bundle type
// (BundleTypeFlashbots or BundleTypeRogue)
func (b FlashbotsBlock) NumBundlesOfType(bundleType string) int {
	bundles := make(map[int64]bool)
	for _, tx := range b.Transactions {
		if tx.BundleType == bundleType {
			bundles[tx.BundleIndex] = true
		}
	}
	return len(bundles)
}
