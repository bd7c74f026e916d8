package dashboard

import (
	"github.com/metachris/mev-block-analyzer/analyzer"
	"github.com/metachris/mev-block-analyzer/common"
	"github.com/metachris/mev-block-analyzer/simulate"
)

type TxView struct {
	Hash         string `json:"hash"`
	Sender       string `json:"sender"`
	Nonce        uint64 `json:"nonce"`
	GasUsed      uint64 `json:"gas_used"`
	EffectiveTip string `json:"effective_tip"`
	Failed       bool   `json:"failed"`
}

type SimulationView struct {
	Order        []string `json:"order"`
	TotalRevenue string   `json:"total_revenue_wei"`
	TotalGasUsed string   `json:"total_gas_used"`
	Skipped      []string `json:"skipped"`
}

type AnalysisView struct {
	BlockNumber int64 `json:"block_number"`

	IsOrdered           bool     `json:"is_ordered"`
	OrderClassification string   `json:"order_classification"`
	OrderDetails        string   `json:"order_details"`
	FeeRecipient        string   `json:"fee_recipient"`
	NetRewardEth        string   `json:"net_reward_eth"`
	RewardLines         []string `json:"reward_lines"`

	BaseFee   string         `json:"base_fee"`
	GasLimit  uint64         `json:"gas_limit"`
	Window    []TxView       `json:"transactions"`
	Original  SimulationView `json:"original"`
	Reordered SimulationView `json:"reordered"`
	Improved  bool           `json:"improved"`
	Verdict   string         `json:"verdict"`
}

func newSimulationView(order []common.TransactionRecord, res *simulate.Result) SimulationView {
	view := SimulationView{
		Order:        make([]string, len(order)),
		TotalRevenue: res.TotalRevenue.StringFixed(0),
		TotalGasUsed: res.TotalGasUsed.StringFixed(0),
		Skipped:      make([]string, len(res.Skipped)),
	}
	for i, tx := range order {
		view.Order[i] = tx.Hash
	}
	for i, s := range res.Skipped {
		view.Skipped[i] = s.String()
	}
	return view
}

func NewAnalysisView(a *analyzer.Analysis) AnalysisView {
	view := AnalysisView{
		BlockNumber:         a.BlockNumber,
		IsOrdered:           a.Order.IsOrdered,
		OrderClassification: a.Order.Classification(),
		OrderDetails:        a.Order.Sprint(false, false),
		FeeRecipient:        a.Reward.FeeRecipient,
		NetRewardEth:        a.Reward.NetReward.StringFixed(6),
		RewardLines:         a.Reward.Lines(),
		GasLimit:            a.Comparison.GasLimit,
		Window:              make([]TxView, len(a.Window)),
		Original:            newSimulationView(a.Comparison.OriginalOrder, a.Comparison.Original),
		Reordered:           newSimulationView(a.Comparison.ReorderedOrder, a.Comparison.Reordered),
		Improved:            a.Comparison.Improved,
		Verdict:             a.Comparison.Verdict(),
	}

	if a.Comparison.BaseFee != nil {
		view.BaseFee = a.Comparison.BaseFee.String()
	}

	for i, tx := range a.Window {
		tip := ""
		if t, err := simulate.EffectiveTip(tx, a.Comparison.BaseFee); err == nil {
			tip = t.String()
		}
		view.Window[i] = TxView{Hash: tx.Hash, Sender: tx.Sender, Nonce: tx.Nonce, GasUsed: tx.GasUsed, EffectiveTip: tip, Failed: tx.Failed}
	}

	return view
}
