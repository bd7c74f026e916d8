// Fetches block data from a data source and runs the order audit, builder reward and reordering analyses
package analyzer

import (
	"context"
	"log"
	"time"

	"github.com/metachris/mev-block-analyzer/common"
	"github.com/metachris/mev-block-analyzer/config"
	"github.com/metachris/mev-block-analyzer/etherscan"
	"github.com/metachris/mev-block-analyzer/flashbots"
	"github.com/metachris/mev-block-analyzer/metrics"
	"github.com/metachris/mev-block-analyzer/ordercheck"
	"github.com/metachris/mev-block-analyzer/reward"
	"github.com/metachris/mev-block-analyzer/simulate"
	"github.com/pkg/errors"
)

// DataSource supplies blocks, receipts, rewards and internal transfers (implemented by etherscan.Client)
type DataSource interface {
	FetchBlock(ctx context.Context, blockNumber int64) (*common.Block, error)
	FetchTransactionReceipt(ctx context.Context, hash string) (*etherscan.Receipt, error)
	FetchBlockReward(ctx context.Context, blockNumber int64) (*common.BlockReward, error)
	FetchTransfersToAddress(ctx context.Context, address string, blockNumber int64) ([]common.InternalTransfer, error)
}

// BundleSource supplies Flashbots bundle information (implemented by flashbots.Client)
type BundleSource interface {
	GetBlock(blockNumber int64) (block flashbots.FlashbotsBlock, found bool, err error)
}

type Service struct {
	Source    DataSource
	Flashbots BundleSource // optional
	Metrics   *metrics.Metrics

	// Transaction window for the reordering simulation
	StartIdx int
	NumTxs   int

	ReceiptDelay time.Duration
	sleep        func(time.Duration)
}

func NewService(source DataSource, cfg *config.Config) *Service {
	return &Service{
		Source:       source,
		StartIdx:     cfg.StartIdx,
		NumTxs:       cfg.NumTxs,
		ReceiptDelay: cfg.ReceiptDelay,
		sleep:        time.Sleep,
	}
}

// Analysis contains the results of all analyses of one block
type Analysis struct {
	BlockNumber int64
	Order       *ordercheck.Result
	Reward      *reward.Report
	Comparison  *simulate.Comparison
	Window      []common.TransactionRecord // enriched transactions used for the comparison
}

// AuditBlock checks whether the transactions of the block are ordered by gas price
func (s *Service) AuditBlock(ctx context.Context, blockNumber int64) (result *ordercheck.Result, err error) {
	defer func() { s.Metrics.RecordAnalysis("order", err) }()

	block, err := s.Source.FetchBlock(ctx, blockNumber)
	if err != nil {
		return nil, err
	}
	return s.auditBlock(block)
}

func (s *Service) auditBlock(block *common.Block) (*ordercheck.Result, error) {
	result, err := ordercheck.CheckTransactionOrder(block.Number, block.Transactions)
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordOrderVerdict(result.IsOrdered)

	if s.Flashbots != nil {
		fbBlock, found, err := s.Flashbots.GetBlock(block.Number)
		if err != nil {
			log.Printf("Flashbots API error for block %d: %v", block.Number, err)
		} else {
			result.AddFlashbotsBlock(fbBlock, found)
		}
	}

	return result, nil
}

// BuilderReward computes the builder's net reward for the block
func (s *Service) BuilderReward(ctx context.Context, blockNumber int64) (report *reward.Report, err error) {
	defer func() { s.Metrics.RecordAnalysis("reward", err) }()

	blockReward, err := s.Source.FetchBlockReward(ctx, blockNumber)
	if err != nil {
		return nil, err
	}

	transfers, err := s.Source.FetchTransfersToAddress(ctx, blockReward.FeeRecipient, blockNumber)
	if err != nil {
		return nil, err
	}

	return reward.CalculateNetReward(*blockReward, transfers), nil
}

// EnrichWithReceipts returns copies of the transactions with GasUsed and Failed taken from their receipts.
// Receipts are fetched one after another, pausing ReceiptDelay between requests.
func (s *Service) EnrichWithReceipts(ctx context.Context, txs []common.TransactionRecord) ([]common.TransactionRecord, error) {
	enriched := make([]common.TransactionRecord, 0, len(txs))
	for i, tx := range txs {
		if i > 0 && s.ReceiptDelay > 0 && s.sleep != nil {
			s.sleep(s.ReceiptDelay)
		}

		receipt, err := s.Source.FetchTransactionReceipt(ctx, tx.Hash)
		if err != nil {
			return nil, errors.Wrapf(err, "receipt for tx %s", tx.Hash)
		}
		enriched = append(enriched, tx.WithReceipt(receipt.GasUsed, receipt.Failed()))
	}
	return enriched, nil
}

// CompareOrderings simulates the configured transaction window of the block in original and in tip-sorted order
func (s *Service) CompareOrderings(ctx context.Context, blockNumber int64) (comparison *simulate.Comparison, window []common.TransactionRecord, err error) {
	defer func() { s.Metrics.RecordAnalysis("reorder", err) }()

	block, err := s.Source.FetchBlock(ctx, blockNumber)
	if err != nil {
		return nil, nil, err
	}
	return s.compareOrderings(ctx, block)
}

func (s *Service) compareOrderings(ctx context.Context, block *common.Block) (*simulate.Comparison, []common.TransactionRecord, error) {
	window, err := s.EnrichWithReceipts(ctx, block.Window(s.StartIdx, s.NumTxs))
	if err != nil {
		return nil, nil, err
	}

	comparison, err := simulate.CompareOrderings(window, block.BaseFeePerGas, block.GasLimit)
	if err != nil {
		return nil, nil, err
	}

	for _, skipped := range comparison.Original.Skipped {
		s.Metrics.RecordSkippedTx("original", string(skipped.Reason))
	}
	for _, skipped := range comparison.Reordered.Skipped {
		s.Metrics.RecordSkippedTx("reordered", string(skipped.Reason))
	}
	s.Metrics.RecordComparison(comparison.Improved)

	return comparison, window, nil
}

// Analyze runs all analyses for one block, fetching the block only once. The first failing analysis aborts.
func (s *Service) Analyze(ctx context.Context, blockNumber int64) (*Analysis, error) {
	analysis := Analysis{BlockNumber: blockNumber}

	block, err := s.Source.FetchBlock(ctx, blockNumber)
	if err != nil {
		s.Metrics.RecordAnalysis("order", err)
		return nil, errors.Wrap(err, "fetching block")
	}

	analysis.Order, err = s.auditBlock(block)
	s.Metrics.RecordAnalysis("order", err)
	if err != nil {
		return nil, errors.Wrap(err, "order audit")
	}

	if analysis.Reward, err = s.BuilderReward(ctx, blockNumber); err != nil {
		return nil, errors.Wrap(err, "builder reward")
	}

	analysis.Comparison, analysis.Window, err = s.compareOrderings(ctx, block)
	s.Metrics.RecordAnalysis("reorder", err)
	if err != nil {
		return nil, errors.Wrap(err, "reordering simulation")
	}

	return &analysis, nil
}
