package simulate

import (
	"math/big"
	"testing"

	"github.com/metachris/mev-block-analyzer/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyTx(hash, sender string, nonce uint64, gasPrice int64, gasUsed uint64) common.TransactionRecord {
	return common.TransactionRecord{
		Hash:     hash,
		Sender:   sender,
		Nonce:    nonce,
		GasPrice: big.NewInt(gasPrice),
		GasUsed:  gasUsed,
	}
}

func assertDecimal(t *testing.T, expected int64, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.NewFromInt(expected)), "expected %d, got %s", expected, actual)
}

func TestEffectiveTip(t *testing.T) {
	baseFee := big.NewInt(100)

	tip, err := EffectiveTip(legacyTx("0x1", "a", 0, 500, 0), baseFee)
	require.NoError(t, err)
	assert.Equal(t, int64(400), tip.Int64())

	// never negative
	tip, err = EffectiveTip(legacyTx("0x2", "a", 0, 50, 0), baseFee)
	require.NoError(t, err)
	assert.Equal(t, int64(0), tip.Int64())

	// priority fee is used as is, even if gasPrice is set
	tx := legacyTx("0x3", "a", 0, 500, 0)
	tx.MaxPriorityFeePerGas = big.NewInt(7)
	tip, err = EffectiveTip(tx, baseFee)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tip.Int64())

	// nil base fee (pre-London block)
	tip, err = EffectiveTip(legacyTx("0x4", "a", 0, 500, 0), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(500), tip.Int64())

	_, err = EffectiveTip(common.TransactionRecord{Hash: "0x5", Sender: "a"}, baseFee)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestEffectiveTipDoesNotAlias(t *testing.T) {
	tx := legacyTx("0x1", "a", 0, 0, 0)
	tx.MaxPriorityFeePerGas = big.NewInt(7)
	tip, err := EffectiveTip(tx, nil)
	require.NoError(t, err)
	tip.SetInt64(99)
	assert.Equal(t, int64(7), tx.MaxPriorityFeePerGas.Int64())
}

func TestSimulatedGasUsed(t *testing.T) {
	assertDecimal(t, 21000, SimulatedGasUsed(21000, 0))
	assertDecimal(t, 22050, SimulatedGasUsed(21000, 1))
	assertDecimal(t, 23100, SimulatedGasUsed(21000, 2))
	assertDecimal(t, 42000, SimulatedGasUsed(21000, 20))

	last := decimal.Zero
	for i := 0; i < 200; i++ {
		g := SimulatedGasUsed(50000, i)
		assert.True(t, g.GreaterThanOrEqual(last), "position %d", i)
		last = g
	}
}

func TestSimulateBlock(t *testing.T) {
	txs := []common.TransactionRecord{
		legacyTx("0x1", "alice", 0, 500, 21000),
		legacyTx("0x2", "bob", 0, 300, 21000),
		legacyTx("0x3", "carol", 0, 700, 21000),
	}

	res, err := SimulateBlock(txs, big.NewInt(100), 1_000_000)
	require.NoError(t, err)

	// 21000*400 + 22050*200 + 23100*600
	assertDecimal(t, 26_670_000, res.TotalRevenue)
	assertDecimal(t, 66150, res.TotalGasUsed)
	assert.Len(t, res.Included, 3)
	assert.False(t, res.HasSkipped())
	assert.Equal(t, int64(600), res.Included[2].EffectiveTip.Int64())
}

func TestSimulateBlockEmpty(t *testing.T) {
	res, err := SimulateBlock(nil, big.NewInt(100), 1_000_000)
	require.NoError(t, err)
	assert.True(t, res.TotalRevenue.IsZero())
	assert.True(t, res.TotalGasUsed.IsZero())
	assert.Empty(t, res.Skipped)
}

func TestSimulateBlockDuplicateNonce(t *testing.T) {
	txs := []common.TransactionRecord{
		legacyTx("0x1", "alice", 5, 500, 21000),
		legacyTx("0x2", "alice", 5, 900, 21000),
	}

	res, err := SimulateBlock(txs, big.NewInt(100), 1_000_000)
	require.NoError(t, err)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "0x2", res.Skipped[0].Hash)
	assert.Equal(t, SkipNonceViolation, res.Skipped[0].Reason)
	assert.Equal(t, "Skipping tx 0x2 due to nonce violation (nonce 5 <= last 5).", res.Skipped[0].String())
	assertDecimal(t, 21000, res.TotalGasUsed)
	assertDecimal(t, 21000*400, res.TotalRevenue)
}

func TestSimulateBlockNonceSenderCaseInsensitive(t *testing.T) {
	txs := []common.TransactionRecord{
		legacyTx("0x1", "0xAbC", 5, 500, 21000),
		legacyTx("0x2", "0xabc", 4, 500, 21000),
	}
	res, err := SimulateBlock(txs, big.NewInt(100), 1_000_000)
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, SkipNonceViolation, res.Skipped[0].Reason)
}

func TestSimulateBlockNonceViolationRegardlessOfTip(t *testing.T) {
	txs := []common.TransactionRecord{
		legacyTx("0x1", "alice", 10, 101, 21000),
		legacyTx("0x2", "alice", 3, 1_000_000, 21000),
		legacyTx("0x3", "alice", 11, 101, 21000),
	}
	res, err := SimulateBlock(txs, big.NewInt(100), 1_000_000)
	require.NoError(t, err)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "0x2", res.Skipped[0].Hash)
	assert.Len(t, res.Included, 2)
}

func TestSimulateBlockGasLimit(t *testing.T) {
	txs := []common.TransactionRecord{
		legacyTx("0x1", "alice", 0, 500, 21000),
		legacyTx("0x2", "bob", 0, 300, 21000),
		legacyTx("0x3", "carol", 0, 700, 0), // unknown gas used -> 21000
	}

	res, err := SimulateBlock(txs, big.NewInt(100), 43000)
	require.NoError(t, err)

	// position 1 needs 22050 (total 43050), position 2 needs 23100
	assertDecimal(t, 21000, res.TotalGasUsed)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, SkipGasLimitExceeded, res.Skipped[0].Reason)
	assert.Equal(t, SkipGasLimitExceeded, res.Skipped[1].Reason)
	assert.Equal(t, "Skipping tx 0x2 due to gas limit exceeded (simulated gas 22050 exceeds block gas limit 43000, gas used so far: 21000).", res.Skipped[0].String())
	assert.True(t, res.TotalGasUsed.LessThanOrEqual(decimal.NewFromInt(43000)))
}

func TestSimulateBlockGasNeverExceedsLimit(t *testing.T) {
	txs := make([]common.TransactionRecord, 0)
	for i := 0; i < 50; i++ {
		txs = append(txs, legacyTx(big.NewInt(int64(i)).String(), "sender", uint64(i), int64(100+i), uint64(21000+i*3000)))
	}

	for _, limit := range []uint64{0, 21000, 100_000, 500_000, 1_234_567, 30_000_000} {
		res, err := SimulateBlock(txs, big.NewInt(100), limit)
		require.NoError(t, err)
		assert.True(t, res.TotalGasUsed.LessThanOrEqual(decimal.NewFromBigInt(new(big.Int).SetUint64(limit), 0)), "limit %d", limit)
		assert.Equal(t, len(txs), len(res.Included)+len(res.Skipped))
	}
}

// A tx excluded for gas still advances the sender's nonce, so the next tx of
// the sender with the same nonce is reported as a nonce violation.
// TODO: decide whether gas-skipped transactions should leave the nonce tracking untouched
func TestSimulateBlockGasSkipStillRecordsNonce(t *testing.T) {
	txs := []common.TransactionRecord{
		legacyTx("0x1", "alice", 5, 500, 50000),
		legacyTx("0x2", "alice", 5, 500, 10000),
	}

	res, err := SimulateBlock(txs, big.NewInt(100), 20000)
	require.NoError(t, err)
	require.Len(t, res.Skipped, 2)
	assert.Equal(t, SkipGasLimitExceeded, res.Skipped[0].Reason)
	assert.Equal(t, SkipNonceViolation, res.Skipped[1].Reason)
	assert.True(t, res.TotalGasUsed.IsZero())
}

func TestSimulateBlockInvalidRecords(t *testing.T) {
	valid := legacyTx("0x1", "alice", 0, 500, 21000)

	for name, tx := range map[string]common.TransactionRecord{
		"no hash":   {Sender: "bob", GasPrice: big.NewInt(1)},
		"no sender": {Hash: "0x2", GasPrice: big.NewInt(1)},
		"no price":  {Hash: "0x2", Sender: "bob"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := SimulateBlock([]common.TransactionRecord{valid, tx}, big.NewInt(100), 1_000_000)
			assert.True(t, errors.Is(err, ErrInvalidRecord), "got %v", err)
		})
	}
}
