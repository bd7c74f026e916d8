package dashboard

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/metachris/mev-block-analyzer/analyzer"
	"github.com/metachris/mev-block-analyzer/common"
	"github.com/metachris/mev-block-analyzer/etherscan"
	"github.com/metachris/mev-block-analyzer/ordercheck"
	"github.com/metachris/mev-block-analyzer/reward"
	"github.com/metachris/mev-block-analyzer/simulate"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	requested []int64
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, blockNumber int64) (*analyzer.Analysis, error) {
	f.requested = append(f.requested, blockNumber)
	if blockNumber == 404 {
		return nil, errors.Wrap(etherscan.ErrNotFound, "block 404")
	}

	txs := []common.TransactionRecord{
		{Hash: "0xa", Sender: "0x1", GasPrice: big.NewInt(500), GasUsed: 21000},
		{Hash: "0xb", Sender: "0x2", GasPrice: big.NewInt(300), GasUsed: 21000},
		{Hash: "0xc", Sender: "0x3", GasPrice: big.NewInt(700), GasUsed: 21000, Failed: true},
	}
	order, err := ordercheck.CheckTransactionOrder(blockNumber, txs)
	if err != nil {
		return nil, err
	}
	cmp, err := simulate.CompareOrderings(txs, big.NewInt(100), 1_000_000)
	if err != nil {
		return nil, err
	}
	wei, _ := new(big.Int).SetString("2000000000000000000", 10)
	rep := reward.CalculateNetReward(common.BlockReward{BlockNumber: blockNumber, FeeRecipient: "0xbuilder", BlockReward: wei}, nil)

	return &analyzer.Analysis{BlockNumber: blockNumber, Order: order, Reward: rep, Comparison: cmp, Window: txs}, nil
}

func newTestServer(t *testing.T) (*Server, *fakeAnalyzer) {
	a := &fakeAnalyzer{}
	s, err := New(":0", a, 21821918)
	require.NoError(t, err)
	return s, a
}

func TestAnalysisJSON(t *testing.T) {
	s, a := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/analysis?block=123", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{123}, a.requested)

	var view AnalysisView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, int64(123), view.BlockNumber)
	assert.False(t, view.IsOrdered)
	assert.Equal(t, ordercheck.MsgNotOrdered, view.OrderClassification)
	assert.Equal(t, "2.000000", view.NetRewardEth)
	assert.Equal(t, "26670000", view.Original.TotalRevenue)
	assert.Equal(t, "26040000", view.Reordered.TotalRevenue)
	assert.Equal(t, []string{"0xc", "0xa", "0xb"}, view.Reordered.Order)
	assert.Equal(t, simulate.VerdictNotImproved, view.Verdict)
	require.Len(t, view.Window, 3)
	assert.Equal(t, "400", view.Window[0].EffectiveTip)
	assert.False(t, view.Window[0].Failed)
	assert.True(t, view.Window[2].Failed)
}

func TestAnalysisJSONDefaultBlock(t *testing.T) {
	s, a := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/analysis", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{21821918}, a.requested)
}

func TestAnalysisJSONErrors(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/analysis?block=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/api/analysis?block=404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not found")

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("POST", "/api/analysis", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIndexPage(t *testing.T) {
	s, a := newTestServer(t)

	// no block selected: only the form
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="21821918"`)
	assert.NotContains(t, rec.Body.String(), "Q2:")
	assert.Empty(t, a.requested)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/?block=77", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Q1: Verify that it is a MEV block")
	assert.Contains(t, body, "Transactions are NOT ordered by gas price")
	assert.Contains(t, body, "Net Reward for Builder")
	assert.Contains(t, body, simulate.VerdictNotImproved)

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/?block=404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)
}

func TestHealthAndUnknownPath(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
