package simulate

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Each position later in the block costs another 5% of the base gas usage
var gasIncreasePerPosition = decimal.New(5, -2)

// SimulatedGasUsed is a toy model for order-dependent execution cost: baseGasUsed * (1 + 0.05 * positionIndex).
func SimulatedGasUsed(baseGasUsed uint64, positionIndex int) decimal.Decimal {
	base := decimal.NewFromBigInt(new(big.Int).SetUint64(baseGasUsed), 0)
	multiplier := decimal.NewFromInt(1).Add(gasIncreasePerPosition.Mul(decimal.NewFromInt(int64(positionIndex))))
	return base.Mul(multiplier)
}
