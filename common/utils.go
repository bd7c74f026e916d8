package common

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const ethDecimals = 18

func BigFloatToEString(f *big.Float, prec int) string {
	s1 := f.Text('f', 0)
	if len(s1) >= 16 {
		f2 := new(big.Float).Quo(f, big.NewFloat(1e18))
		s := f2.Text('f', prec)
		return s + "e+18"
	} else if len(s1) >= 9 {
		f2 := new(big.Float).Quo(f, big.NewFloat(1e9))
		s := f2.Text('f', prec)
		return s + "e+09"
	}
	return f.Text('f', prec)
}

func BigIntToEString(i *big.Int, prec int) string {
	f := new(big.Float)
	f.SetInt(i)
	s1 := f.Text('f', 0)
	if len(s1) < 9 {
		return i.String()
	}
	return BigFloatToEString(f, prec)
}

// DecimalToEString formats a (possibly fractional) wei amount like BigFloatToEString
func DecimalToEString(d decimal.Decimal, prec int) string {
	return BigFloatToEString(d.BigFloat(), prec)
}

// WeiToEth converts a wei amount to ETH without losing precision. nil is treated as zero.
func WeiToEth(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -ethDecimals)
}

// SumBigInts adds up all values, skipping nil entries
func SumBigInts(values ...*big.Int) *big.Int {
	sum := new(big.Int)
	for _, v := range values {
		if v != nil {
			sum.Add(sum, v)
		}
	}
	return sum
}
