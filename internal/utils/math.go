package utils

import (
	"math/bits"

	"github.com/holiman/uint256"
)

// CheckedAdd returns a+b and reports whether the sum fits in uint64.
func CheckedAdd(a, b uint64) (uint64, bool) {
	sum, carry := bits.Add64(a, b, 0)
	return sum, carry == 0
}

// CheckedSub returns a-b and reports whether the difference is non-negative.
func CheckedSub(a, b uint64) (uint64, bool) {
	diff, borrow := bits.Sub64(a, b, 0)
	return diff, borrow == 0
}

// CheckedMul returns a*b and reports whether the product fits in uint64.
func CheckedMul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// MulDiv returns floor(a*b/c) with the intermediate product held in 256 bits,
// so a*b may exceed uint64 without wrapping. Reports false when c is zero or
// the quotient does not fit in uint64.
func MulDiv(a, b, c uint64) (uint64, bool) {
	if c == 0 {
		return 0, false
	}
	num := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	num.Div(num, uint256.NewInt(c))
	if !num.IsUint64() {
		return 0, false
	}
	return num.Uint64(), true
}

// SqrtProduct returns floor(sqrt(a*b)). The product is computed in 256 bits;
// its square root always fits in uint64.
func SqrtProduct(a, b uint64) uint64 {
	p := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	p.Sqrt(p)
	return p.Uint64()
}

// SwapOutput returns floor(amountIn*997*reserveOut / (reserveIn*1000 + amountIn*997)),
// the constant-product output after the 0.3% curve fee. Intermediates are
// 256-bit; the result is always below reserveOut, so it fits in uint64.
// Reports false when both sides of the denominator are zero.
func SwapOutput(amountIn, reserveIn, reserveOut uint64) (uint64, bool) {
	inScaled := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(997))
	den := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(1000))
	den.Add(den, inScaled)
	if den.IsZero() {
		return 0, false
	}
	num := new(uint256.Int).Mul(inScaled, uint256.NewInt(reserveOut))
	num.Div(num, den)
	return num.Uint64(), true
}

// Min returns the smaller of a or b
func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a or b
func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
