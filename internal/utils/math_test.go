package utils

import (
	"math"
	"testing"
)

func TestCheckedAdd(t *testing.T) {
	if v, ok := CheckedAdd(1, 2); !ok || v != 3 {
		t.Errorf("CheckedAdd(1,2) = %d, %v", v, ok)
	}
	if _, ok := CheckedAdd(math.MaxUint64, 1); ok {
		t.Error("expected overflow for MaxUint64+1")
	}
	if v, ok := CheckedAdd(math.MaxUint64, 0); !ok || v != math.MaxUint64 {
		t.Errorf("CheckedAdd(MaxUint64,0) = %d, %v", v, ok)
	}
}

func TestCheckedSub(t *testing.T) {
	if v, ok := CheckedSub(5, 3); !ok || v != 2 {
		t.Errorf("CheckedSub(5,3) = %d, %v", v, ok)
	}
	if _, ok := CheckedSub(3, 5); ok {
		t.Error("expected underflow for 3-5")
	}
	if v, ok := CheckedSub(5, 5); !ok || v != 0 {
		t.Errorf("CheckedSub(5,5) = %d, %v", v, ok)
	}
}

func TestCheckedMul(t *testing.T) {
	if v, ok := CheckedMul(6, 7); !ok || v != 42 {
		t.Errorf("CheckedMul(6,7) = %d, %v", v, ok)
	}
	if _, ok := CheckedMul(math.MaxUint64, 2); ok {
		t.Error("expected overflow for MaxUint64*2")
	}
	if v, ok := CheckedMul(0, math.MaxUint64); !ok || v != 0 {
		t.Errorf("CheckedMul(0,MaxUint64) = %d, %v", v, ok)
	}
}

func TestMulDiv(t *testing.T) {
	if v, ok := MulDiv(100, 1000, 1000); !ok || v != 100 {
		t.Errorf("MulDiv(100,1000,1000) = %d, %v", v, ok)
	}
	// Intermediate product exceeds uint64 but the quotient fits.
	if v, ok := MulDiv(math.MaxUint64, 1000, 1000); !ok || v != math.MaxUint64 {
		t.Errorf("MulDiv(MaxUint64,1000,1000) = %d, %v", v, ok)
	}
	if _, ok := MulDiv(1, 1, 0); ok {
		t.Error("expected failure for division by zero")
	}
	if _, ok := MulDiv(math.MaxUint64, 2, 1); ok {
		t.Error("expected failure for quotient above uint64")
	}
	// Floor division
	if v, ok := MulDiv(7, 1, 2); !ok || v != 3 {
		t.Errorf("MulDiv(7,1,2) = %d, %v", v, ok)
	}
}

func TestSqrtProduct(t *testing.T) {
	if v := SqrtProduct(10000, 10000); v != 10000 {
		t.Errorf("SqrtProduct(10000,10000) = %d, want 10000", v)
	}
	if v := SqrtProduct(2, 8); v != 4 {
		t.Errorf("SqrtProduct(2,8) = %d, want 4", v)
	}
	// Non-perfect square floors.
	if v := SqrtProduct(2, 4); v != 2 {
		t.Errorf("SqrtProduct(2,4) = %d, want 2", v)
	}
	if v := SqrtProduct(0, 12345); v != 0 {
		t.Errorf("SqrtProduct(0,12345) = %d, want 0", v)
	}
	// Product well above uint64 still roots into range.
	if v := SqrtProduct(math.MaxUint64, math.MaxUint64); v != math.MaxUint64 {
		t.Errorf("SqrtProduct(MaxUint64,MaxUint64) = %d, want MaxUint64", v)
	}
}

func TestSwapOutput(t *testing.T) {
	// 1000 in against 100000/100000 reserves: 997*1000*100000 / (100000*1000 + 997*1000).
	if v, ok := SwapOutput(1000, 100000, 100000); !ok || v != 987 {
		t.Errorf("SwapOutput(1000,100000,100000) = %d, %v, want 987", v, ok)
	}
	// 100 in against 1000/1000: floor(100*997*1000 / (1000*1000 + 100*997)).
	if v, ok := SwapOutput(100, 1000, 1000); !ok || v != 90 {
		t.Errorf("SwapOutput(100,1000,1000) = %d, %v, want 90", v, ok)
	}
	// Output never reaches the full opposing reserve.
	if v, ok := SwapOutput(math.MaxUint64, 1, math.MaxUint64); !ok || v >= math.MaxUint64 {
		t.Errorf("SwapOutput at extremes = %d, %v", v, ok)
	}
	if v, ok := SwapOutput(0, 1000, 1000); !ok || v != 0 {
		t.Errorf("SwapOutput(0,...) = %d, %v", v, ok)
	}
	if _, ok := SwapOutput(0, 0, 1000); ok {
		t.Error("expected failure for empty pool and zero input")
	}
}

func TestMinMax(t *testing.T) {
	if Min(3, 5) != 3 || Min(5, 3) != 3 {
		t.Error("Min failed")
	}
	if Max(3, 5) != 5 || Max(5, 3) != 5 {
		t.Error("Max failed")
	}
}
