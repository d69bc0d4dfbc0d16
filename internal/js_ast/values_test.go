package js_ast

import (
	"math"
	"testing"

	"github.com/evanw/treeshake/internal/test"
)

func TestFoldBinary(t *testing.T) {
	cases := []struct {
		op       OpCode
		a, b     LiteralValue
		expected LiteralValue
	}{
		{BinOpAdd, NumberValue(1), NumberValue(2), NumberValue(3)},
		{BinOpAdd, StringValue("a"), NumberValue(1), StringValue("a1")},
		{BinOpAdd, NullValue, StringValue("x"), StringValue("nullx")},
		{BinOpStrictEq, NumberValue(1), StringValue("1"), BoolValue(false)},
		{BinOpLooseEq, NumberValue(1), StringValue("1"), BoolValue(true)},
		{BinOpLooseEq, NullValue, UndefinedValue, BoolValue(true)},
		{BinOpLt, StringValue("a"), StringValue("b"), BoolValue(true)},
		{BinOpShl, NumberValue(1), NumberValue(33), NumberValue(2)},
		{BinOpUShr, NumberValue(-1), NumberValue(28), NumberValue(15)},
		{BinOpIn, StringValue("a"), StringValue("b"), UnknownValue},
		{BinOpAdd, UnknownValue, NumberValue(1), UnknownValue},
	}
	for _, c := range cases {
		test.AssertEqual(t, FoldBinary(c.op, c.a, c.b), c.expected)
	}
}

func TestFoldUnary(t *testing.T) {
	test.AssertEqual(t, FoldUnary(UnOpNot, StringValue("")), BoolValue(true))
	test.AssertEqual(t, FoldUnary(UnOpTypeof, NullValue), StringValue("object"))
	test.AssertEqual(t, FoldUnary(UnOpVoid, NumberValue(1)), UndefinedValue)
	test.AssertEqual(t, FoldUnary(UnOpCpl, NumberValue(0)), NumberValue(-1))
	test.AssertEqual(t, FoldUnary(UnOpDelete, NumberValue(0)), UnknownValue)

	n := FoldUnary(UnOpPos, StringValue("x"))
	test.AssertEqual(t, math.IsNaN(n.Number), true)
}

func TestTruthy(t *testing.T) {
	cases := []struct {
		value  LiteralValue
		truthy bool
		known  bool
	}{
		{NumberValue(0), false, true},
		{NumberValue(math.NaN()), false, true},
		{StringValue("0"), true, true},
		{UndefinedValue, false, true},
		{UnknownValue, false, false},
	}
	for _, c := range cases {
		truthy, known := c.value.Truthy()
		test.AssertEqual(t, truthy, c.truthy)
		test.AssertEqual(t, known, c.known)
	}
}

func TestNumberToString(t *testing.T) {
	cases := map[float64]string{
		0:            "0",
		-1.5:         "-1.5",
		1e21:         "1e+21",
		123456789:    "123456789",
		0.000001:     "0.000001",
		1e-7:         "1e-7",
		math.Inf(-1): "-Infinity",
	}
	for value, expected := range cases {
		test.AssertEqual(t, NumberToString(value), expected)
	}
	test.AssertEqual(t, NumberToString(math.NaN()), "NaN")
}
