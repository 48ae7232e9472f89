// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package field

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestInverseZero(t *testing.T) {
	zero := Zero()
	_, err := Inverse(&zero)
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = BatchInverse([]fr.Element{fr.One(), zero})
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestBatchInverse(t *testing.T) {
	a := make([]fr.Element, 16)
	for i := range a {
		a[i].SetUint64(uint64(i + 1))
	}
	inv, err := BatchInverse(a)
	require.NoError(t, err)
	for i := range a {
		var p fr.Element
		p.Mul(&a[i], &inv[i])
		require.True(t, p.IsOne(), "a * 1/a must be one")
	}
}

func TestTwoAdicity(t *testing.T) {
	// BN254 fr has a subgroup of order 2^28.
	require.EqualValues(t, 28, TwoAdicity)
}

func TestFieldLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("(a+b)-b == a", prop.ForAll(
		func(a, b uint64) bool {
			var ea, eb, s fr.Element
			ea.SetUint64(a)
			eb.SetUint64(b)
			s.Add(&ea, &eb).Sub(&s, &eb)
			return s.Equal(&ea)
		},
		gen.UInt64(), gen.UInt64(),
	))

	properties.Property("a * 1/a == 1 for a != 0", prop.ForAll(
		func(a uint64) bool {
			var ea fr.Element
			ea.SetUint64(a)
			if ea.IsZero() {
				return true
			}
			inv, err := Inverse(&ea)
			if err != nil {
				return false
			}
			var p fr.Element
			p.Mul(&ea, &inv)
			return p.IsOne()
		},
		gen.UInt64(),
	))

	properties.Property("Pow matches repeated multiplication", prop.ForAll(
		func(a uint64, e uint8) bool {
			var ea fr.Element
			ea.SetUint64(a)
			got := Pow(ea, uint64(e))
			want := fr.One()
			for i := uint8(0); i < e; i++ {
				want.Mul(&want, &ea)
			}
			return got.Equal(&want)
		},
		gen.UInt64(), gen.UInt8(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
