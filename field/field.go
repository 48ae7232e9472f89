// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package field wraps the scalar field of BN254 (gnark-crypto fr) with the
// arithmetic contract the STARK engine relies on.
//
// The field has a 2-adicity of 28, i.e. its multiplicative group contains a
// subgroup of order 2²⁸; every evaluation domain used by the prover is a coset
// of a subgroup of that size or smaller.
package field

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrDivisionByZero is returned when inverting the additive identity.
var ErrDivisionByZero = errors.New("division by zero")

// Bytes is the size of a field element encoding.
const Bytes = fr.Bytes

// TwoAdicity is the number of times 2 divides the multiplicative group order.
var TwoAdicity = uint(new(big.Int).Sub(fr.Modulus(), big.NewInt(1)).TrailingZeroBits())

// Zero returns the additive identity.
func Zero() fr.Element {
	var z fr.Element
	return z
}

// One returns the multiplicative identity.
func One() fr.Element {
	return fr.One()
}

// Inverse returns 1/a, or ErrDivisionByZero if a is zero.
//
// fr.Element.Inverse maps zero to zero silently; the protocol treats an
// inversion of zero as a contract violation and surfaces it instead.
func Inverse(a *fr.Element) (fr.Element, error) {
	var res fr.Element
	if a.IsZero() {
		return res, ErrDivisionByZero
	}
	res.Inverse(a)
	return res, nil
}

// BatchInverse inverts all elements of a. It returns ErrDivisionByZero if any
// element is zero.
func BatchInverse(a []fr.Element) ([]fr.Element, error) {
	for i := range a {
		if a[i].IsZero() {
			return nil, ErrDivisionByZero
		}
	}
	return fr.BatchInvert(a), nil
}

// Pow returns base^exponent by square-and-multiply.
func Pow(base fr.Element, exponent uint64) fr.Element {
	var res fr.Element
	res.Exp(base, new(big.Int).SetUint64(exponent))
	return res
}

// FromBytes maps an arbitrary byte string (typically a hash digest) to a
// field element, reducing modulo the field order.
func FromBytes(b []byte) fr.Element {
	var res fr.Element
	res.SetBytes(b)
	return res
}
