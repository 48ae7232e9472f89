// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package polynomial

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/consensys/stark/field"
)

// ErrUnsupportedDomainSize is returned when a domain size is not a power of
// two or exceeds the field's 2-adic subgroup order.
var ErrUnsupportedDomainSize = errors.New("unsupported domain size")

// Domain is a coset shift * <generator> of a power-of-two order subgroup.
// A zero shift value means no coset (shift = 1). The i-th domain point is
// shift * generator^i.
type Domain struct {
	size    uint64
	shift   fr.Element
	onCoset bool
	fft     *fft.Domain
}

// NewDomain builds the order-size subgroup domain <generator>, generator
// being the canonical 2-adic root of unity raised to the appropriate power.
// All domains derive their generator from the same primitive root, so
// NewDomain(n).Generator() == Pow(NewDomain(m).Generator(), m/n) for n | m.
func NewDomain(size uint64) (*Domain, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return &Domain{
		size: size,
		fft:  fft.NewDomain(size),
	}, nil
}

// NewCosetDomain builds the coset shift * <generator>. The shift must not
// belong to the subgroup, otherwise evaluation points collide with it.
func NewCosetDomain(size uint64, shift fr.Element) (*Domain, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if shift.IsZero() {
		return nil, fmt.Errorf("%w: zero coset shift", ErrUnsupportedDomainSize)
	}
	return &Domain{
		size:    size,
		shift:   shift,
		onCoset: true,
		fft:     fft.NewDomain(size, fft.WithShift(shift)),
	}, nil
}

func checkSize(size uint64) error {
	if size == 0 || bits.OnesCount64(size) != 1 {
		return fmt.Errorf("%w: %d is not a power of two", ErrUnsupportedDomainSize, size)
	}
	if bits.TrailingZeros64(size) > int(field.TwoAdicity) {
		return fmt.Errorf("%w: %d exceeds the 2-adic subgroup order", ErrUnsupportedDomainSize, size)
	}
	return nil
}

// Size returns the number of points of d.
func (d *Domain) Size() uint64 { return d.size }

// Generator returns the subgroup generator.
func (d *Domain) Generator() fr.Element { return d.fft.Generator }

// GeneratorInv returns the inverse of the subgroup generator.
func (d *Domain) GeneratorInv() fr.Element { return d.fft.GeneratorInv }

// Shift returns the coset shift (one for a plain subgroup domain).
func (d *Domain) Shift() fr.Element {
	if !d.onCoset {
		return fr.One()
	}
	return d.shift
}

// Element returns the i-th domain point shift * generator^i.
func (d *Domain) Element(i uint64) fr.Element {
	res := field.Pow(d.fft.Generator, i%d.size)
	if d.onCoset {
		res.Mul(&res, &d.shift)
	}
	return res
}

// Elements materializes all domain points in index order.
func (d *Domain) Elements() []fr.Element {
	res := make([]fr.Element, d.size)
	acc := d.Shift()
	gen := d.fft.Generator
	for i := range res {
		res[i] = acc
		acc.Mul(&acc, &gen)
	}
	return res
}

// Evaluate computes the codeword of p over d, i.e. p evaluated at every
// domain point in index order. Coefficients beyond the domain size are
// rejected; evaluating a polynomial known on a smaller domain onto a larger
// coset is the low-degree extension step.
func (d *Domain) Evaluate(p Polynomial) ([]fr.Element, error) {
	if uint64(len(p)) > d.size {
		return nil, fmt.Errorf("%w: %d coefficients do not fit on %d points", ErrUnsupportedDomainSize, len(p), d.size)
	}
	codeword := make([]fr.Element, d.size)
	copy(codeword, p)
	if d.onCoset {
		d.fft.FFT(codeword, fft.DIF, fft.OnCoset())
	} else {
		d.fft.FFT(codeword, fft.DIF)
	}
	fft.BitReverse(codeword)
	return codeword, nil
}

// Interpolate recovers the unique polynomial of degree < |d| agreeing with
// values on d.
func (d *Domain) Interpolate(values []fr.Element) (Polynomial, error) {
	if uint64(len(values)) != d.size {
		return nil, fmt.Errorf("%w: %d values on a %d point domain", ErrUnsupportedDomainSize, len(values), d.size)
	}
	coeffs := make([]fr.Element, d.size)
	copy(coeffs, values)
	if d.onCoset {
		d.fft.FFTInverse(coeffs, fft.DIF, fft.OnCoset())
	} else {
		d.fft.FFTInverse(coeffs, fft.DIF)
	}
	fft.BitReverse(coeffs)
	return New(coeffs), nil
}
