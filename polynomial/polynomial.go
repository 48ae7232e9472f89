// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package polynomial implements dense univariate polynomials over the scalar
// field, together with FFT-based evaluation and interpolation over cosets of
// the field's 2-adic subgroup.
package polynomial

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrDivisionByZero is returned when dividing by the zero polynomial.
var ErrDivisionByZero = errors.New("division by zero polynomial")

// Polynomial is a dense polynomial, low-degree coefficient first.
// The zero polynomial is the empty slice.
type Polynomial []fr.Element

// New builds a polynomial from coefficients, trimming trailing zeros so the
// representation is canonical.
func New(coeffs []fr.Element) Polynomial {
	i := len(coeffs)
	for i > 0 && coeffs[i-1].IsZero() {
		i--
	}
	res := make(Polynomial, i)
	copy(res, coeffs[:i])
	return res
}

// Degree returns the degree of p, with -1 for the zero polynomial.
func (p Polynomial) Degree() int {
	for i := len(p) - 1; i >= 0; i-- {
		if !p[i].IsZero() {
			return i
		}
	}
	return -1
}

// IsZero reports whether p is the zero polynomial.
func (p Polynomial) IsZero() bool {
	return p.Degree() == -1
}

// Clone returns a deep copy of p.
func (p Polynomial) Clone() Polynomial {
	res := make(Polynomial, len(p))
	copy(res, p)
	return res
}

// Eval evaluates p at point using Horner's method.
func (p Polynomial) Eval(point *fr.Element) fr.Element {
	var res fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		res.Mul(&res, point)
		res.Add(&res, &p[i])
	}
	return res
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	n := max(len(p), len(q))
	res := make([]fr.Element, n)
	copy(res, p)
	for i := range q {
		res[i].Add(&res[i], &q[i])
	}
	return New(res)
}

// Sub returns p - q.
func (p Polynomial) Sub(q Polynomial) Polynomial {
	n := max(len(p), len(q))
	res := make([]fr.Element, n)
	copy(res, p)
	for i := range q {
		res[i].Sub(&res[i], &q[i])
	}
	return New(res)
}

// Mul returns p * q, schoolbook. The composition step only multiplies small
// operands; FFT multiplication is not worth the round trips here.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	if p.IsZero() || q.IsZero() {
		return Polynomial{}
	}
	res := make([]fr.Element, len(p)+len(q)-1)
	var t fr.Element
	for i := range p {
		if p[i].IsZero() {
			continue
		}
		for j := range q {
			t.Mul(&p[i], &q[j])
			res[i+j].Add(&res[i+j], &t)
		}
	}
	return New(res)
}

// MulByConstant returns c * p.
func (p Polynomial) MulByConstant(c *fr.Element) Polynomial {
	res := make([]fr.Element, len(p))
	for i := range p {
		res[i].Mul(&p[i], c)
	}
	return New(res)
}

// Scale returns the polynomial x -> p(factor * x), i.e. multiplies the i-th
// coefficient by factor^i.
func (p Polynomial) Scale(factor *fr.Element) Polynomial {
	res := make([]fr.Element, len(p))
	acc := fr.One()
	for i := range p {
		res[i].Mul(&p[i], &acc)
		acc.Mul(&acc, factor)
	}
	return New(res)
}

// DivByLinear divides p by (x - root) using synthetic division and returns
// the quotient and the remainder p(root).
func (p Polynomial) DivByLinear(root *fr.Element) (Polynomial, fr.Element) {
	if len(p) == 0 {
		return Polynomial{}, fr.Element{}
	}
	quot := make([]fr.Element, len(p)-1)
	rem := p[len(p)-1]
	for i := len(p) - 2; i >= 0; i-- {
		quot[i] = rem
		rem.Mul(&rem, root)
		rem.Add(&rem, &p[i])
	}
	return New(quot), rem
}

// Div returns the quotient and remainder of the Euclidean division of p by
// q: p = q*quot + rem with deg(rem) < deg(q).
func (p Polynomial) Div(q Polynomial) (quot, rem Polynomial, err error) {
	if q.IsZero() {
		return nil, nil, ErrDivisionByZero
	}
	dq := q.Degree()
	if p.Degree() < dq {
		return Polynomial{}, p.Clone(), nil
	}

	var lcInv fr.Element
	lcInv.Inverse(&q[dq])
	r := p.Clone()
	quotient := make([]fr.Element, p.Degree()-dq+1)
	var c, t fr.Element
	for d := r.Degree(); d >= dq; d = r.Degree() {
		shift := d - dq
		c.Mul(&r[d], &lcInv)
		quotient[shift] = c
		for i := 0; i <= dq; i++ {
			t.Mul(&q[i], &c)
			r[shift+i].Sub(&r[shift+i], &t)
		}
	}
	return New(quotient), New(r), nil
}

// Pow returns p raised to exponent, with p⁰ = 1.
func (p Polynomial) Pow(exponent uint64) Polynomial {
	res := Polynomial{fr.One()}
	base := p.Clone()
	for e := exponent; e > 0; e >>= 1 {
		if e&1 == 1 {
			res = res.Mul(base)
		}
		if e > 1 {
			base = base.Mul(base)
		}
	}
	return res
}

// Zerofier returns the monic polynomial vanishing exactly on points.
func Zerofier(points []fr.Element) Polynomial {
	res := Polynomial{fr.One()}
	for i := range points {
		var negRoot fr.Element
		negRoot.Neg(&points[i])
		res = res.Mul(Polynomial{negRoot, fr.One()})
	}
	return res
}

// InterpolateLagrange recovers the unique polynomial of degree < len(domain)
// agreeing with values on domain, by Lagrange interpolation. Quadratic; used
// for tiny domains and as an FFT cross-check in tests.
func InterpolateLagrange(domain, values []fr.Element) Polynomial {
	res := Polynomial{}
	for i := range domain {
		num := Polynomial{values[i]}
		for j := range domain {
			if i == j {
				continue
			}
			var diff, invDiff, negX fr.Element
			diff.Sub(&domain[i], &domain[j])
			invDiff.Inverse(&diff)
			negX.Neg(&domain[j])
			num = num.Mul(Polynomial{negX, fr.One()}).MulByConstant(&invDiff)
		}
		res = res.Add(num)
	}
	return res
}
