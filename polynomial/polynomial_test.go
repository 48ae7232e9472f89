// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package polynomial

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func randomPoly(t *testing.T, degree int) Polynomial {
	t.Helper()
	coeffs := make([]fr.Element, degree+1)
	for i := range coeffs {
		_, err := coeffs[i].SetRandom()
		require.NoError(t, err)
	}
	// make sure the leading coefficient is non zero
	if coeffs[degree].IsZero() {
		coeffs[degree].SetOne()
	}
	return New(coeffs)
}

func TestDegree(t *testing.T) {
	require.Equal(t, -1, Polynomial{}.Degree())
	require.Equal(t, -1, New([]fr.Element{{}, {}}).Degree())
	p := New([]fr.Element{fr.One(), {}, fr.One(), {}})
	require.Equal(t, 2, p.Degree())
	require.Equal(t, 3, len(p), "trailing zeros must be trimmed")
}

func TestEvalHorner(t *testing.T) {
	p := randomPoly(t, 10)
	var x fr.Element
	x.SetUint64(3)

	// naive evaluation
	var want, xi, term fr.Element
	xi.SetOne()
	for i := range p {
		term.Mul(&p[i], &xi)
		want.Add(&want, &term)
		xi.Mul(&xi, &x)
	}

	got := p.Eval(&x)
	require.True(t, got.Equal(&want))
}

func TestArithmetic(t *testing.T) {
	p := randomPoly(t, 7)
	q := randomPoly(t, 4)
	var x fr.Element
	x.SetUint64(17)

	px := p.Eval(&x)
	qx := q.Eval(&x)

	var want fr.Element
	want.Add(&px, &qx)
	got := p.Add(q).Eval(&x)
	require.True(t, got.Equal(&want), "add")

	want.Sub(&px, &qx)
	got = p.Sub(q).Eval(&x)
	require.True(t, got.Equal(&want), "sub")

	want.Mul(&px, &qx)
	got = p.Mul(q).Eval(&x)
	require.True(t, got.Equal(&want), "mul")
	require.Equal(t, 11, p.Mul(q).Degree())
}

func TestScale(t *testing.T) {
	p := randomPoly(t, 5)
	var c, x, cx fr.Element
	c.SetUint64(7)
	x.SetUint64(13)
	cx.Mul(&c, &x)

	want := p.Eval(&cx)
	got := p.Scale(&c).Eval(&x)
	require.True(t, got.Equal(&want))
}

func TestDivByLinear(t *testing.T) {
	p := randomPoly(t, 6)
	var root fr.Element
	root.SetUint64(5)

	quot, rem := p.DivByLinear(&root)
	want := p.Eval(&root)
	require.True(t, rem.Equal(&want), "remainder is p(root)")

	// p == quot*(x-root) + rem
	var negRoot fr.Element
	negRoot.Neg(&root)
	recomposed := quot.Mul(Polynomial{negRoot, fr.One()}).Add(Polynomial{rem})
	require.Equal(t, p, recomposed)
}

func TestDiv(t *testing.T) {
	p := randomPoly(t, 9)
	q := randomPoly(t, 3)

	quot, rem, err := p.Div(q)
	require.NoError(t, err)
	require.Equal(t, 6, quot.Degree())
	require.Less(t, rem.Degree(), q.Degree())
	require.Equal(t, p, q.Mul(quot).Add(rem))

	// exact division leaves no remainder
	product := p.Mul(q)
	quot, rem, err = product.Div(q)
	require.NoError(t, err)
	require.True(t, rem.IsZero())
	require.Equal(t, p, quot)

	// dividing a lower degree polynomial is a no-op
	quot, rem, err = q.Div(p)
	require.NoError(t, err)
	require.True(t, quot.IsZero())
	require.Equal(t, q, rem)

	_, _, err = p.Div(Polynomial{})
	require.ErrorIs(t, err, ErrDivisionByZero)
}

func TestPow(t *testing.T) {
	p := randomPoly(t, 3)

	want := Polynomial{fr.One()}
	for e := uint64(0); e < 6; e++ {
		require.Equal(t, want, p.Pow(e), "exponent %d", e)
		want = want.Mul(p)
	}
	require.True(t, Polynomial{}.Pow(4).IsZero())
}

func TestZerofier(t *testing.T) {
	points := make([]fr.Element, 4)
	for i := range points {
		points[i].SetUint64(uint64(i + 2))
	}
	z := Zerofier(points)
	require.Equal(t, 4, z.Degree())
	for i := range points {
		at := z.Eval(&points[i])
		require.True(t, at.IsZero())
	}
	var x fr.Element
	x.SetUint64(100)
	at := z.Eval(&x)
	require.False(t, at.IsZero())
}

func TestDomainSizeChecks(t *testing.T) {
	_, err := NewDomain(0)
	require.ErrorIs(t, err, ErrUnsupportedDomainSize)
	_, err = NewDomain(12)
	require.ErrorIs(t, err, ErrUnsupportedDomainSize)
	_, err = NewDomain(1 << 29)
	require.ErrorIs(t, err, ErrUnsupportedDomainSize)
	_, err = NewCosetDomain(8, fr.Element{})
	require.ErrorIs(t, err, ErrUnsupportedDomainSize)

	d, err := NewDomain(8)
	require.NoError(t, err)
	_, err = d.Evaluate(randomPoly(t, 8))
	require.ErrorIs(t, err, ErrUnsupportedDomainSize)
	_, err = d.Interpolate(make([]fr.Element, 4))
	require.ErrorIs(t, err, ErrUnsupportedDomainSize)
}

func TestEvaluateMatchesHorner(t *testing.T) {
	p := randomPoly(t, 7)

	var shift fr.Element
	shift.SetUint64(5)
	for _, mk := range []func() (*Domain, error){
		func() (*Domain, error) { return NewDomain(16) },
		func() (*Domain, error) { return NewCosetDomain(16, shift) },
	} {
		d, err := mk()
		require.NoError(t, err)
		codeword, err := d.Evaluate(p)
		require.NoError(t, err)
		require.Len(t, codeword, 16)
		for i := uint64(0); i < d.Size(); i++ {
			x := d.Element(i)
			want := p.Eval(&x)
			require.True(t, codeword[i].Equal(&want), "mismatch at index %d", i)
		}
	}
}

func TestInterpolateRoundTrip(t *testing.T) {
	var shift fr.Element
	shift.SetUint64(5)
	d, err := NewCosetDomain(32, shift)
	require.NoError(t, err)

	p := randomPoly(t, 31)
	codeword, err := d.Evaluate(p)
	require.NoError(t, err)
	back, err := d.Interpolate(codeword)
	require.NoError(t, err)
	require.Equal(t, p, back)
}

func TestInterpolateMatchesLagrange(t *testing.T) {
	d, err := NewDomain(8)
	require.NoError(t, err)
	values := make([]fr.Element, 8)
	for i := range values {
		_, err := values[i].SetRandom()
		require.NoError(t, err)
	}
	viaFFT, err := d.Interpolate(values)
	require.NoError(t, err)
	viaLagrange := InterpolateLagrange(d.Elements(), values)
	require.Equal(t, viaLagrange, viaFFT)
}

func TestGeneratorConsistency(t *testing.T) {
	// generators of nested domains come from the same primitive root
	small, err := NewDomain(8)
	require.NoError(t, err)
	large, err := NewDomain(64)
	require.NoError(t, err)

	g := large.Generator()
	var g8 fr.Element
	g8.Exp(g, big.NewInt(64/8))
	want := small.Generator()
	require.True(t, g8.Equal(&want))
}
