// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/stark/air"
	"github.com/consensys/stark/field"
	"github.com/consensys/stark/fri"
	"github.com/consensys/stark/polynomial"
	"github.com/consensys/stark/transcript"
)

// protocol carries everything prover and verifier derive deterministically
// from the AIR, the trace length and the parameters. Both sides must compute
// the exact same instance or the transcripts diverge.
type protocol struct {
	air         air.AIR
	numColumns  int
	numTransits int
	boundary    []air.BoundaryConstraint
	maxDegree   int

	traceLength uint64 // n
	domainSize  uint64 // N
	step        uint64 // next-row offset on the evaluation domain, N/n
	numFolds    int

	traceDomain *polynomial.Domain // order-n subgroup
	evalDomain  *polynomial.Domain // order-N coset

	friParams  fri.Parameters
	claimBytes []byte
}

// cosetShift returns the multiplicative generator of the field, the canonical
// shift taking the evaluation domain off every subgroup of 2-power order.
func cosetShift() fr.Element {
	var s fr.Element
	s.SetUint64(5)
	return s
}

func nextPowerOfTwo(x int) int {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(x-1))
}

// newProtocol validates the configuration and derives the domain sizes. The
// evaluation domain has size BlowUpFactor * n * nextPow2(maxDegree-1): large
// enough that every constraint quotient is below the FRI degree bound.
func newProtocol(a air.AIR, traceLength int, params Parameters) (*protocol, error) {
	friParams, err := params.fri()
	if err != nil {
		return nil, err
	}
	if err := friParams.Validate(); err != nil {
		return nil, configErrorf("%v", err)
	}
	if a.NumColumns() < 1 {
		return nil, configErrorf("air has no columns")
	}
	if a.NumTransitionConstraints() < 1 {
		return nil, configErrorf("air has no transition constraints")
	}
	if a.MaxConstraintDegree() < 1 {
		return nil, configErrorf("air declares constraint degree %d", a.MaxConstraintDegree())
	}
	if traceLength < 2 || bits.OnesCount(uint(traceLength)) != 1 {
		return nil, configErrorf("trace length %d must be a power of two >= 2", traceLength)
	}
	for _, b := range a.Boundary() {
		if b.Column < 0 || b.Column >= a.NumColumns() || b.Row < 0 || b.Row >= traceLength {
			return nil, configErrorf("boundary constraint out of range (column %d, row %d)", b.Column, b.Row)
		}
	}

	n := uint64(traceLength)
	degreeBound := n * uint64(nextPowerOfTwo(a.MaxConstraintDegree()-1))
	domainSize := uint64(params.BlowUpFactor) * degreeBound
	if friParams.NumFolds(domainSize) < 1 {
		return nil, configErrorf("evaluation domain of size %d cannot be folded (final layer minimum %d)", domainSize, params.FinalLayerMinSize)
	}

	traceDomain, err := polynomial.NewDomain(n)
	if err != nil {
		return nil, configErrorf("trace domain: %v", err)
	}
	evalDomain, err := polynomial.NewCosetDomain(domainSize, cosetShift())
	if err != nil {
		return nil, configErrorf("evaluation domain: %v", err)
	}

	claimBytes, err := air.NewClaim(a, traceLength).MarshalBinary()
	if err != nil {
		return nil, err
	}

	return &protocol{
		air:         a,
		numColumns:  a.NumColumns(),
		numTransits: a.NumTransitionConstraints(),
		boundary:    a.Boundary(),
		maxDegree:   a.MaxConstraintDegree(),
		traceLength: n,
		domainSize:  domainSize,
		step:        domainSize / n,
		numFolds:    friParams.NumFolds(domainSize),
		traceDomain: traceDomain,
		evalDomain:  evalDomain,
		friParams:   friParams,
		claimBytes:  claimBytes,
	}, nil
}

// transcript builds the Fiat-Shamir transcript with the protocol's challenge
// schedule and absorbs the claim.
func (pr *protocol) transcript() (*transcript.Transcript, error) {
	ts := transcript.New(pr.friParams.NewHash, pr.numFolds)
	if err := ts.Bind(transcript.Alpha, pr.claimBytes); err != nil {
		return nil, err
	}
	return ts, nil
}

// lastElement returns h^(n-1), the trace domain element excluded from the
// transition zerofier (the last row has no successor).
func (pr *protocol) lastElement() fr.Element {
	return pr.traceDomain.GeneratorInv()
}

// compositionAt recombines the constraint quotients at a single point x of
// the evaluation domain, given the trace row at x and at x shifted by one
// trace step. The verifier uses it to cross-check an opened composition
// value.
func (pr *protocol) compositionAt(alpha *fr.Element, index uint64, row, next []fr.Element) (fr.Element, error) {
	x := pr.evalDomain.Element(index)

	// x^n - 1 and the excluded factor x - h^(n-1)
	var vanishing, excluded fr.Element
	vanishing = field.Pow(x, pr.traceLength)
	one := fr.One()
	vanishing.Sub(&vanishing, &one)
	last := pr.lastElement()
	excluded.Sub(&x, &last)

	// denominators: x^n - 1 for the transitions, x - h^row per boundary
	denominators := make([]fr.Element, 1+len(pr.boundary))
	denominators[0] = vanishing
	h := pr.traceDomain.Generator()
	for i, b := range pr.boundary {
		point := field.Pow(h, uint64(b.Row))
		denominators[1+i].Sub(&x, &point)
	}
	inv, err := field.BatchInverse(denominators)
	if err != nil {
		// cannot happen on a coset off the subgroup
		return fr.Element{}, err
	}

	constraints := pr.air.EvaluateTransition(row, next)
	if len(constraints) != pr.numTransits {
		return fr.Element{}, configErrorf("air returned %d transition values, expected %d", len(constraints), pr.numTransits)
	}

	var res, term, power fr.Element
	power.SetOne()
	for j := range constraints {
		// C_j(x) * (x - h^(n-1)) / (x^n - 1)
		term.Mul(&constraints[j], &excluded)
		term.Mul(&term, &inv[0])
		term.Mul(&term, &power)
		res.Add(&res, &term)
		power.Mul(&power, alpha)
	}
	for i, b := range pr.boundary {
		term.Sub(&row[b.Column], &b.Value)
		term.Mul(&term, &inv[1+i])
		term.Mul(&term, &power)
		res.Add(&res, &term)
		power.Mul(&power, alpha)
	}
	return res, nil
}
