// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package fri

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/stark/field"
	"github.com/consensys/stark/merkle"
	"github.com/consensys/stark/polynomial"
)

// Verifier checks query openings against committed layer roots, the folding
// challenges and the final polynomial. Transcript replay stays with the
// caller: the Verifier is built after all challenges have been derived.
type Verifier struct {
	params Parameters
	sizes  []uint64 // committed layer sizes, halving
	shifts []fr.Element
	gens   []fr.Element
	roots  [][]byte
	alphas []fr.Element
	final  polynomial.Polynomial
	finalD *polynomial.Domain
}

// NewVerifier prepares the per-layer domains and checks the degree of the
// final polynomial. roots and alphas are indexed by folding round.
func NewVerifier(p Parameters, d *polynomial.Domain, roots [][]byte, alphas []fr.Element, final polynomial.Polynomial) (*Verifier, error) {
	numFolds := p.NumFolds(d.Size())
	if numFolds < 1 {
		return nil, fmt.Errorf("%w: domain of size %d cannot be folded (final layer minimum %d)", ErrParameters, d.Size(), p.FinalLayerMinSize)
	}
	if len(roots) != numFolds || len(alphas) != numFolds {
		return nil, fmt.Errorf("%w: expected %d layer roots and challenges, got %d and %d", ErrShape, numFolds, len(roots), len(alphas))
	}
	if final.Degree() >= p.maxFinalDegree(d.Size()) {
		return nil, fmt.Errorf("%w: degree %d, bound %d", ErrFinalDegree, final.Degree(), p.maxFinalDegree(d.Size()))
	}

	v := &Verifier{
		params: p,
		sizes:  make([]uint64, numFolds),
		shifts: make([]fr.Element, numFolds),
		gens:   make([]fr.Element, numFolds),
		roots:  roots,
		alphas: alphas,
		final:  final,
	}
	size := d.Size()
	gen := d.Generator()
	shift := d.Shift()
	for i := 0; i < numFolds; i++ {
		v.sizes[i] = size
		v.shifts[i] = shift
		v.gens[i] = gen
		size /= 2
		gen.Square(&gen)
		shift.Square(&shift)
	}
	var err error
	v.finalD, err = layerDomain(size, shift)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// VerifyQuery replays one query. It first authenticates every opened pair
// against its layer root, then folds the pairs with the recorded challenges
// and checks each fold against the next layer, the last one against the
// final polynomial.
func (v *Verifier) VerifyQuery(index uint64, opening QueryOpening) error {
	if len(opening.Layers) != len(v.sizes) {
		return fmt.Errorf("%w: expected %d layer openings, got %d", ErrShape, len(v.sizes), len(opening.Layers))
	}

	p := index
	for i := range v.sizes {
		half := v.sizes[i] / 2
		left := p % half
		o := opening.Layers[i]
		if !merkle.Verify(v.params.NewHash, v.roots[i], left, []fr.Element{o.Left}, o.LeftPath, v.sizes[i]) {
			return fmt.Errorf("%w: layer %d position %d", ErrMerkleMismatch, i, left)
		}
		if !merkle.Verify(v.params.NewHash, v.roots[i], left+half, []fr.Element{o.Right}, o.RightPath, v.sizes[i]) {
			return fmt.Errorf("%w: layer %d position %d", ErrMerkleMismatch, i, left+half)
		}
		p = left
	}

	p = index
	for i := range v.sizes {
		half := v.sizes[i] / 2
		left := p % half
		o := opening.Layers[i]

		folded, err := foldPair(o.Left, o.Right, &v.alphas[i], v.shifts[i], v.gens[i], left)
		if err != nil {
			return err
		}

		if i+1 < len(v.sizes) {
			next := opening.Layers[i+1]
			expected := next.Left
			if left >= v.sizes[i+1]/2 {
				expected = next.Right
			}
			if !folded.Equal(&expected) {
				return fmt.Errorf("%w: layer %d position %d", ErrFoldingMismatch, i+1, left)
			}
		} else {
			x := v.finalD.Element(left)
			eval := v.final.Eval(&x)
			if !folded.Equal(&eval) {
				return fmt.Errorf("%w: position %d", ErrFinalEvaluation, left)
			}
		}
		p = left
	}
	return nil
}

// foldPair applies the folding formula to a single opened pair at position j.
func foldPair(left, right fr.Element, alpha *fr.Element, shift, gen fr.Element, j uint64) (fr.Element, error) {
	d := field.Pow(gen, j)
	d.Mul(&d, &shift)
	inv, err := field.Inverse(&d)
	if err != nil {
		return fr.Element{}, err
	}

	var sum, diff fr.Element
	sum.Add(&left, &right)
	diff.Sub(&left, &right)
	diff.Mul(&diff, &inv)
	diff.Mul(&diff, alpha)
	sum.Add(&sum, &diff)
	sum.Halve()
	return sum, nil
}
