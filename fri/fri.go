// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package fri implements the Fast Reed-Solomon IOP of proximity: a
// commit-and-fold protocol proving that a committed codeword is close to the
// evaluation of a low degree polynomial.
//
// Commit phase: the codeword over the coset D is folded into a half length
// codeword over D² with
//
//	c'(j) = (c(j) + c(j+m/2))/2 + α (c(j) - c(j+m/2)) / (2 d_j)
//
// where d_j is the j-th point of D and α is a transcript challenge derived
// after the layer's Merkle root is absorbed. Folding repeats until the next
// codeword would fall below the final layer minimum size; the last codeword
// is interpolated and its coefficients are sent in clear.
//
// Query phase: for every query index, the value and its folding sibling are
// opened (with authentication paths) in every committed layer; the verifier
// replays the folding arithmetic across layers and checks the last fold
// against the final polynomial.
package fri

import (
	"errors"
	"fmt"
	"hash"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/stark/field"
	"github.com/consensys/stark/merkle"
	"github.com/consensys/stark/polynomial"
	"github.com/consensys/stark/transcript"
)

var (
	// ErrMerkleMismatch reports an authentication path that does not match a
	// layer root.
	ErrMerkleMismatch = errors.New("merkle authentication path mismatch")
	// ErrFoldingMismatch reports an opened value inconsistent with the
	// folding arithmetic of the previous layer.
	ErrFoldingMismatch = errors.New("folding arithmetic mismatch")
	// ErrFinalDegree reports a final polynomial of too high degree.
	ErrFinalDegree = errors.New("final polynomial degree exceeds the bound")
	// ErrFinalEvaluation reports a final polynomial that disagrees with the
	// last folded value.
	ErrFinalEvaluation = errors.New("final polynomial does not match the last fold")
	// ErrShape reports a structurally invalid commitment or opening.
	ErrShape = errors.New("invalid proof shape")
	// ErrParameters reports invalid protocol parameters.
	ErrParameters = errors.New("invalid fri parameters")
)

// Parameters fixes the FRI protocol configuration. It is part of the public
// security parameters: prover and verifier must agree on all fields.
type Parameters struct {
	// BlowUpFactor is the inverse Reed-Solomon rate; the protocol proves
	// proximity to degree < |D| / BlowUpFactor.
	BlowUpFactor int

	// NumQueries is the number of query rounds; the soundness error is
	// roughly (1/BlowUpFactor)^NumQueries.
	NumQueries int

	// FinalLayerMinSize stops the folding: the final codeword has size f
	// with FinalLayerMinSize <= f < 2*FinalLayerMinSize.
	FinalLayerMinSize int

	// NewHash builds the hash used for Merkle trees and the transcript.
	NewHash func() hash.Hash
}

// Validate checks the parameters. Violations are configuration errors caught
// before any proving work starts.
func (p Parameters) Validate() error {
	if p.BlowUpFactor < 2 || bits.OnesCount(uint(p.BlowUpFactor)) != 1 {
		return fmt.Errorf("%w: blow-up factor %d must be a power of two >= 2", ErrParameters, p.BlowUpFactor)
	}
	if p.NumQueries < 1 {
		return fmt.Errorf("%w: at least one query is required", ErrParameters)
	}
	if p.FinalLayerMinSize < p.BlowUpFactor || bits.OnesCount(uint(p.FinalLayerMinSize)) != 1 {
		return fmt.Errorf("%w: final layer minimum size %d must be a power of two >= the blow-up factor", ErrParameters, p.FinalLayerMinSize)
	}
	if p.NewHash == nil {
		return fmt.Errorf("%w: missing hash function", ErrParameters)
	}
	return nil
}

// NumFolds returns the number of folding rounds for a domain of the given
// size, i.e. the number of committed layers.
func (p Parameters) NumFolds(domainSize uint64) int {
	folds := 0
	for domainSize/2 >= uint64(p.FinalLayerMinSize) {
		domainSize /= 2
		folds++
	}
	return folds
}

// FinalSize returns the size of the final, uncommitted codeword.
func (p Parameters) FinalSize(domainSize uint64) uint64 {
	return domainSize >> uint(p.NumFolds(domainSize))
}

// maxFinalDegree returns the exclusive degree bound on the final polynomial.
func (p Parameters) maxFinalDegree(domainSize uint64) int {
	return int(p.FinalSize(domainSize)) / p.BlowUpFactor
}

type layer struct {
	codeword []fr.Element
	tree     *merkle.Tree
}

// Commitment is the prover-side result of the commit phase: the committed
// layers with their trees, and the final polynomial.
type Commitment struct {
	layers    []layer
	roots     [][]byte
	FinalPoly polynomial.Polynomial
}

// Commit runs the commit phase on a codeword evaluated over d, binding every
// layer root (and finally the final polynomial) into the transcript.
func Commit(codeword []fr.Element, d *polynomial.Domain, ts *transcript.Transcript, p Parameters) (*Commitment, error) {
	if uint64(len(codeword)) != d.Size() {
		return nil, fmt.Errorf("%w: codeword length %d does not match the domain size %d", ErrShape, len(codeword), d.Size())
	}
	numFolds := p.NumFolds(d.Size())
	if numFolds < 1 {
		return nil, fmt.Errorf("%w: domain of size %d cannot be folded (final layer minimum %d)", ErrParameters, d.Size(), p.FinalLayerMinSize)
	}

	res := &Commitment{
		layers: make([]layer, 0, numFolds),
		roots:  make([][]byte, 0, numFolds),
	}

	current := append([]fr.Element(nil), codeword...)
	gen := d.Generator()
	shift := d.Shift()

	for i := 0; i < numFolds; i++ {
		tree, err := merkle.CommitCodeword(current, p.NewHash)
		if err != nil {
			return nil, err
		}
		res.layers = append(res.layers, layer{codeword: current, tree: tree})
		res.roots = append(res.roots, tree.Root())

		if err := ts.Bind(transcript.Fold(i), tree.Root()); err != nil {
			return nil, err
		}
		alpha, err := ts.FieldElement(transcript.Fold(i))
		if err != nil {
			return nil, err
		}

		current, err = fold(current, &alpha, shift, gen)
		if err != nil {
			return nil, err
		}
		gen.Square(&gen)
		shift.Square(&shift)
	}

	finalDomain, err := layerDomain(uint64(len(current)), shift)
	if err != nil {
		return nil, err
	}
	res.FinalPoly, err = finalDomain.Interpolate(current)
	if err != nil {
		return nil, err
	}
	if err := ts.Bind(transcript.Queries, EncodeCoefficients(res.FinalPoly)); err != nil {
		return nil, err
	}
	return res, nil
}

// fold halves the codeword: result[j] combines c[j] and c[j+m/2], the two
// evaluations at ±d_j, weighted by alpha.
func fold(codeword []fr.Element, alpha *fr.Element, shift, gen fr.Element) ([]fr.Element, error) {
	half := len(codeword) / 2

	// d_j for j < half, then batch inverted
	denominators := make([]fr.Element, half)
	acc := shift
	for j := 0; j < half; j++ {
		denominators[j] = acc
		acc.Mul(&acc, &gen)
	}
	inv, err := field.BatchInverse(denominators)
	if err != nil {
		return nil, err
	}

	res := make([]fr.Element, half)
	var sum, diff fr.Element
	for j := 0; j < half; j++ {
		sum.Add(&codeword[j], &codeword[j+half])
		diff.Sub(&codeword[j], &codeword[j+half])
		diff.Mul(&diff, &inv[j])
		diff.Mul(&diff, alpha)
		res[j].Add(&sum, &diff)
		res[j].Halve()
	}
	return res, nil
}

func layerDomain(size uint64, shift fr.Element) (*polynomial.Domain, error) {
	one := fr.One()
	if shift.Equal(&one) {
		return polynomial.NewDomain(size)
	}
	return polynomial.NewCosetDomain(size, shift)
}

// Roots returns the committed layer roots in folding order.
func (c *Commitment) Roots() [][]byte {
	return c.roots
}

// LayerOpening opens a folding pair in one layer: the values at positions
// j and j+m/2 with their authentication paths.
type LayerOpening struct {
	Left      fr.Element
	Right     fr.Element
	LeftPath  [][]byte
	RightPath [][]byte
}

// QueryOpening holds the openings of one query across all committed layers.
type QueryOpening struct {
	Layers []LayerOpening
}

// Open produces the openings for one query index, in every committed layer.
func (c *Commitment) Open(index uint64) (QueryOpening, error) {
	res := QueryOpening{Layers: make([]LayerOpening, len(c.layers))}
	for i := range c.layers {
		half := uint64(len(c.layers[i].codeword)) / 2
		left := index % half
		right := left + half

		leftPath, err := c.layers[i].tree.Open(left)
		if err != nil {
			return QueryOpening{}, err
		}
		rightPath, err := c.layers[i].tree.Open(right)
		if err != nil {
			return QueryOpening{}, err
		}
		res.Layers[i] = LayerOpening{
			Left:      c.layers[i].codeword[left],
			Right:     c.layers[i].codeword[right],
			LeftPath:  leftPath,
			RightPath: rightPath,
		}
		index = left
	}
	return res, nil
}

// ValueAt returns the opened layer-0 value for the query index, given the
// layer-0 domain size. It is the committed codeword value the caller checks
// against an independent recomputation.
func (o QueryOpening) ValueAt(index, domainSize uint64) fr.Element {
	if index < domainSize/2 {
		return o.Layers[0].Left
	}
	return o.Layers[0].Right
}

// EncodeCoefficients serializes polynomial coefficients with the fixed-width
// field element encoding, in low-degree-first order.
func EncodeCoefficients(p polynomial.Polynomial) []byte {
	res := make([]byte, 0, len(p)*fr.Bytes)
	for i := range p {
		b := p[i].Bytes()
		res = append(res, b[:]...)
	}
	return res
}
