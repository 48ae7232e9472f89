// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/stark/fri"
	"github.com/consensys/stark/polynomial"
)

// Proof attests that a committed execution trace satisfies an AIR. It is
// self-contained up to the AIR, the trace length and the Parameters, which
// the verifier must be given out of band.
type Proof struct {
	// TraceRoot commits to the low degree extension of the trace, one row
	// per leaf.
	TraceRoot []byte

	// CompRoot commits to the composition codeword (FRI layer 0).
	CompRoot []byte

	// FriRoots commits to the folded FRI layers 1..k-1.
	FriRoots [][]byte

	// FinalPoly is the last FRI codeword, sent in clear as coefficients.
	FinalPoly polynomial.Polynomial

	// Queries holds one opening bundle per query round, in derivation order.
	Queries []QueryProof
}

// QueryProof opens everything one query index touches: the trace row at the
// index and one trace step later, and the folding pairs in every FRI layer.
type QueryProof struct {
	Row     []fr.Element
	NextRow []fr.Element

	RowPath     [][]byte
	NextRowPath [][]byte

	Layers []fri.LayerOpening
}

// validateShape checks the proof structure against the protocol instance so
// that verification never indexes out of range. Content is not checked here.
func (proof *Proof) validateShape(pr *protocol) error {
	if len(proof.TraceRoot) == 0 || len(proof.CompRoot) == 0 {
		return fmt.Errorf("%w: missing commitment root", ErrProofMalformed)
	}
	if len(proof.FriRoots) != pr.numFolds-1 {
		return fmt.Errorf("%w: %d fri roots, expected %d", ErrProofMalformed, len(proof.FriRoots), pr.numFolds-1)
	}
	for _, root := range proof.FriRoots {
		if len(root) == 0 {
			return fmt.Errorf("%w: empty fri root", ErrProofMalformed)
		}
	}
	if len(proof.Queries) != pr.friParams.NumQueries {
		return fmt.Errorf("%w: %d query openings, expected %d", ErrProofMalformed, len(proof.Queries), pr.friParams.NumQueries)
	}
	for i := range proof.Queries {
		q := &proof.Queries[i]
		if len(q.Row) != pr.numColumns || len(q.NextRow) != pr.numColumns {
			return fmt.Errorf("%w: query %d opens %d columns, expected %d", ErrProofMalformed, i, len(q.Row), pr.numColumns)
		}
		if len(q.RowPath) == 0 || len(q.NextRowPath) == 0 {
			return fmt.Errorf("%w: query %d misses a trace authentication path", ErrProofMalformed, i)
		}
		if len(q.Layers) != pr.numFolds {
			return fmt.Errorf("%w: query %d opens %d layers, expected %d", ErrProofMalformed, i, len(q.Layers), pr.numFolds)
		}
		for l := range q.Layers {
			if len(q.Layers[l].LeftPath) == 0 || len(q.Layers[l].RightPath) == 0 {
				return fmt.Errorf("%w: query %d misses a fri authentication path in layer %d", ErrProofMalformed, i, l)
			}
		}
	}
	return nil
}

// roots returns all FRI layer roots in folding order, the composition root
// first.
func (proof *Proof) roots() [][]byte {
	res := make([][]byte, 0, 1+len(proof.FriRoots))
	res = append(res, proof.CompRoot)
	res = append(res, proof.FriRoots...)
	return res
}
