// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package transcript implements the Fiat-Shamir transform for the STARK
// protocol on top of gnark-crypto's fiat-shamir transcript.
//
// The challenge schedule is fixed by the protocol: one composition challenge,
// one folding challenge per FRI layer, and one query seed. Prover and
// verifier must bind the same byte strings to the same challenges in the same
// order to derive identical randomness; the transcript is single writer and
// strictly sequential.
package transcript

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"github.com/bits-and-blooms/bitset"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Challenge identifiers, in derivation order.
const (
	// Alpha combines the constraint quotients into the composition polynomial.
	Alpha = "alpha"
	// Queries seeds the FRI query index derivation.
	Queries = "queries"
)

// Fold returns the identifier of the i-th FRI folding challenge.
func Fold(i int) string {
	return fmt.Sprintf("x%d", i)
}

var errIndexSpace = errors.New("not enough distinct indices in range")

// Transcript derives the protocol challenges from the absorbed commitments.
type Transcript struct {
	fs      *fiatshamir.Transcript
	newHash func() hash.Hash
}

// New builds a transcript for a proof with numFolds FRI folding rounds.
// The hash function is part of the public parameters and must be identical
// on the prover and verifier side.
func New(newHash func() hash.Hash, numFolds int) *Transcript {
	ids := make([]string, 0, numFolds+2)
	ids = append(ids, Alpha)
	for i := 0; i < numFolds; i++ {
		ids = append(ids, Fold(i))
	}
	ids = append(ids, Queries)
	return &Transcript{
		fs:      fiatshamir.NewTranscript(newHash(), ids...),
		newHash: newHash,
	}
}

// Bind absorbs data into the given challenge. All bindings of a challenge
// must happen before it is computed.
func (t *Transcript) Bind(challengeID string, data []byte) error {
	return t.fs.Bind(challengeID, data)
}

// FieldElement derives the challenge as a field element, reducing the
// challenge digest modulo the field order.
func (t *Transcript) FieldElement(challengeID string) (fr.Element, error) {
	var res fr.Element
	b, err := t.fs.ComputeChallenge(challengeID)
	if err != nil {
		return res, err
	}
	res.SetBytes(b)
	return res, nil
}

// Indices derives count distinct indices in [0, bound) from the given
// challenge. bound must be a power of two. The challenge digest seeds a
// counter construction: index t is the low bits of H(seed || t), skipping
// duplicates, so both sides derive the same sequence.
func (t *Transcript) Indices(challengeID string, bound uint64, count int) ([]uint64, error) {
	if bound == 0 || bound&(bound-1) != 0 {
		return nil, fmt.Errorf("bound %d is not a power of two", bound)
	}
	if uint64(count) > bound {
		return nil, fmt.Errorf("%w: %d indices in [0, %d)", errIndexSpace, count, bound)
	}
	seed, err := t.fs.ComputeChallenge(challengeID)
	if err != nil {
		return nil, err
	}

	h := t.newHash()
	drawn := bitset.New(uint(bound))
	indices := make([]uint64, 0, count)
	var counter [4]byte
	for i := uint32(0); len(indices) < count; i++ {
		if i == 0 && len(indices) > 0 {
			// counter wrapped around; with a sound hash this cannot happen
			return nil, errIndexSpace
		}
		h.Reset()
		h.Write(seed)
		binary.BigEndian.PutUint32(counter[:], i)
		h.Write(counter[:])
		digest := h.Sum(nil)
		index := binary.BigEndian.Uint64(digest[len(digest)-8:]) & (bound - 1)
		if drawn.Test(uint(index)) {
			continue
		}
		drawn.Set(uint(index))
		indices = append(indices, index)
	}
	return indices, nil
}
