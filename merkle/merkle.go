// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package merkle binds codewords (vectors of field elements) to a single
// digest and produces membership proofs for arbitrary indices.
//
// The tree construction is delegated to gnark-crypto's accumulator/merkletree:
// leaves are fixed-width segments of the serialized codeword, internal nodes
// hash the concatenation of their children, and unpaired nodes are promoted
// unchanged to the next level. That padding policy is part of the commitment
// and must match on both sides; it is inherited from the library.
package merkle

import (
	"bytes"
	"errors"
	"fmt"
	"hash"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

var (
	// ErrIndexOutOfRange is returned when opening an index beyond the leaf count.
	ErrIndexOutOfRange = errors.New("leaf index out of range")
	// ErrEmptyCodeword is returned when committing to no data.
	ErrEmptyCodeword = errors.New("cannot commit to an empty codeword")
)

// Tree is an immutable commitment to a sequence of equally sized leaves.
// Once built it is safe for concurrent reads.
type Tree struct {
	newHash     func() hash.Hash
	data        []byte
	segmentSize int
	numLeaves   uint64
	root        []byte
}

// Commit builds a tree over leaves, each leaf being one or more field
// elements (for instance all the columns of a trace row). All leaves must
// have the same length.
func Commit(leaves [][]fr.Element, newHash func() hash.Hash) (*Tree, error) {
	if len(leaves) == 0 || len(leaves[0]) == 0 {
		return nil, ErrEmptyCodeword
	}
	width := len(leaves[0])
	segmentSize := width * fr.Bytes

	var buf bytes.Buffer
	buf.Grow(len(leaves) * segmentSize)
	for i := range leaves {
		if len(leaves[i]) != width {
			return nil, fmt.Errorf("leaf %d has %d elements, expected %d", i, len(leaves[i]), width)
		}
		for j := range leaves[i] {
			b := leaves[i][j].Bytes()
			buf.Write(b[:])
		}
	}

	t := &Tree{
		newHash:     newHash,
		data:        buf.Bytes(),
		segmentSize: segmentSize,
		numLeaves:   uint64(len(leaves)),
	}

	root, _, _, err := merkletree.BuildReaderProof(bytes.NewReader(t.data), newHash(), segmentSize, 0)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// CommitCodeword commits to a codeword with one field element per leaf.
func CommitCodeword(codeword []fr.Element, newHash func() hash.Hash) (*Tree, error) {
	leaves := make([][]fr.Element, len(codeword))
	for i := range codeword {
		leaves[i] = codeword[i : i+1]
	}
	return Commit(leaves, newHash)
}

// Root returns the commitment digest.
func (t *Tree) Root() []byte {
	return t.root
}

// NumLeaves returns the number of committed leaves.
func (t *Tree) NumLeaves() uint64 {
	return t.numLeaves
}

// Open returns the authentication path for the given leaf index: the sibling
// digests from the leaf to the root, leaf data excluded.
func (t *Tree) Open(index uint64) ([][]byte, error) {
	if index >= t.numLeaves {
		return nil, fmt.Errorf("%w: %d >= %d", ErrIndexOutOfRange, index, t.numLeaves)
	}
	_, proofSet, _, err := merkletree.BuildReaderProof(bytes.NewReader(t.data), t.newHash(), t.segmentSize, index)
	if err != nil {
		return nil, err
	}
	// proofSet[0] is the raw leaf segment; the opened values travel
	// separately in the proof, so only the sibling digests are kept.
	return proofSet[1:], nil
}

// Verify recomputes the path for the claimed leaf values and compares it to
// root. It returns true only on an exact match at every level.
func Verify(newHash func() hash.Hash, root []byte, index uint64, leaf []fr.Element, path [][]byte, numLeaves uint64) bool {
	if index >= numLeaves || len(leaf) == 0 {
		return false
	}
	segment := make([]byte, 0, len(leaf)*fr.Bytes)
	for i := range leaf {
		b := leaf[i].Bytes()
		segment = append(segment, b[:]...)
	}
	proofSet := make([][]byte, 0, len(path)+1)
	proofSet = append(proofSet, segment)
	proofSet = append(proofSet, path...)
	return merkletree.VerifyProof(newHash(), root, proofSet, index, numLeaves)
}
