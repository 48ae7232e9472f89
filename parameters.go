// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"crypto/sha256"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/consensys/stark/fri"
)

// HashID selects the hash function used for Merkle commitments and the
// Fiat-Shamir transcript. It is part of the public parameters: prover and
// verifier must use the same one.
type HashID uint8

const (
	SHA256 HashID = iota
	SHA3_256
	KECCAK_256
	BLAKE2B_256
)

func (id HashID) String() string {
	switch id {
	case SHA256:
		return "sha256"
	case SHA3_256:
		return "sha3-256"
	case KECCAK_256:
		return "keccak256"
	case BLAKE2B_256:
		return "blake2b-256"
	default:
		return "unknown"
	}
}

// New returns a constructor for the selected hash.
func (id HashID) New() (func() hash.Hash, error) {
	switch id {
	case SHA256:
		return sha256.New, nil
	case SHA3_256:
		return sha3.New256, nil
	case KECCAK_256:
		return sha3.NewLegacyKeccak256, nil
	case BLAKE2B_256:
		return func() hash.Hash {
			h, _ := blake2b.New256(nil)
			return h
		}, nil
	default:
		return nil, configErrorf("unknown hash id %d", id)
	}
}

// Parameters fixes the protocol configuration. The zero value is not usable;
// start from DefaultParameters.
type Parameters struct {
	// BlowUpFactor is the inverse rate of the Reed-Solomon code, a power of
	// two >= 2. Higher values shrink the number of queries needed for a
	// soundness target at the cost of prover time.
	BlowUpFactor int

	// NumQueries is the number of FRI query rounds.
	NumQueries int

	// FinalLayerMinSize stops the FRI folding; a power of two >= the
	// blow-up factor.
	FinalLayerMinSize int

	// Hash selects the commitment and transcript hash.
	Hash HashID
}

// DefaultParameters returns a conservative configuration: blow-up 8 with 30
// queries, i.e. roughly 90 bits of query soundness.
func DefaultParameters() Parameters {
	return Parameters{
		BlowUpFactor:      8,
		NumQueries:        30,
		FinalLayerMinSize: 16,
		Hash:              SHA256,
	}
}

// Validate checks the parameters without reference to an AIR.
func (p Parameters) Validate() error {
	fp, err := p.fri()
	if err != nil {
		return err
	}
	if err := fp.Validate(); err != nil {
		return configErrorf("%v", err)
	}
	return nil
}

// fri maps the public parameters to the FRI layer configuration.
func (p Parameters) fri() (fri.Parameters, error) {
	newHash, err := p.Hash.New()
	if err != nil {
		return fri.Parameters{}, err
	}
	return fri.Parameters{
		BlowUpFactor:      p.BlowUpFactor,
		NumQueries:        p.NumQueries,
		FinalLayerMinSize: p.FinalLayerMinSize,
		NewHash:           newHash,
	}, nil
}
