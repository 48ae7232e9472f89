// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package air

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Claim is the public statement a proof attests to: the trace dimensions and
// the boundary values. It is bound into the transcript before any commitment
// so the boundary values are part of the statement, and it travels alongside
// the proof (the proof itself never contains it).
type Claim struct {
	TraceLength int                  `cbor:"1,keyasint"`
	NumColumns  int                  `cbor:"2,keyasint"`
	Boundary    []BoundaryConstraint `cbor:"3,keyasint"`
}

// NewClaim builds the claim for a given AIR and trace length.
func NewClaim(a AIR, traceLength int) Claim {
	return Claim{
		TraceLength: traceLength,
		NumColumns:  a.NumColumns(),
		Boundary:    a.Boundary(),
	}
}

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// claim mirrors Claim without its methods: cbor dispatches to
// encoding.BinaryMarshaler when a type implements it, so encoding Claim
// directly would re-enter MarshalBinary.
type claim Claim

// MarshalBinary encodes the claim with canonical CBOR, so equal claims have
// equal encodings and the transcript binding is unambiguous.
func (c Claim) MarshalBinary() ([]byte, error) {
	b, err := encMode.Marshal(claim(c))
	if err != nil {
		return nil, fmt.Errorf("encode claim: %w", err)
	}
	return b, nil
}

// UnmarshalBinary decodes a claim produced by MarshalBinary.
func (c *Claim) UnmarshalBinary(data []byte) error {
	if err := cbor.Unmarshal(data, (*claim)(c)); err != nil {
		return fmt.Errorf("decode claim: %w", err)
	}
	return nil
}
