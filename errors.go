// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"errors"
	"fmt"
)

var (
	// ErrConstraintDegreeExceeded is returned by the prover when a
	// constraint evaluates to a polynomial of higher degree than the AIR
	// declares. This is a bug in the AIR, not a property of the trace.
	ErrConstraintDegreeExceeded = errors.New("constraint degree exceeds the declared maximum")

	// ErrProofMalformed is returned when a serialized proof cannot be
	// decoded or has a shape inconsistent with the parameters.
	ErrProofMalformed = errors.New("malformed proof")
)

// ConfigurationError reports invalid parameters or an AIR/trace combination
// the protocol cannot operate on. It is always caught before any proving or
// verification work starts.
type ConfigurationError struct {
	Reason string
}

func (e ConfigurationError) Error() string {
	return "invalid configuration: " + e.Reason
}

func configErrorf(format string, args ...any) ConfigurationError {
	return ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// CheckKind identifies the verification check that rejected a proof.
type CheckKind uint8

const (
	// CheckMerkleTrace is the authentication of opened trace rows.
	CheckMerkleTrace CheckKind = iota
	// CheckComposition is the recomputation of the composition codeword
	// value from the opened trace rows.
	CheckComposition
	// CheckMerkleFRI is the authentication of opened FRI layer values.
	CheckMerkleFRI
	// CheckFolding is the layer-to-layer folding consistency check.
	CheckFolding
	// CheckFinalDegree is the degree bound on the final polynomial.
	CheckFinalDegree
	// CheckFinalEvaluation is the consistency of the last fold with the
	// final polynomial.
	CheckFinalEvaluation
)

func (k CheckKind) String() string {
	switch k {
	case CheckMerkleTrace:
		return "trace authentication"
	case CheckComposition:
		return "composition recomputation"
	case CheckMerkleFRI:
		return "fri authentication"
	case CheckFolding:
		return "fri folding"
	case CheckFinalDegree:
		return "final polynomial degree"
	case CheckFinalEvaluation:
		return "final polynomial evaluation"
	default:
		return "unknown check"
	}
}

// VerificationError reports a rejected proof together with the first check
// that failed. Query is the index of the failing query round, or -1 when the
// check is not query specific.
type VerificationError struct {
	Check CheckKind
	Query int
	err   error
}

func (e *VerificationError) Error() string {
	if e.Query < 0 {
		return fmt.Sprintf("proof rejected: %s check failed: %v", e.Check, e.err)
	}
	return fmt.Sprintf("proof rejected: %s check failed on query %d: %v", e.Check, e.Query, e.err)
}

func (e *VerificationError) Unwrap() error {
	return e.err
}
