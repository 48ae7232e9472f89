// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/stark/air"
	"github.com/consensys/stark/fri"
	"github.com/consensys/stark/logger"
	"github.com/consensys/stark/merkle"
	"github.com/consensys/stark/transcript"
)

// Verify checks proof against the AIR and the claimed trace length. A nil
// return means the proof is accepted; a rejected proof returns a
// *VerificationError naming the first failed check.
//
// The AIR, traceLength and params must be the ones the prover used: they are
// bound into the transcript, so any mismatch makes the challenges diverge
// and the proof is rejected.
func Verify(a air.AIR, traceLength int, proof *Proof, params Parameters) error {
	pr, err := newProtocol(a, traceLength, params)
	if err != nil {
		return err
	}
	if err := proof.validateShape(pr); err != nil {
		return err
	}

	log := logger.Logger().With().
		Str("protocol", "stark").
		Uint64("domainSize", pr.domainSize).
		Logger()
	start := time.Now()

	// transcript replay
	ts, err := pr.transcript()
	if err != nil {
		return err
	}
	if err := ts.Bind(transcript.Alpha, proof.TraceRoot); err != nil {
		return err
	}
	alpha, err := ts.FieldElement(transcript.Alpha)
	if err != nil {
		return err
	}
	roots := proof.roots()
	alphas := make([]fr.Element, pr.numFolds)
	for i, root := range roots {
		if err := ts.Bind(transcript.Fold(i), root); err != nil {
			return err
		}
		if alphas[i], err = ts.FieldElement(transcript.Fold(i)); err != nil {
			return err
		}
	}
	if err := ts.Bind(transcript.Queries, fri.EncodeCoefficients(proof.FinalPoly)); err != nil {
		return err
	}
	indices, err := ts.Indices(transcript.Queries, pr.domainSize, pr.friParams.NumQueries)
	if err != nil {
		return err
	}

	friVerifier, err := fri.NewVerifier(pr.friParams, pr.evalDomain, roots, alphas, proof.FinalPoly)
	if err != nil {
		if errors.Is(err, fri.ErrFinalDegree) {
			return &VerificationError{Check: CheckFinalDegree, Query: -1, err: err}
		}
		return err
	}

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, q := range indices {
		g.Go(func() error {
			return pr.verifyQuery(proof, friVerifier, &alpha, i, q)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	log.Debug().Dur("took", time.Since(start)).Msg("proof accepted")
	return nil
}

// verifyQuery checks one query round: trace row authentication, composition
// recomputation, and the FRI folding chain.
func (pr *protocol) verifyQuery(proof *Proof, friVerifier *fri.Verifier, alpha *fr.Element, ordinal int, q uint64) error {
	qp := &proof.Queries[ordinal]
	next := (q + pr.step) % pr.domainSize

	if !merkle.Verify(pr.friParams.NewHash, proof.TraceRoot, q, qp.Row, qp.RowPath, pr.domainSize) {
		return &VerificationError{
			Check: CheckMerkleTrace,
			Query: ordinal,
			err:   fmt.Errorf("row %d: %w", q, fri.ErrMerkleMismatch),
		}
	}
	if !merkle.Verify(pr.friParams.NewHash, proof.TraceRoot, next, qp.NextRow, qp.NextRowPath, pr.domainSize) {
		return &VerificationError{
			Check: CheckMerkleTrace,
			Query: ordinal,
			err:   fmt.Errorf("row %d: %w", next, fri.ErrMerkleMismatch),
		}
	}

	// the opened composition value must match an independent recomputation
	// from the opened trace rows
	expected, err := pr.compositionAt(alpha, q, qp.Row, qp.NextRow)
	if err != nil {
		return err
	}
	opening := fri.QueryOpening{Layers: qp.Layers}
	got := opening.ValueAt(q, pr.domainSize)
	if !got.Equal(&expected) {
		return &VerificationError{
			Check: CheckComposition,
			Query: ordinal,
			err:   fmt.Errorf("composition value mismatch at %d", q),
		}
	}

	if err := friVerifier.VerifyQuery(q, opening); err != nil {
		return &VerificationError{
			Check: friCheckKind(err),
			Query: ordinal,
			err:   err,
		}
	}
	return nil
}

func friCheckKind(err error) CheckKind {
	switch {
	case errors.Is(err, fri.ErrMerkleMismatch):
		return CheckMerkleFRI
	case errors.Is(err, fri.ErrFoldingMismatch):
		return CheckFolding
	case errors.Is(err, fri.ErrFinalEvaluation):
		return CheckFinalEvaluation
	default:
		return CheckFolding
	}
}
