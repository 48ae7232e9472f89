// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package air defines the Algebraic Intermediate Representation consumed by
// the prover and the verifier: the shape of an execution trace and the
// polynomial constraints it must satisfy.
//
// Constraint systems plug in through the AIR interface; the engine only ever
// evaluates constraints as a black box, so new systems do not touch the
// prover or the verifier.
package air

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// AIR describes a constraint system over an execution trace.
//
// Implementations must be stateless with respect to evaluation: calling
// EvaluateTransition concurrently from several goroutines must be safe.
type AIR interface {
	// NumColumns returns the trace width.
	NumColumns() int

	// NumTransitionConstraints returns the number of transition constraints.
	NumTransitionConstraints() int

	// EvaluateTransition evaluates every transition constraint on a pair of
	// consecutive rows. A valid trace step makes all results zero.
	EvaluateTransition(current, next []fr.Element) []fr.Element

	// Boundary returns the boundary constraints: cells of the trace pinned
	// to public values.
	Boundary() []BoundaryConstraint

	// MaxConstraintDegree returns the maximal total degree of the transition
	// constraints, seen as polynomials in the current and next row
	// variables. It sizes the evaluation domain blow-up.
	MaxConstraintDegree() int
}

// BoundaryConstraint pins trace cell (Column, Row) to Value.
type BoundaryConstraint struct {
	Column int        `cbor:"1,keyasint"`
	Row    int        `cbor:"2,keyasint"`
	Value  fr.Element `cbor:"3,keyasint"`
}

var (
	// ErrInvalidTrace is returned by Check when a constraint is violated.
	ErrInvalidTrace = errors.New("trace does not satisfy the constraints")
	// ErrTraceShape is returned when a trace does not match the AIR layout.
	ErrTraceShape = errors.New("trace shape does not match the AIR")
)

// Trace is a column-major table of field elements: one column per register,
// one row per execution step. It is read only once handed to the prover.
type Trace struct {
	columns [][]fr.Element
	numRows int
}

// NewTrace allocates a trace with the given dimensions, zero initialized.
func NewTrace(numColumns, numRows int) *Trace {
	columns := make([][]fr.Element, numColumns)
	for i := range columns {
		columns[i] = make([]fr.Element, numRows)
	}
	return &Trace{columns: columns, numRows: numRows}
}

// NumColumns returns the trace width.
func (t *Trace) NumColumns() int { return len(t.columns) }

// NumRows returns the trace length.
func (t *Trace) NumRows() int { return t.numRows }

// Set assigns the cell at (column, row).
func (t *Trace) Set(column, row int, value fr.Element) {
	t.columns[column][row] = value
}

// At returns the cell at (column, row).
func (t *Trace) At(column, row int) fr.Element {
	return t.columns[column][row]
}

// Column returns the backing slice of a column. Callers must not mutate it.
func (t *Trace) Column(i int) []fr.Element {
	return t.columns[i]
}

// Row materializes row i.
func (t *Trace) Row(i int) []fr.Element {
	row := make([]fr.Element, len(t.columns))
	for c := range t.columns {
		row[c] = t.columns[c][i]
	}
	return row
}

// Check verifies that trace satisfies every transition and boundary
// constraint of a. It is not part of the proving path (the prover must be
// able to run on an invalid trace); callers use it as a preflight.
func Check(a AIR, trace *Trace) error {
	if trace.NumColumns() != a.NumColumns() {
		return fmt.Errorf("%w: %d columns, AIR has %d", ErrTraceShape, trace.NumColumns(), a.NumColumns())
	}
	for i := 0; i+1 < trace.NumRows(); i++ {
		values := a.EvaluateTransition(trace.Row(i), trace.Row(i+1))
		for j := range values {
			if !values[j].IsZero() {
				return fmt.Errorf("%w: transition constraint %d violated at step %d", ErrInvalidTrace, j, i)
			}
		}
	}
	for _, b := range a.Boundary() {
		if b.Column < 0 || b.Column >= trace.NumColumns() || b.Row < 0 || b.Row >= trace.NumRows() {
			return fmt.Errorf("%w: boundary constraint out of range (column %d, row %d)", ErrTraceShape, b.Column, b.Row)
		}
		got := trace.At(b.Column, b.Row)
		if !got.Equal(&b.Value) {
			return fmt.Errorf("%w: boundary constraint violated at (column %d, row %d)", ErrInvalidTrace, b.Column, b.Row)
		}
	}
	return nil
}
