// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"fmt"
	"runtime"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"golang.org/x/sync/errgroup"

	"github.com/consensys/stark/air"
	"github.com/consensys/stark/field"
	"github.com/consensys/stark/fri"
	"github.com/consensys/stark/logger"
	"github.com/consensys/stark/merkle"
	"github.com/consensys/stark/transcript"
)

// Prove builds a proof that trace satisfies a. The trace length must be a
// power of two and match the AIR's column count; both are part of the claim
// the verifier checks against.
//
// Proving succeeds on an invalid trace: the resulting proof is simply
// rejected by Verify. Use air.Check as a preflight when the trace is
// expected to be valid.
func Prove(a air.AIR, trace *air.Trace, params Parameters) (*Proof, error) {
	pr, err := newProtocol(a, trace.NumRows(), params)
	if err != nil {
		return nil, err
	}
	if trace.NumColumns() != pr.numColumns {
		return nil, configErrorf("trace has %d columns, air has %d", trace.NumColumns(), pr.numColumns)
	}

	log := logger.Logger().With().
		Str("protocol", "stark").
		Uint64("domainSize", pr.domainSize).
		Int("queries", pr.friParams.NumQueries).
		Logger()
	start := time.Now()

	// low degree extension of every trace column on the evaluation coset
	lde := make([][]fr.Element, pr.numColumns)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for c := 0; c < pr.numColumns; c++ {
		g.Go(func() error {
			p, err := pr.traceDomain.Interpolate(trace.Column(c))
			if err != nil {
				return err
			}
			lde[c], err = pr.evalDomain.Evaluate(p)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// one leaf per extended row
	rows := make([][]fr.Element, pr.domainSize)
	for i := range rows {
		row := make([]fr.Element, pr.numColumns)
		for c := range lde {
			row[c] = lde[c][i]
		}
		rows[i] = row
	}
	traceTree, err := merkle.Commit(rows, pr.friParams.NewHash)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("trace committed")

	ts, err := pr.transcript()
	if err != nil {
		return nil, err
	}
	if err := ts.Bind(transcript.Alpha, traceTree.Root()); err != nil {
		return nil, err
	}
	alpha, err := ts.FieldElement(transcript.Alpha)
	if err != nil {
		return nil, err
	}

	constraints, err := pr.evaluateConstraints(rows)
	if err != nil {
		return nil, err
	}
	if err := pr.checkConstraintDegrees(constraints); err != nil {
		return nil, err
	}
	comp, err := pr.composition(&alpha, lde, constraints)
	if err != nil {
		return nil, err
	}
	log.Debug().Dur("took", time.Since(start)).Msg("composition computed")

	commitment, err := fri.Commit(comp, pr.evalDomain, ts, pr.friParams)
	if err != nil {
		return nil, err
	}
	indices, err := ts.Indices(transcript.Queries, pr.domainSize, pr.friParams.NumQueries)
	if err != nil {
		return nil, err
	}

	proof := &Proof{
		TraceRoot: traceTree.Root(),
		CompRoot:  commitment.Roots()[0],
		FriRoots:  commitment.Roots()[1:],
		FinalPoly: commitment.FinalPoly,
		Queries:   make([]QueryProof, len(indices)),
	}
	var openings errgroup.Group
	openings.SetLimit(runtime.NumCPU())
	for i, q := range indices {
		openings.Go(func() error {
			next := (q + pr.step) % pr.domainSize
			rowPath, err := traceTree.Open(q)
			if err != nil {
				return err
			}
			nextPath, err := traceTree.Open(next)
			if err != nil {
				return err
			}
			opening, err := commitment.Open(q)
			if err != nil {
				return err
			}
			proof.Queries[i] = QueryProof{
				Row:         rows[q],
				NextRow:     rows[next],
				RowPath:     rowPath,
				NextRowPath: nextPath,
				Layers:      opening.Layers,
			}
			return nil
		})
	}
	if err := openings.Wait(); err != nil {
		return nil, err
	}

	log.Debug().Dur("took", time.Since(start)).Msg("prover done")
	return proof, nil
}

// evaluateConstraints computes, for every transition constraint, its value on
// each point of the evaluation domain: constraint j at point i combines the
// extended rows i and i+step.
func (pr *protocol) evaluateConstraints(rows [][]fr.Element) ([][]fr.Element, error) {
	res := make([][]fr.Element, pr.numTransits)
	for j := range res {
		res[j] = make([]fr.Element, pr.domainSize)
	}

	n := int(pr.domainSize)
	numChunks := runtime.NumCPU()
	chunkSize := (n + numChunks - 1) / numChunks
	var g errgroup.Group
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		g.Go(func() error {
			for i := start; i < end; i++ {
				next := (uint64(i) + pr.step) % pr.domainSize
				values := pr.air.EvaluateTransition(rows[i], rows[next])
				if len(values) != pr.numTransits {
					return configErrorf("air returned %d transition values, expected %d", len(values), pr.numTransits)
				}
				for j := range values {
					res[j][i] = values[j]
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// checkConstraintDegrees interpolates every constraint codeword and rejects
// the AIR if one exceeds the declared degree. The bound holds for any trace,
// valid or not, so this only ever fires on a misdeclared AIR.
func (pr *protocol) checkConstraintDegrees(constraints [][]fr.Element) error {
	bound := pr.maxDegree * (int(pr.traceLength) - 1)
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for j := range constraints {
		g.Go(func() error {
			p, err := pr.evalDomain.Interpolate(constraints[j])
			if err != nil {
				return err
			}
			if p.Degree() > bound {
				return fmt.Errorf("%w: constraint %d has degree %d, declared maximum allows %d",
					ErrConstraintDegreeExceeded, j, p.Degree(), bound)
			}
			return nil
		})
	}
	return g.Wait()
}

// composition combines every constraint quotient into a single codeword with
// increasing powers of alpha, transition quotients first, then boundary
// quotients.
func (pr *protocol) composition(alpha *fr.Element, lde, constraints [][]fr.Element) ([]fr.Element, error) {
	n := pr.domainSize

	// x^n - 1 over the domain; x_i^n walks the coset of w^n, so the values
	// are periodic with period step
	one := fr.One()
	shiftN := field.Pow(pr.evalDomain.Shift(), pr.traceLength)
	genN := field.Pow(pr.evalDomain.Generator(), pr.traceLength)
	vanishing := make([]fr.Element, pr.step)
	acc := shiftN
	for i := range vanishing {
		vanishing[i].Sub(&acc, &one)
		acc.Mul(&acc, &genN)
	}
	invVanishing, err := field.BatchInverse(vanishing)
	if err != nil {
		return nil, err
	}

	// x - h^(n-1) over the domain
	excluded := make([]fr.Element, n)
	last := pr.lastElement()
	x := pr.evalDomain.Shift()
	gen := pr.evalDomain.Generator()
	for i := range excluded {
		excluded[i].Sub(&x, &last)
		x.Mul(&x, &gen)
	}

	res := make([]fr.Element, n)
	var power fr.Element
	power.SetOne()

	var term fr.Element
	for j := range constraints {
		for i := uint64(0); i < n; i++ {
			term.Mul(&constraints[j][i], &excluded[i])
			term.Mul(&term, &invVanishing[i%pr.step])
			term.Mul(&term, &power)
			res[i].Add(&res[i], &term)
		}
		power.Mul(&power, alpha)
	}

	// boundary quotients: (t_c(x) - v) / (x - h^row)
	h := pr.traceDomain.Generator()
	denominators := make([]fr.Element, n)
	for _, b := range pr.boundary {
		point := field.Pow(h, uint64(b.Row))
		x = pr.evalDomain.Shift()
		for i := range denominators {
			denominators[i].Sub(&x, &point)
			x.Mul(&x, &gen)
		}
		inv, err := field.BatchInverse(denominators)
		if err != nil {
			return nil, err
		}
		column := lde[b.Column]
		for i := uint64(0); i < n; i++ {
			term.Sub(&column[i], &b.Value)
			term.Mul(&term, &inv[i])
			term.Mul(&term, &power)
			res[i].Add(&res[i], &term)
		}
		power.Mul(&power, alpha)
	}
	return res, nil
}
