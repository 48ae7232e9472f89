// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark_test

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consensys/stark"
	"github.com/consensys/stark/air"
)

// counterAIR constrains a single column to increment by one at every step,
// starting from zero.
type counterAIR struct{}

func (counterAIR) NumColumns() int               { return 1 }
func (counterAIR) NumTransitionConstraints() int { return 1 }
func (counterAIR) MaxConstraintDegree() int      { return 1 }

func (counterAIR) EvaluateTransition(current, next []fr.Element) []fr.Element {
	var res fr.Element
	one := fr.One()
	res.Sub(&next[0], &current[0])
	res.Sub(&res, &one)
	return []fr.Element{res}
}

func (counterAIR) Boundary() []air.BoundaryConstraint {
	return []air.BoundaryConstraint{{Column: 0, Row: 0, Value: fr.Element{}}}
}

func counterTrace(length int) *air.Trace {
	trace := air.NewTrace(1, length)
	var v fr.Element
	for i := 0; i < length; i++ {
		v.SetUint64(uint64(i))
		trace.Set(0, i, v)
	}
	return trace
}

func testParameters() stark.Parameters {
	return stark.Parameters{
		BlowUpFactor:      4,
		NumQueries:        20,
		FinalLayerMinSize: 4,
		Hash:              stark.SHA256,
	}
}

func TestProveAndVerify(t *testing.T) {
	trace := counterTrace(8)
	require.NoError(t, air.Check(counterAIR{}, trace))

	for _, h := range []stark.HashID{stark.SHA256, stark.SHA3_256, stark.KECCAK_256, stark.BLAKE2B_256} {
		t.Run(h.String(), func(t *testing.T) {
			params := testParameters()
			params.Hash = h

			proof, err := stark.Prove(counterAIR{}, trace, params)
			require.NoError(t, err)
			require.NoError(t, stark.Verify(counterAIR{}, 8, proof, params))
		})
	}
}

func TestProveAndVerifyDefaultParameters(t *testing.T) {
	trace := counterTrace(32)
	proof, err := stark.Prove(counterAIR{}, trace, stark.DefaultParameters())
	require.NoError(t, err)
	require.NoError(t, stark.Verify(counterAIR{}, 32, proof, stark.DefaultParameters()))
}

func TestRejectCorruptedTrace(t *testing.T) {
	params := testParameters()

	t.Run("transition violation", func(t *testing.T) {
		trace := counterTrace(8)
		var v fr.Element
		v.SetUint64(99)
		trace.Set(0, 4, v)
		require.Error(t, air.Check(counterAIR{}, trace))

		// proving still succeeds; the proof just does not verify
		proof, err := stark.Prove(counterAIR{}, trace, params)
		require.NoError(t, err)

		err = stark.Verify(counterAIR{}, 8, proof, params)
		var vErr *stark.VerificationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, stark.CheckFinalDegree, vErr.Check)
	})

	t.Run("boundary violation", func(t *testing.T) {
		trace := counterTrace(16)
		var v fr.Element
		v.SetUint64(1)
		trace.Set(0, 0, v)
		for i := 1; i < 16; i++ {
			v.SetUint64(uint64(i + 1))
			trace.Set(0, i, v)
		}

		proof, err := stark.Prove(counterAIR{}, trace, params)
		require.NoError(t, err)

		err = stark.Verify(counterAIR{}, 16, proof, params)
		var vErr *stark.VerificationError
		require.ErrorAs(t, err, &vErr)
	})
}

func TestSoundnessAcrossQueryCounts(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}
	for _, queries := range []int{1, 5, 10, 25} {
		params := testParameters()
		params.NumQueries = queries

		for round := 0; round < 4; round++ {
			trace := counterTrace(16)
			var v fr.Element
			_, err := v.SetRandom()
			require.NoError(t, err)
			trace.Set(0, 1+round*4, v)
			require.Error(t, air.Check(counterAIR{}, trace))

			proof, err := stark.Prove(counterAIR{}, trace, params)
			require.NoError(t, err)
			require.Error(t, stark.Verify(counterAIR{}, 16, proof, params),
				"queries=%d round=%d", queries, round)
		}
	}
}

func TestTamperEveryPathByte(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive tamper matrix")
	}
	params := testParameters()
	params.NumQueries = 4
	trace := counterTrace(8)
	proof, err := stark.Prove(counterAIR{}, trace, params)
	require.NoError(t, err)
	require.NoError(t, stark.Verify(counterAIR{}, 8, proof, params))

	for n, node := range proof.Queries[0].RowPath {
		for b := range node {
			node[b] ^= 0xff
			require.Error(t, stark.Verify(counterAIR{}, 8, proof, params),
				"path node %d byte %d", n, b)
			node[b] ^= 0xff
		}
	}
	for n, node := range proof.Queries[0].Layers[0].LeftPath {
		for b := range node {
			node[b] ^= 0xff
			require.Error(t, stark.Verify(counterAIR{}, 8, proof, params),
				"fri path node %d byte %d", n, b)
			node[b] ^= 0xff
		}
	}
}

func TestRejectTamperedProof(t *testing.T) {
	params := testParameters()
	trace := counterTrace(16)
	proof, err := stark.Prove(counterAIR{}, trace, params)
	require.NoError(t, err)

	var vErr *stark.VerificationError

	t.Run("trace root", func(t *testing.T) {
		tampered := clone(t, proof)
		tampered.TraceRoot[0] ^= 1
		require.ErrorAs(t, stark.Verify(counterAIR{}, 16, tampered, params), &vErr)
	})

	t.Run("opened row", func(t *testing.T) {
		tampered := clone(t, proof)
		var one fr.Element
		one.SetOne()
		tampered.Queries[0].Row[0].Add(&tampered.Queries[0].Row[0], &one)
		err := stark.Verify(counterAIR{}, 16, tampered, params)
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, stark.CheckMerkleTrace, vErr.Check)
	})

	t.Run("final polynomial", func(t *testing.T) {
		tampered := clone(t, proof)
		var one fr.Element
		one.SetOne()
		tampered.FinalPoly[0].Add(&tampered.FinalPoly[0], &one)
		// the final polynomial seeds the query derivation, so the indices
		// diverge and an authentication check fails
		require.ErrorAs(t, stark.Verify(counterAIR{}, 16, tampered, params), &vErr)
	})
}

func TestRejectWrongClaim(t *testing.T) {
	params := testParameters()
	trace := counterTrace(16)
	proof, err := stark.Prove(counterAIR{}, trace, params)
	require.NoError(t, err)

	// wrong trace length changes the protocol shape
	err = stark.Verify(counterAIR{}, 32, proof, params)
	require.ErrorIs(t, err, stark.ErrProofMalformed)

	// same shape, different parameters: the transcript diverges
	other := params
	other.Hash = stark.SHA3_256
	var vErr *stark.VerificationError
	require.ErrorAs(t, stark.Verify(counterAIR{}, 16, proof, other), &vErr)
}

func TestConstraintDegreeExceeded(t *testing.T) {
	trace := counterTrace(16)
	_, err := stark.Prove(quadraticAIR{}, trace, testParameters())
	require.ErrorIs(t, err, stark.ErrConstraintDegreeExceeded)
}

// quadraticAIR misdeclares its degree: the transition is quadratic but it
// announces degree one.
type quadraticAIR struct{}

func (quadraticAIR) NumColumns() int               { return 1 }
func (quadraticAIR) NumTransitionConstraints() int { return 1 }
func (quadraticAIR) MaxConstraintDegree() int      { return 1 }
func (quadraticAIR) Boundary() []air.BoundaryConstraint {
	return nil
}

func (quadraticAIR) EvaluateTransition(current, next []fr.Element) []fr.Element {
	var res fr.Element
	res.Square(&current[0])
	res.Sub(&next[0], &res)
	return []fr.Element{res}
}

func TestConfiguration(t *testing.T) {
	var cfgErr stark.ConfigurationError

	t.Run("trace length not a power of two", func(t *testing.T) {
		trace := counterTrace(12)
		_, err := stark.Prove(counterAIR{}, trace, testParameters())
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("column mismatch", func(t *testing.T) {
		trace := air.NewTrace(2, 16)
		_, err := stark.Prove(counterAIR{}, trace, testParameters())
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("invalid blow-up", func(t *testing.T) {
		params := testParameters()
		params.BlowUpFactor = 3
		_, err := stark.Prove(counterAIR{}, counterTrace(16), params)
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("unknown hash", func(t *testing.T) {
		params := testParameters()
		params.Hash = stark.HashID(42)
		require.Error(t, params.Validate())
	})

	t.Run("default parameters are valid", func(t *testing.T) {
		require.NoError(t, stark.DefaultParameters().Validate())
	})
}

// clone round-trips the proof through its binary encoding, yielding an
// independent copy.
func clone(t *testing.T, proof *stark.Proof) *stark.Proof {
	t.Helper()
	data, err := proof.MarshalBinary()
	require.NoError(t, err)
	var res stark.Proof
	require.NoError(t, res.UnmarshalBinary(data))
	return &res
}

func TestVerificationErrorMessage(t *testing.T) {
	params := testParameters()
	trace := counterTrace(16)
	proof, err := stark.Prove(counterAIR{}, trace, params)
	require.NoError(t, err)

	tampered := clone(t, proof)
	var one fr.Element
	one.SetOne()
	tampered.Queries[0].Row[0].Add(&tampered.Queries[0].Row[0], &one)

	err = stark.Verify(counterAIR{}, 16, tampered, params)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "proof rejected")
	var unknown interface{ Unwrap() error }
	require.ErrorAs(t, err, &unknown)
}
