// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package stark provides a transparent proof system for execution traces:
// the prover commits to a trace, shows that it satisfies an algebraic
// constraint system (an AIR), and the verifier checks the proof without any
// trusted setup, using only a hash function.
//
// The protocol follows the usual STARK pipeline. The trace columns are
// extended to a larger evaluation coset and committed in a Merkle tree; the
// constraints are combined into a single composition codeword, whose
// proximity to a low degree polynomial is proven with the FRI protocol. All
// verifier randomness comes from a Fiat-Shamir transcript over the
// commitments, so proofs are non-interactive.
//
// Constraint systems implement the air.AIR interface; see examples/counter
// for a minimal one. Proving and verifying share the Parameters, which fix
// the Reed-Solomon blow-up factor, the number of FRI queries and the hash
// function:
//
//	proof, err := stark.Prove(myAIR, trace, stark.DefaultParameters())
//	...
//	err = stark.Verify(myAIR, trace.NumRows(), proof, stark.DefaultParameters())
//
// The security level is governed by the number of queries and the blow-up
// factor; DefaultParameters targets roughly 90 bits of query soundness.
package stark
