// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package stark

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/consensys/stark/fri"
	"github.com/consensys/stark/polynomial"
)

// Serialization limits; a valid proof stays far below both.
const (
	maxSliceLen  = 1 << 20
	maxDigestLen = 1 << 10
)

// WriteTo serializes the proof. Variable length sections carry a big endian
// uint32 length prefix; field elements use the canonical fixed 32-byte big
// endian encoding. The section order follows the transcript absorption
// order, so the encoding of a given proof is unique.
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	bw := &protoWriter{w: w}

	bw.bytes(proof.TraceRoot)
	bw.bytes(proof.CompRoot)
	bw.u32(uint32(len(proof.FriRoots)))
	for _, root := range proof.FriRoots {
		bw.bytes(root)
	}
	bw.elements(proof.FinalPoly)
	bw.u32(uint32(len(proof.Queries)))
	for i := range proof.Queries {
		q := &proof.Queries[i]
		bw.elements(q.Row)
		bw.elements(q.NextRow)
		bw.digests(q.RowPath)
		bw.digests(q.NextRowPath)
		bw.u32(uint32(len(q.Layers)))
		for l := range q.Layers {
			bw.element(&q.Layers[l].Left)
			bw.element(&q.Layers[l].Right)
			bw.digests(q.Layers[l].LeftPath)
			bw.digests(q.Layers[l].RightPath)
		}
	}
	return bw.n, bw.err
}

// ReadFrom deserializes the proof. It only checks that the encoding is well
// formed; the shape consistency with the parameters is checked by Verify.
func (proof *Proof) ReadFrom(r io.Reader) (int64, error) {
	br := &protoReader{r: r}

	proof.TraceRoot = br.bytes()
	proof.CompRoot = br.bytes()
	proof.FriRoots = make([][]byte, br.u32())
	for i := range proof.FriRoots {
		proof.FriRoots[i] = br.bytes()
	}
	proof.FinalPoly = polynomial.New(br.elements())
	proof.Queries = make([]QueryProof, br.u32())
	for i := range proof.Queries {
		q := &proof.Queries[i]
		q.Row = br.elements()
		q.NextRow = br.elements()
		q.RowPath = br.digests()
		q.NextRowPath = br.digests()
		q.Layers = make([]fri.LayerOpening, br.u32())
		for l := range q.Layers {
			q.Layers[l].Left = br.element()
			q.Layers[l].Right = br.element()
			q.Layers[l].LeftPath = br.digests()
			q.Layers[l].RightPath = br.digests()
		}
	}
	return br.n, br.err
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (proof *Proof) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. Trailing bytes are
// rejected.
func (proof *Proof) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if _, err := proof.ReadFrom(r); err != nil {
		return err
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrProofMalformed, r.Len())
	}
	return nil
}

// protoWriter tracks the byte count and sticks to the first error.
type protoWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (bw *protoWriter) raw(b []byte) {
	if bw.err != nil {
		return
	}
	n, err := bw.w.Write(b)
	bw.n += int64(n)
	bw.err = err
}

func (bw *protoWriter) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	bw.raw(b[:])
}

func (bw *protoWriter) bytes(b []byte) {
	bw.u32(uint32(len(b)))
	bw.raw(b)
}

func (bw *protoWriter) element(e *fr.Element) {
	b := e.Bytes()
	bw.raw(b[:])
}

func (bw *protoWriter) elements(es []fr.Element) {
	bw.u32(uint32(len(es)))
	for i := range es {
		bw.element(&es[i])
	}
}

func (bw *protoWriter) digests(ds [][]byte) {
	bw.u32(uint32(len(ds)))
	for _, d := range ds {
		bw.bytes(d)
	}
}

// protoReader mirrors protoWriter; on the first error every later read
// returns zero values so the caller checks err once.
type protoReader struct {
	r   io.Reader
	n   int64
	err error
}

func (br *protoReader) fail(format string, args ...any) {
	if br.err == nil {
		br.err = fmt.Errorf("%w: %s", ErrProofMalformed, fmt.Sprintf(format, args...))
	}
}

func (br *protoReader) raw(b []byte) {
	if br.err != nil {
		return
	}
	n, err := io.ReadFull(br.r, b)
	br.n += int64(n)
	if err != nil {
		br.fail("truncated input: %v", err)
	}
}

func (br *protoReader) u32() uint32 {
	var b [4]byte
	br.raw(b[:])
	if br.err != nil {
		return 0
	}
	return binary.BigEndian.Uint32(b[:])
}

func (br *protoReader) bytes() []byte {
	l := br.u32()
	if l > maxDigestLen {
		br.fail("digest length %d exceeds the limit", l)
	}
	if br.err != nil {
		return nil
	}
	b := make([]byte, l)
	br.raw(b)
	return b
}

func (br *protoReader) element() fr.Element {
	var b [fr.Bytes]byte
	br.raw(b[:])
	var e fr.Element
	if br.err != nil {
		return e
	}
	if err := e.SetBytesCanonical(b[:]); err != nil {
		br.fail("non-canonical field element: %v", err)
	}
	return e
}

func (br *protoReader) elements() []fr.Element {
	l := br.u32()
	if l > maxSliceLen {
		br.fail("slice length %d exceeds the limit", l)
	}
	if br.err != nil {
		return nil
	}
	es := make([]fr.Element, l)
	for i := range es {
		es[i] = br.element()
	}
	return es
}

func (br *protoReader) digests() [][]byte {
	l := br.u32()
	if l > maxSliceLen {
		br.fail("slice length %d exceeds the limit", l)
	}
	if br.err != nil {
		return nil
	}
	ds := make([][]byte, l)
	for i := range ds {
		ds[i] = br.bytes()
	}
	return ds
}
