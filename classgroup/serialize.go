package classgroup

import (
	"bytes"

	"github.com/tokenized/cl-ecdsa/bigint"
)

// Write encodes f as a pair of length-prefixed signed integers (a, b);
// c is never transmitted, matching spec.md 6's wire-format note that the
// receiver recomputes c from a, b, and the shared discriminant.
func (f Form) Write(buf *bytes.Buffer) error {
	if err := bigint.WriteSigned(bigint.New(f.A), buf); err != nil {
		return err
	}
	return bigint.WriteSigned(bigint.New(f.B), buf)
}

// Read decodes a Form within group g from its wire encoding.
func Read(g *Group, r *bytes.Reader) (Form, error) {
	a, err := bigint.ReadSigned(r)
	if err != nil {
		return Form{}, err
	}
	b, err := bigint.ReadSigned(r)
	if err != nil {
		return Form{}, err
	}
	f := Form{A: a.Big(), B: b.Big(), group: g}
	f.recomputeC()
	return f, nil
}
