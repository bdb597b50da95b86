package pdbtest

import (
	"errors"
	"io"
)

// ErrBroken is what the broken reader and writer fail with.
var ErrBroken = errors.New("pdbtest: broken on purpose")

// BrokenReader wraps a reader. It lets Good bytes through and then fails,
// like a network read that dies half way through a file. Good of zero
// is a file that cannot be read at all.
type BrokenReader struct {
	R     io.Reader
	Good  int
	nByte int
}

func (r *BrokenReader) Read(p []byte) (int, error) {
	left := r.Good - r.nByte
	if left <= 0 {
		return 0, ErrBroken
	}
	if len(p) > left {
		p = p[:left]
	}
	n, err := r.R.Read(p)
	r.nByte += n
	return n, err
}

// BrokenWriter takes Good bytes and then refuses more.
type BrokenWriter struct {
	Good  int
	nByte int
}

func (w *BrokenWriter) Write(p []byte) (int, error) {
	left := w.Good - w.nByte
	if len(p) <= left {
		w.nByte += len(p)
		return len(p), nil
	}
	if left < 0 {
		left = 0
	}
	w.nByte += left
	return left, ErrBroken
}
