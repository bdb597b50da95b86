// Package zwrap wraps a source so that gzipped structure files read like
// plain ones. Close shuts the decompressor and then the source.
package zwrap

import (
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

var magic = []byte{0x1f, 0x8b}

// Reader reads through the decompressor if there is one.
type Reader struct {
	src  io.ReadCloser
	zrdr *gzip.Reader
}

// Close closes the decompressor, then the underlying source.
func (r *Reader) Close() error {
	if r.zrdr == nil {
		return r.src.Close()
	}
	var s string
	if e := r.zrdr.Close(); e != nil {
		s = e.Error()
	}
	if e := r.src.Close(); e != nil {
		s = s + " " + e.Error()
	}
	if s == "" {
		return nil
	}
	return errors.New(s)
}

func (r *Reader) Read(p []byte) (int, error) {
	if r.zrdr != nil {
		return r.zrdr.Read(p)
	}
	return r.src.Read(p)
}

// Wrap puts a decompressor in front of src. It fails if src is not gzipped.
func Wrap(src io.ReadCloser) (*Reader, error) {
	zrdr, err := gzip.NewReader(src)
	if err != nil {
		return nil, err
	}
	return &Reader{src: src, zrdr: zrdr}, nil
}

// Gzipped looks at the first bytes of some data.
func Gzipped(head []byte) bool { return bytes.HasPrefix(head, magic) }

// Plain wraps a source that is not compressed, so callers can treat both
// cases the same way.
func Plain(src io.ReadCloser) *Reader { return &Reader{src: src} }
