package zwrap_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/andrew-torda/tcrpdb/pdb/zwrap"
)

// both of these are "andrewsays", but the first is compressed.
var gztests = []struct {
	data    []byte
	gzipped bool
}{
	{[]byte{
		0x1f, 0x8b, 0x08, 0x00, 0xb6, 0xf1, 0xa0, 0x5b, 0x00, 0x03,
		0x4b, 0xcc, 0x4b, 0x29, 0x4a, 0x2d, 0x2f, 0x4e, 0xac, 0x2c,
		0xce, 0x48, 0xcd, 0xc9, 0xc9, 0x07, 0x00, 0x44, 0xa8, 0x66,
		0x89, 0x0f, 0x00, 0x00, 0x00},
		true,
	},
	{[]byte{
		0x61, 0x6e, 0x64, 0x72, 0x65, 0x77, 0x73, 0x61,
		0x79, 0x73, 0x68, 0x65, 0x6c, 0x6c, 0x6f, 0x0a},
		false,
	},
}

func TestWrap(t *testing.T) {
	for _, x := range gztests {
		if zwrap.Gzipped(x.data) != x.gzipped {
			t.Errorf("Gzipped got it wrong on %v", x.data[:4])
		}
		src := io.NopCloser(bytes.NewReader(x.data))
		var r *zwrap.Reader
		var err error
		if x.gzipped {
			if r, err = zwrap.Wrap(src); err != nil {
				t.Fatal("Fail on correctly gzipped data", err)
			}
		} else {
			if _, err = zwrap.Wrap(io.NopCloser(bytes.NewReader(x.data))); err == nil {
				t.Error("Wrap should fail on plain data")
			}
			r = zwrap.Plain(src)
		}
		b, err := io.ReadAll(r)
		if err != nil {
			t.Error(err)
		}
		if string(b[:10]) != "andrewsays" {
			t.Errorf("wrong string: %s", b[:10])
		}
		if err := r.Close(); err != nil {
			t.Errorf("Error closing: %s", err)
		}
	}
}
