package pdb_test

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/andrew-torda/tcrpdb/pdb"
)

// fakeArchive serves smallPDB, gzipped under /z/ and plain under /p/.
func fakeArchive(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/z/1abc"):
			zw := gzip.NewWriter(w)
			io.WriteString(zw, smallPDB)
			zw.Close()
		case strings.HasPrefix(r.URL.Path, "/p/pdb1abc"):
			io.WriteString(w, smallPDB)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetch(t *testing.T) {
	srv := fakeArchive(t)
	defer srv.Close()
	saved := Sites
	defer func() { Sites = saved }()
	Sites = []Site{
		{srv.URL + "/z/", "", ".pdb.gz", true},
		{srv.URL + "/p/", "pdb", ".ent", false},
	}
	ctx := context.Background()
	for site := 0; site < 3; site++ { // 2 wraps around
		rdr, err := Fetch(ctx, srv.Client(), "1ABC", site)
		if err != nil {
			t.Fatalf("site %d: %v", site, err)
		}
		b, err := io.ReadAll(rdr)
		rdr.Close()
		if err != nil || string(b) != smallPDB {
			t.Errorf("site %d gave %d bytes, err %v", site, len(b), err)
		}
	}
	if _, err := Fetch(ctx, srv.Client(), "2xyz", 0); err == nil {
		t.Error("missing entry should give an error")
	}
	if _, err := Fetch(ctx, srv.Client(), "toolong", 0); err == nil {
		t.Error("five letter code should give an error")
	}

	fname := filepath.Join(t.TempDir(), "1abc.pdb")
	if err := FetchToFile(ctx, srv.Client(), "1abc", 1, fname); err != nil {
		t.Fatal(err)
	}
	s, err := ReadFile(fname, nil)
	if err != nil || s.PDBID() != "1abc" {
		t.Errorf("saved entry reads back wrong: %v", err)
	}
}
