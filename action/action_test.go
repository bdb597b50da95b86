package action_test

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/tcrpdb/action"
	"github.com/andrew-torda/tcrpdb/common"
	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/pdb/pdbtest"
	"github.com/andrew-torda/tcrpdb/role"
)

func env(t *testing.T) (*action.Env, *bytes.Buffer) {
	t.Helper()
	c, err := role.New(role.References{}, role.DefaultParams(), nil)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	return &action.Env{Roles: c, AlphaCut: 107, BetaCut: 113, Log: log.New(&b, "", 0)}, &b
}

func TestApply(t *testing.T) {
	fname, err := common.WrtTemp(pdbtest.Complex().String())
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(fname)
	e, logged := env(t)
	path, skipped, err := action.Apply(fname, []string{"clean_pdb", "bogus", "", "split_tcr", "clean_tcr_count_trim"}, e)
	if err != nil {
		t.Fatal(err)
	}
	if path != fname {
		t.Errorf("result in %s, not %s", path, fname)
	}
	if len(skipped) != 1 || skipped[0] != "bogus" {
		t.Errorf("skipped %v", skipped)
	}
	if !strings.Contains(logged.String(), "bogus") {
		t.Error("skipped action not logged")
	}
	s := pdbtest.MustRead(t, fname)
	if got := string(s.Chains()); got != "DE" {
		t.Errorf("chains %q", got)
	}
	if n := len(s.Residues('D')); n != 107 {
		t.Errorf("alpha has %d residues", n)
	}
}

func TestApplyFails(t *testing.T) {
	s := pdbtest.Build(pdbtest.Chain{ID: 'A', Seq: pdbtest.MHCSeq})
	fname := pdbtest.WriteTemp(t, s, "mhc.pdb")
	before, _ := os.ReadFile(fname)
	e, _ := env(t)
	if _, _, err := action.Apply(fname, []string{"center", "split_p"}, e); err == nil {
		t.Error("no peptide, but split_p worked")
	}
	after, _ := os.ReadFile(fname)
	if !bytes.Equal(before, after) {
		t.Error("file changed although an action failed")
	}
	if _, _, err := action.Apply(fname+"x", nil, e); err == nil {
		t.Error("missing file")
	}
}

func TestRunAll(t *testing.T) {
	e, _ := env(t)
	for _, name := range action.Vocabulary {
		out, ok, err := action.Run(pdbtest.Complex(), name, e)
		if err != nil || !ok || out == nil {
			t.Errorf("%s: ok %v err %v", name, ok, err)
		}
		if !action.Known(name) {
			t.Errorf("%s not known", name)
		}
	}
	if action.Known("centre") {
		t.Error("centre is not an action")
	}
}

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/1ao7.pdb") {
			w.Write([]byte(pdbtest.Complex().String()))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	saved := pdb.Sites
	defer func() { pdb.Sites = saved }()
	pdb.Sites = []pdb.Site{{Base: srv.URL + "/", Suffix: ".pdb"}}

	dir := t.TempDir()
	r := &action.Resolver{Dir: dir, Client: srv.Client()}
	ctx := context.Background()
	path, err := r.Resolve(ctx, "1AO7")
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "1ao7.pdb") || !pdbtest.Exists(path) {
		t.Errorf("got %s", path)
	}
	// second time it is there already, the server is not asked
	srv.Close()
	if p2, err := r.Resolve(ctx, "1ao7"); err != nil || p2 != path {
		t.Errorf("second resolve %s %v", p2, err)
	}
	if p3, err := r.Resolve(ctx, path); err != nil || p3 != path {
		t.Errorf("a file name should resolve to itself, got %s %v", p3, err)
	}
	if _, err := r.Resolve(ctx, "2xyz"); err == nil {
		t.Error("unknown code resolved")
	}
	if _, err := r.Resolve(ctx, "nonsense"); err == nil {
		t.Error("nonsense resolved")
	}

	e, _ := env(t)
	out, _, err := r.Do(ctx, "1ao7", []string{"split_mhc"}, e)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(pdbtest.MustRead(t, out).Chains()); got != "A" {
		t.Errorf("chains %q", got)
	}
}

func TestCenterDir(t *testing.T) {
	dir := t.TempDir()
	pdbtest.WriteTemp(t, pdbtest.Complex(), "x.pdb") // somewhere else, not seen
	for _, name := range []string{"a.pdb", "b.pdb"} {
		if err := pdbtest.Complex().Flush(filepath.Join(dir, name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "c.pdb"), []byte("HEADER\nEND\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644)
	res, err := action.CenterDir(dir, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 3 {
		t.Fatalf("got %d results", len(res))
	}
	for i, want := range []string{"a", "b", "c"} {
		if filepath.Base(res[i].Out) != want+"_center.pdb" {
			t.Errorf("result %d is %s", i, res[i].Out)
		}
	}
	if res[0].Err != nil || res[1].Err != nil || !pdbtest.Exists(res[0].Out) {
		t.Errorf("good files failed: %v %v", res[0].Err, res[1].Err)
	}
	if res[2].Err == nil {
		t.Error("a file with no atoms cannot be centred")
	}
}
