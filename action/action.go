// Package action runs named steps on a structure file. It is the entry
// point for whatever takes requests from users: that side gives a
// structure identifier and a list of action names, this side finds the
// file, runs the actions in order and says where the result is.
package action

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/andrew-torda/tcrpdb/fit"
	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/transform"
)

// Action names.
const (
	None          = "none"
	Center        = "center"
	SplitTCR      = "split_tcr"
	RenumDocking  = "clean_docking_count_non_tcr"
	TrimTCR       = "clean_tcr_count_trim"
	SplitMHC      = "split_mhc"
	SplitPeptide  = "split_p"
	SplitPMHC     = "split_pmhc"
	CleanPDB      = "clean_pdb"
	actionUnknown = ""
)

// Vocabulary is every name Apply knows.
var Vocabulary = []string{None, Center, SplitTCR, RenumDocking, TrimTCR,
	SplitMHC, SplitPeptide, SplitPMHC, CleanPDB}

// Env is what the actions need.
type Env struct {
	Roles    transform.Roles
	AlphaCut int
	BetaCut  int
	Log      *log.Logger // may be nil
}

func (e *Env) logf(format string, v ...any) {
	if e.Log != nil {
		e.Log.Output(2, fmt.Sprintf(format, v...))
	}
}

// Known says if name is an action.
func Known(name string) bool {
	if name == "" {
		return true
	}
	for _, v := range Vocabulary {
		if v == name {
			return true
		}
	}
	return false
}

// Run does one action on s. The empty name and None give s back. An
// unknown name gives s back with ok false.
func Run(s *pdb.Structure, name string, env *Env) (out *pdb.Structure, ok bool, err error) {
	switch name {
	case actionUnknown, None:
		return s, true, nil
	case Center:
		out, err = fit.Orient(s)
	case SplitTCR:
		out, err = transform.SplitTCR(s, env.Roles, false)
	case RenumDocking:
		out = transform.DockingRenumber(s)
	case TrimTCR:
		out, err = transform.TrimTCR(s, env.Roles, env.AlphaCut, env.BetaCut)
	case SplitMHC:
		out, err = transform.SplitMHC(s, env.Roles)
	case SplitPeptide:
		out, err = transform.SplitPeptide(s, env.Roles)
	case SplitPMHC:
		out, err = transform.SplitPMHC(s, env.Roles)
	case CleanPDB:
		out, err = transform.CleanPDB(s, env.Roles)
	default:
		return s, false, nil
	}
	if err != nil {
		return nil, true, fmt.Errorf("%s: %w", name, err)
	}
	return out, true, nil
}

// Apply reads the file at path, runs the actions in order and writes the
// result back to path. Unknown names are skipped and returned, they are
// not errors. If an action fails, the file is left as it was.
func Apply(path string, names []string, env *Env) (string, []string, error) {
	s, err := pdb.ReadFile(path, nil)
	if err != nil {
		return "", nil, err
	}
	for _, w := range s.Warnings {
		env.logf("%s %s", path, w)
	}
	var skipped []string
	nwarn := len(s.Warnings)
	for _, name := range names {
		out, ok, err := Run(s, name, env)
		if err != nil {
			return "", skipped, err
		}
		if !ok {
			env.logf("skipping unknown action %q", name)
			skipped = append(skipped, name)
			continue
		}
		s = out
		for _, w := range s.Warnings[min(nwarn, len(s.Warnings)):] {
			env.logf("%s: %s", name, w)
		}
		nwarn = len(s.Warnings)
	}
	if err := s.Flush(path); err != nil {
		return "", skipped, err
	}
	return path, skipped, nil
}

// Resolver turns a structure identifier into a local file.
type Resolver struct {
	Dir    string       // where files live
	Client *http.Client // nil means http.DefaultClient
	Site   int          // index into pdb.Sites
}

// Resolve gives the path of a structure. An identifier that is an
// existing file is used as it is. Otherwise it is taken as a four letter
// code and looked for as <Dir>/<code>.pdb. If that is not there it is
// downloaded, once, from one site.
func (r *Resolver) Resolve(ctx context.Context, id string) (string, error) {
	if fi, err := os.Stat(id); err == nil && !fi.IsDir() {
		return id, nil
	}
	if len(id) != 4 {
		return "", fmt.Errorf("%s is neither a file nor a pdb code", id)
	}
	path := filepath.Join(r.Dir, strings.ToLower(id)+".pdb")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	if err := pdb.FetchToFile(ctx, r.Client, id, r.Site, path); err != nil {
		return "", fmt.Errorf("fetching %s: %w", id, err)
	}
	return path, nil
}

// Do is the whole request: resolve the identifier, then Apply.
func (r *Resolver) Do(ctx context.Context, id string, names []string, env *Env) (string, []string, error) {
	path, err := r.Resolve(ctx, id)
	if err != nil {
		return "", nil, err
	}
	return Apply(path, names, env)
}
