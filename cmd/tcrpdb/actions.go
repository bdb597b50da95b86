package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andrew-torda/tcrpdb/action"
	"github.com/andrew-torda/tcrpdb/cdr"
	"github.com/andrew-torda/tcrpdb/config"
	"github.com/andrew-torda/tcrpdb/fit"
	"github.com/andrew-torda/tcrpdb/pdb"
	"github.com/andrew-torda/tcrpdb/role"
	"github.com/andrew-torda/tcrpdb/transform"
)

// handler is one action flag. A handler that returns a nil structure has
// printed its answer and nothing is written. Otherwise the result goes to
// --out, or over the input if suffix is empty, or to the input name with
// suffix added.
type handler struct {
	name   string
	help   string
	arg    string // what the flag takes, empty for a bool flag
	suffix string
	run    func(a *app, s *pdb.Structure, val string) (*pdb.Structure, error)
}

var handlers = []handler{
	{name: "tcr", help: "print the alpha and beta chains", run: tcrQuery},
	{name: "alpha", help: "print the TCR alpha chain", run: roleQuery(role.Alpha)},
	{name: "beta", help: "print the TCR beta chain", run: roleQuery(role.Beta)},
	{name: "mhc", help: "print the MHC chain", run: roleQuery(role.MHC)},
	{name: "b2m", help: "print the beta-2-microglobulin chain", run: roleQuery(role.B2M)},
	{name: "peptide", help: "print the peptide chain", run: roleQuery(role.Peptide)},
	{name: "roles", help: "print every chain role that can be found", run: rolesQuery},
	{name: "resolution", help: "print the resolution from REMARK 2", run: resolutionQuery},
	{name: "chains", help: "print the chain identifiers in file order", run: chainsQuery},
	{name: "distance", arg: "serial1,serial2", help: "print the distance between two atoms", run: distanceQuery},
	{name: "cdr", help: "print the CDR loops of both TCR chains", run: cdrQuery},
	{name: "fasta", arg: "file", help: "append the TCR sequence to a FASTA file", run: fastaAppend},

	{name: "renum", help: "renumber residues continuously for docking", suffix: "_renum",
		run: func(_ *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.DockingRenumber(s), nil
		}},
	{name: "renum-tcr", help: "keep the TCR, renamed D/E, numbered from 1 and trimmed to the variable domains",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.TrimTCR(s, a.cls, a.cfg.Trim.Alpha, a.cfg.Trim.Beta)
		}},
	{name: "trim", arg: "chain:cutoff", help: "drop residues of a chain numbered above cutoff", run: trimChain},
	{name: "clean-tcr", help: "keep only the TCR, renamed D/E",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.CleanTCR(s, a.cls)
		}},
	{name: "clean-pdb", help: "relabel chains to A-E and put them in canonical order",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.CleanPDB(s, a.cls)
		}},
	{name: "mhc-split", help: "write only the MHC chain", suffix: "_mhc",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.SplitMHC(s, a.cls)
		}},
	{name: "peptide-split", help: "write only the peptide chain", suffix: "_p",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.SplitPeptide(s, a.cls)
		}},
	{name: "tcr-split", help: "write only the TCR chains", suffix: "_tcr",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.SplitTCR(s, a.cls, false)
		}},
	{name: "tcr-split-de", help: "write chains D and E, without classifying", suffix: "_tcr",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.SplitTCR(s, a.cls, true)
		}},
	{name: "pmhc-split", help: "write only the MHC and peptide chains", suffix: "_pmhc",
		run: func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return transform.SplitPMHC(s, a.cls)
		}},

	{name: "align", arg: "reference.pdb", help: "superimpose onto a reference, print the RMSD", suffix: "_aligned", run: align},
	{name: "rmsd", arg: "reference.pdb", help: "print the RMSD to a reference without moving anything", run: rmsd},
	{name: "center", help: "put the centroid at the origin and the principal axes on x, y, z", suffix: "_center",
		run: func(_ *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
			return fit.Orient(s)
		}},

	{name: "reorder", arg: "chains", help: "write chains in this order", run: reorder},
	{name: "relabel", arg: "AB:DE", help: "rename chains", run: relabel},
	{name: "mute", arg: "chain:from-to", help: "turn ATOM into DEATOM for a residue range", run: muter(transform.Mute)},
	{name: "unmute", arg: "chain:from-to", help: "turn DEATOM back into ATOM for a residue range", run: muter(transform.Unmute)},
	{name: "remove-chain", arg: "chain", help: "drop one chain", run: removeChain},
	{name: "join", arg: "other.pdb", help: "add the atoms of another file", run: join},
	{name: "actions", arg: "a,b,c", help: "run named actions in order: " + strings.Join(action.Vocabulary, ", "), run: actions},
}

// logWhere decide where to send output. If it opened a file, the file
// is returned so the caller can close it.
func logWhere(outinfo string) (*log.Logger, *os.File, error) {
	var iowriter io.Writer
	var fp *os.File
	switch outinfo {
	case "":
		iowriter = io.Discard
	case "stdout":
		iowriter = os.Stdout
	default:
		var err error
		fp, err = os.OpenFile(outinfo, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		iowriter = fp
	}
	return log.New(iowriter, "", log.Lshortfile), fp, nil
}

// run does the chosen action on the input.
func (a *app) run() (err error) {
	if a.bindErr != nil {
		return a.bindErr
	}
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	h, val, err := a.chosen()
	if err != nil {
		return err
	}
	var logFile *os.File
	if a.log, logFile, err = logWhere(cfg.Log); err != nil {
		return fmt.Errorf("%w creating log file", err)
	}
	if logFile != nil {
		defer func() {
			if cerr := logFile.Close(); err == nil {
				err = cerr
			}
		}()
	}
	if h.name == "center" {
		if fi, err := os.Stat(a.in); err == nil && fi.IsDir() {
			return a.centerDir()
		}
	}
	if a.cls, err = cfg.Classifier(); err != nil {
		return err
	}
	s, err := pdb.ReadFile(a.in, nil)
	if err != nil {
		return err
	}
	for _, w := range s.Warnings {
		a.log.Printf("%s %s", a.in, w)
	}
	out, err := h.run(a, s, val)
	if err != nil {
		return fmt.Errorf("--%s: %w", h.name, err)
	}
	if out == nil {
		return nil
	}
	fname := a.outName(h.suffix)
	a.log.Printf("--%s writing %s", h.name, fname)
	return out.Flush(fname)
}

// outName is where a transformed structure goes.
func (a *app) outName(suffix string) string {
	switch {
	case a.out != "":
		return a.out
	case suffix == "":
		return a.in
	}
	return strings.TrimSuffix(a.in, filepath.Ext(a.in)) + suffix + ".pdb"
}

func (a *app) centerDir() error {
	res, err := action.CenterDir(a.in, a.cfg.Workers)
	if err != nil {
		return err
	}
	var errs []error
	for _, r := range res {
		if r.Err != nil {
			errs = append(errs, r.Err)
			continue
		}
		fmt.Fprintln(a.stdout, r.Out)
	}
	return errors.Join(errs...)
}

func tcrQuery(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
	alpha, beta, err := a.cls.TCR(s)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.stdout, "%s:%c %s:%c\n", role.Alpha, alpha, role.Beta, beta)
	return nil, nil
}

func roleQuery(r role.Role) func(*app, *pdb.Structure, string) (*pdb.Structure, error) {
	return func(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
		c, err := a.cls.Chain(s, r)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(a.stdout, "%c\n", c)
		return nil, nil
	}
}

// rolesQuery prints what it could find. It only fails if nothing was
// found; partial failures go to the log.
func rolesQuery(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
	asgn, err := a.cls.Classify(s)
	if len(asgn) == 0 && err != nil {
		return nil, err
	}
	if err != nil {
		a.log.Println(err)
	}
	fmt.Fprintln(a.stdout, asgn)
	return nil, nil
}

func resolutionQuery(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
	r, err := s.Resolution()
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.stdout, "%.2f\n", r)
	return nil, nil
}

func chainsQuery(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
	fmt.Fprintln(a.stdout, string(s.Chains()))
	return nil, nil
}

func distanceQuery(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	n1, n2, err := parsePair(val)
	if err != nil {
		return nil, err
	}
	d, err := s.Distance(n1, n2)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.stdout, "%.3f\n", d)
	return nil, nil
}

// cdrQuery prints each chain that matched a germline, then any error.
func cdrQuery(a *app, s *pdb.Structure, _ string) (*pdb.Structure, error) {
	tbl, err := a.cfg.Germlines()
	if err != nil {
		return nil, err
	}
	alpha, beta, err := a.cls.TCR(s)
	if err != nil {
		return nil, err
	}
	ca, cb, err := cdr.FromStructure(s, alpha, beta, tbl)
	for _, c := range []struct {
		r role.Role
		c cdr.Chain
	}{{role.Alpha, ca}, {role.Beta, cb}} {
		if c.c.Germline == "" {
			continue
		}
		fmt.Fprintf(a.stdout, "%s %c %s\n", c.r, c.c.Chain, c.c.Germline)
		for _, l := range c.c.Loops {
			fmt.Fprintln(a.stdout, "   ", l)
		}
	}
	return nil, err
}

func fastaAppend(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	f, err := os.OpenFile(val, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if err := transform.FastaTCR(f, s, a.cls); err != nil {
		f.Close()
		return nil, err
	}
	return nil, f.Close()
}

func trimChain(_ *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	chain, rest, err := splitChain(val)
	if err != nil {
		return nil, err
	}
	cutoff, err := strconv.Atoi(rest)
	if err != nil {
		return nil, usageError{fmt.Sprintf("bad cutoff in %q", val)}
	}
	return transform.Trim(s, chain, cutoff), nil
}

// reference reads the reference and checks the chain strings.
func (a *app) reference(fname string) (*pdb.Structure, error) {
	if a.tarChains == "" || a.refChains == "" {
		return nil, usageError{"--tar-chains and --ref-chains are both needed"}
	}
	if len(a.tarChains) != len(a.refChains) {
		return nil, usageError{fmt.Sprintf("--tar-chains %q and --ref-chains %q differ in length",
			a.tarChains, a.refChains)}
	}
	return pdb.ReadFile(fname, nil)
}

func align(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	ref, err := a.reference(val)
	if err != nil {
		return nil, err
	}
	out, r, err := fit.Superimpose(s, ref, a.tarChains, a.refChains, a.cfg.Superpose)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.stdout, "%.3f\n", r)
	return out, nil
}

func rmsd(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	ref, err := a.reference(val)
	if err != nil {
		return nil, err
	}
	r, err := fit.RMSD(s, ref, a.tarChains, a.refChains, a.carbon, a.cfg.Superpose)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(a.stdout, "%.3f\n", r)
	return nil, nil
}

func reorder(_ *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	return transform.Reorder(s, val)
}

func relabel(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	m, err := transform.ParseMapping(val)
	if err != nil {
		return nil, usageError{err.Error()}
	}
	n := transform.Relabel(s, m)
	a.log.Printf("relabelled %d records", n)
	return s, nil
}

func muter(f func(*pdb.Structure, byte, int, int) int) func(*app, *pdb.Structure, string) (*pdb.Structure, error) {
	return func(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
		chain, from, to, err := parseRange(val)
		if err != nil {
			return nil, err
		}
		n := f(s, chain, from, to)
		a.log.Printf("%d atoms changed in %c %d-%d", n, chain, from, to)
		return s, nil
	}
}

func removeChain(_ *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	if len(val) != 1 {
		return nil, usageError{fmt.Sprintf("a chain is one character, not %q", val)}
	}
	return transform.RemoveChain(s, val[0]), nil
}

func join(_ *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	other, err := pdb.ReadFile(val, nil)
	if err != nil {
		return nil, err
	}
	return transform.Join(s, other), nil
}

// actions runs a list of named steps in memory and writes once.
func actions(a *app, s *pdb.Structure, val string) (*pdb.Structure, error) {
	env := &action.Env{Roles: a.cls, AlphaCut: a.cfg.Trim.Alpha, BetaCut: a.cfg.Trim.Beta, Log: a.log}
	for _, name := range strings.Split(val, ",") {
		name = strings.TrimSpace(name)
		out, ok, err := action.Run(s, name, env)
		if err != nil {
			return nil, err
		}
		if !ok {
			a.log.Printf("skipping unknown action %q", name)
			continue
		}
		s = out
	}
	return s, nil
}

// splitChain takes "A:rest" apart.
func splitChain(val string) (byte, string, error) {
	c, rest, ok := strings.Cut(val, ":")
	if !ok || len(c) != 1 {
		return 0, "", usageError{fmt.Sprintf("want chain:something, got %q", val)}
	}
	return c[0], rest, nil
}

// parseRange reads "A:10-20". Negative residue numbers are allowed, so
// the split is on the dash that ends the first number.
func parseRange(val string) (chain byte, from, to int, err error) {
	chain, rest, err := splitChain(val)
	if err != nil {
		return 0, 0, 0, err
	}
	bad := usageError{fmt.Sprintf("want chain:from-to, got %q", val)}
	i := strings.LastIndexByte(rest, '-')
	for i > 0 && rest[i-1] == '-' {
		i--
	}
	if i < 1 {
		return 0, 0, 0, bad
	}
	if from, err = strconv.Atoi(rest[:i]); err != nil {
		return 0, 0, 0, bad
	}
	if to, err = strconv.Atoi(rest[i+1:]); err != nil {
		return 0, 0, 0, bad
	}
	return chain, from, to, nil
}

func parsePair(val string) (int, int, error) {
	s1, s2, ok := strings.Cut(val, ",")
	bad := usageError{fmt.Sprintf("want two atom serial numbers, got %q", val)}
	if !ok {
		return 0, 0, bad
	}
	n1, err1 := strconv.Atoi(strings.TrimSpace(s1))
	n2, err2 := strconv.Atoi(strings.TrimSpace(s2))
	if err1 != nil || err2 != nil {
		return 0, 0, bad
	}
	return n1, n2, nil
}
