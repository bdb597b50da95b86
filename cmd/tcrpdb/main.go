// Tcrpdb reads a PDB file of a TCR/peptide/MHC complex and does one thing
// to it: say which chain is which, renumber, split, clean, superimpose,
// centre, pull out CDR loops and so on.
//
// Usage:
//
//	tcrpdb [flags] structure.pdb
//
// Exactly one action flag is given. Query actions print to standard
// output. Everything else writes a structure file, by default over the
// input or next to it with a suffix, or to the name given by --out.
// Settings come from defaults, then a file named by --config, then
// TCRPDB_* environment variables, then flags.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/andrew-torda/tcrpdb/common"
	"github.com/andrew-torda/tcrpdb/config"
	"github.com/andrew-torda/tcrpdb/role"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// usageError is for command lines that make no sense.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// app is everything an action handler may need.
type app struct {
	stdout io.Writer
	v      *viper.Viper
	cfg    config.Config
	in     string // input file or directory
	log    *log.Logger
	cls    *role.Classifier

	cfgFile   string
	out       string
	tarChains string
	refChains string
	carbon    bool

	bools   map[string]*bool
	strs    map[string]*string
	bindErr error
}

func newRoot(stdout io.Writer) *cobra.Command {
	a := &app{
		stdout: stdout,
		v:      config.New(),
		bools:  make(map[string]*bool),
		strs:   make(map[string]*string),
	}
	cmd := &cobra.Command{
		Use:   "tcrpdb [flags] structure.pdb",
		Short: "Classify, renumber, split, clean and superimpose TCR/pMHC structures",
		Long: `tcrpdb works on one PDB file of a TCR/peptide/MHC complex.
Give exactly one action flag. Query actions print to standard output,
the rest write a structure file. With --center, the argument may be a
directory and every *.pdb file in it is centred into <dir>/Results.`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageError{fmt.Sprintf("want one structure file, got %d arguments", len(args))}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.in = args[0]
			return a.run()
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err.Error()}
	})
	f := cmd.Flags()
	for _, h := range handlers {
		if h.arg == "" {
			a.bools[h.name] = f.Bool(h.name, false, h.help)
		} else {
			a.strs[h.name] = f.String(h.name, "", h.help+" ("+h.arg+")")
		}
	}
	f.StringVar(&a.cfgFile, "config", "", "config file (yaml, toml or json)")
	f.StringVarP(&a.out, "out", "o", "", "output file name, derived from the input if not given")
	f.StringVar(&a.tarChains, "tar-chains", "", "chain order of the target for --align and --rmsd")
	f.StringVar(&a.refChains, "ref-chains", "", "chain order of the reference for --align and --rmsd")
	f.BoolVar(&a.carbon, "carbon", false, "only alpha carbons for --rmsd")
	a.bindErr = bind(a.v, f, map[string]string{
		"log":        "log",
		"workers":    "workers",
		"germline":   "germline",
		"trim.alpha": "alpha-cut",
		"trim.beta":  "beta-cut",
	})
	return cmd
}

// bind adds settings flags and hands them to viper, so a flag only wins
// if it was set.
func bind(v *viper.Viper, f *pflag.FlagSet, keys map[string]string) error {
	f.String("log", "", `where to log: "stdout", a file, or nothing`)
	f.Int("workers", 1, "files to work on at once in directory mode")
	f.String("germline", "", "germline table for --cdr")
	f.Int("alpha-cut", 107, "last alpha residue kept by --renum-tcr")
	f.Int("beta-cut", 113, "last beta residue kept by --renum-tcr")
	var errs []error
	for key, flag := range keys {
		if err := v.BindPFlag(key, f.Lookup(flag)); err != nil {
			errs = append(errs, fmt.Errorf("binding --%s to %s: %w", flag, key, err))
		}
	}
	return errors.Join(errs...)
}

// chosen finds the one action that was asked for.
func (a *app) chosen() (*handler, string, error) {
	var h *handler
	var val string
	n := 0
	for i := range handlers {
		hh := &handlers[i]
		if hh.arg == "" && *a.bools[hh.name] {
			h, n = hh, n+1
		} else if hh.arg != "" && *a.strs[hh.name] != "" {
			h, val, n = hh, *a.strs[hh.name], n+1
		}
	}
	switch n {
	case 0:
		return nil, "", usageError{"no action given, see --help"}
	case 1:
		return h, val, nil
	}
	return nil, "", usageError{fmt.Sprintf("%d actions given, only one at a time please", n)}
}

func main() {
	cmd := newRoot(os.Stdout)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintln(os.Stderr, cmd.UsageString())
			os.Exit(common.ExitUsageError)
		}
		os.Exit(common.ExitFailure)
	}
	os.Exit(common.ExitSuccess)
}
