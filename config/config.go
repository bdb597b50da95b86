// Package config is for app wide settings that are unmarshalled
// from Viper (see: cmd/tcrpdb). Defaults are the values the
// heuristics were tuned with. A config file, TCRPDB_ environment
// variables and command line flags override them, in that order.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andrew-torda/tcrpdb/cdr"
	"github.com/andrew-torda/tcrpdb/fit"
	"github.com/andrew-torda/tcrpdb/gotoh"
	"github.com/andrew-torda/tcrpdb/role"
	"github.com/andrew-torda/tcrpdb/submat"
	"github.com/spf13/viper"
)

// EnvPrefix is put in front of environment variables, so align.open is
// TCRPDB_ALIGN_OPEN.
const EnvPrefix = "TCRPDB"

// AlignConfig are the gap penalties of the alignment used to
// classify chains.
type AlignConfig struct {
	// cost of opening a gap, on top of Widen
	Open float32 `mapstructure:"open"`
	// cost of each residue in a gap
	Widen float32 `mapstructure:"widen"`
	// substitution matrix file, BLOSUM62 if empty
	Submat string `mapstructure:"submat"`
}

// RoleConfig are the thresholds for finding chains by role.
type RoleConfig struct {
	PeptideMaxLen  int     `mapstructure:"peptide_max_len"`
	PeptideMaxDist float64 `mapstructure:"peptide_max_dist"`
	B2MFrac        float64 `mapstructure:"b2m_frac"`
}

// TrimConfig are the residue cutoffs for trimming receptor chains.
type TrimConfig struct {
	Alpha int `mapstructure:"alpha"`
	Beta  int `mapstructure:"beta"`
}

// Config is the root-level settings struct
type Config struct {
	Align      AlignConfig     `mapstructure:"align"`
	Superpose  fit.Params      `mapstructure:"superpose"`
	Roles      RoleConfig      `mapstructure:"roles"`
	Trim       TrimConfig      `mapstructure:"trim"`
	References role.References `mapstructure:"references"`
	// germline table file, built-in table if empty
	Germline string `mapstructure:"germline"`
	// where log output goes: "" nowhere, "stdout" or a file name
	Log string `mapstructure:"log"`
	// number of files processed at once in directory mode
	Workers int `mapstructure:"workers"`
}

// SetDefaults puts every key in v with its default value. Keys have to
// be known to v before environment variables are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	rp := role.DefaultParams()
	fp := fit.DefaultParams()
	defaults := map[string]any{
		"align.open":             rp.Pnlty.Open,
		"align.widen":            rp.Pnlty.Wdn,
		"align.submat":           "",
		"superpose.match":        fp.Match,
		"superpose.mismatch":     fp.Mismatch,
		"superpose.gap":          fp.Gap,
		"roles.peptide_max_len":  rp.PeptideMaxLen,
		"roles.peptide_max_dist": rp.PeptideMaxDist,
		"roles.b2m_frac":         rp.B2MFrac,
		"trim.alpha":             107,
		"trim.beta":              113,
		"references.alpha":       "",
		"references.beta":        "",
		"references.mhc":         "",
		"references.b2m":         "",
		"germline":               "",
		"log":                    "",
		"workers":                1,
	}
	for k, x := range defaults {
		v.SetDefault(k, x)
	}
}

// New returns a viper with defaults set that also looks at the
// environment.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load unmarshals v and checks the values make sense.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := c.check(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c *Config) check() error {
	var errs []error
	if c.Align.Open < 0 || c.Align.Widen < 0 {
		errs = append(errs, errors.New("gap penalties must not be negative"))
	}
	if c.Superpose.Match <= c.Superpose.Mismatch {
		errs = append(errs, errors.New("superpose match score must beat mismatch"))
	}
	if c.Roles.PeptideMaxLen < 1 {
		errs = append(errs, errors.New("roles.peptide_max_len must be positive"))
	}
	if c.Roles.B2MFrac <= 0 || c.Roles.B2MFrac > 1 {
		errs = append(errs, fmt.Errorf("roles.b2m_frac %g is not in (0,1]", c.Roles.B2MFrac))
	}
	if c.Trim.Alpha < 0 || c.Trim.Beta < 0 {
		errs = append(errs, errors.New("trim cutoffs must not be negative"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("need at least one worker, not %d", c.Workers))
	}
	return errors.Join(errs...)
}

// RoleParams turns the settings into classifier parameters.
func (c *Config) RoleParams() role.Params {
	return role.Params{
		Pnlty:          gotoh.Pnlty{Open: c.Align.Open, Wdn: c.Align.Widen},
		PeptideMaxLen:  c.Roles.PeptideMaxLen,
		PeptideMaxDist: c.Roles.PeptideMaxDist,
		B2MFrac:        c.Roles.B2MFrac,
	}
}

// Classifier builds a chain classifier from the settings.
func (c *Config) Classifier() (*role.Classifier, error) {
	var smat *submat.Submat
	if c.Align.Submat != "" {
		var err error
		if smat, err = submat.Read(c.Align.Submat); err != nil {
			return nil, err
		}
	}
	return role.New(c.References, c.RoleParams(), smat)
}

// Germlines reads the germline table, or gives the built-in one.
func (c *Config) Germlines() (cdr.Tables, error) {
	if c.Germline == "" {
		return cdr.Default()
	}
	return cdr.Read(c.Germline)
}
