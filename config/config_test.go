package config_test

import (
	"strings"
	"testing"

	"github.com/andrew-torda/tcrpdb/config"
	"github.com/andrew-torda/tcrpdb/role"
)

func TestDefaults(t *testing.T) {
	c, err := config.Load(config.New())
	if err != nil {
		t.Fatal(err)
	}
	if c.Trim.Alpha != 107 || c.Trim.Beta != 113 || c.Workers != 1 {
		t.Errorf("got %+v", c)
	}
	if c.RoleParams() != role.DefaultParams() {
		t.Errorf("role params %+v", c.RoleParams())
	}
	if c.Superpose.Gap != 100 {
		t.Errorf("superpose %+v", c.Superpose)
	}
	if _, err := c.Classifier(); err != nil {
		t.Error(err)
	}
	tbl, err := c.Germlines()
	if err != nil || len(tbl.Alpha) == 0 {
		t.Errorf("germlines %v %v", tbl, err)
	}
}

func TestFile(t *testing.T) {
	const yml = `
trim:
  alpha: 110
roles:
  peptide_max_dist: 40.5
references:
  b2m: MIQRTPKIQ
`
	v := config.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(yml)); err != nil {
		t.Fatal(err)
	}
	c, err := config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Trim.Alpha != 110 || c.Trim.Beta != 113 {
		t.Errorf("trim %+v", c.Trim)
	}
	if c.Roles.PeptideMaxDist != 40.5 || c.References.B2M != "MIQRTPKIQ" || c.References.MHC != "" {
		t.Errorf("got %+v", c)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("TCRPDB_TRIM_BETA", "99")
	t.Setenv("TCRPDB_WORKERS", "4")
	c, err := config.Load(config.New())
	if err != nil {
		t.Fatal(err)
	}
	if c.Trim.Beta != 99 || c.Workers != 4 {
		t.Errorf("environment ignored: %+v", c)
	}
}

func TestBad(t *testing.T) {
	for k, x := range map[string]any{
		"workers":        0,
		"roles.b2m_frac": 1.5,
		"trim.alpha":     -1,
		"align.open":     -3,
		"superpose.gap":  "lots",
	} {
		v := config.New()
		v.Set(k, x)
		if _, err := config.Load(v); err == nil {
			t.Errorf("%s = %v should fail", k, x)
		}
	}
	v := config.New()
	v.Set("germline", "/no/such/table")
	c, err := config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Germlines(); err == nil {
		t.Error("missing germline file should fail")
	}
}
