// Go to a pdb website and download coordinates in the old fixed column
// format. The point is to return a reader that can be used like the file
// readers, and a helper that saves the entry to a file.

package pdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/andrew-torda/tcrpdb/pdb/zwrap"
)

// Site is somewhere that serves entries. The url is Base + code + Suffix.
type Site struct {
	Base    string
	Prefix  string // goes in front of the code, like "pdb" at the EBI
	Suffix  string
	Gzipped bool
}

// Sites are the archives we know about.
var Sites = []Site{
	{"https://files.rcsb.org/download/", "", ".pdb.gz", true},
	{"https://www.ebi.ac.uk/pdbe/entry-files/download/", "pdb", ".ent", false},
	{"https://ftp.pdbj.org/pub/pdb/data/structures/all/pdb/", "pdb", ".ent.gz", true},
}

// Fetch is given a four letter pdb code and a site. It returns the body,
// already decompressed if the site sends gzipped data. If siteNum is too
// big we wrap it around rather than complain, so callers can cycle through
// them.
func Fetch(ctx context.Context, client *http.Client, acqCode string, siteNum int) (io.ReadCloser, error) {
	if len(acqCode) != 4 {
		return nil, errors.New("acq code should be four char, not " + acqCode)
	}
	if client == nil {
		client = http.DefaultClient
	}
	site := Sites[siteNum%len(Sites)]
	url := site.Base + site.Prefix + strings.ToLower(acqCode) + site.Suffix
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.New("Wanted " + acqCode + " using " + url + ", got " + resp.Status)
	}
	if !site.Gzipped {
		return resp.Body, nil
	}
	zr, err := zwrap.Wrap(resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, err
	}
	return zr, nil
}

// FetchToFile downloads an entry and writes it to fname.
func FetchToFile(ctx context.Context, client *http.Client, acqCode string, siteNum int, fname string) error {
	rdr, err := Fetch(ctx, client, acqCode, siteNum)
	if err != nil {
		return err
	}
	defer rdr.Close()
	fp, err := os.Create(fname)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fp, rdr); err != nil {
		fp.Close()
		return fmt.Errorf("saving %s to %s: %w", acqCode, fname, err)
	}
	return fp.Close()
}
