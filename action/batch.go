package action

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/andrew-torda/tcrpdb/fit"
	"github.com/andrew-torda/tcrpdb/pdb"
)

// ResultsDir is where directory mode puts its files, under the input
// directory.
const ResultsDir = "Results"

// BatchResult says how one file went.
type BatchResult struct {
	In, Out string
	Err     error
}

// centerOne orients one file into outDir as <name>_center.pdb.
func centerOne(fname, outDir string) BatchResult {
	base := strings.TrimSuffix(filepath.Base(fname), filepath.Ext(fname))
	res := BatchResult{In: fname, Out: filepath.Join(outDir, base+"_center.pdb")}
	s, err := pdb.ReadFile(fname, nil)
	if err != nil {
		res.Err = err
		return res
	}
	o, err := fit.Orient(s)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", fname, err)
		return res
	}
	res.Err = o.Flush(res.Out)
	return res
}

// centerFiles takes file names from a channel until it is closed.
func centerFiles(ch <-chan string, res chan<- BatchResult, wg *sync.WaitGroup, outDir string) {
	defer wg.Done()
	for f := range ch {
		res <- centerOne(f, outDir)
	}
}

// CenterDir orients every *.pdb file in dir and writes the results to
// dir/Results. Files are independent, so nWorker of them are done at
// once. One file failing does not stop the others. Results come back in
// directory order.
func CenterDir(dir string, nWorker int) ([]BatchResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.pdb"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	outDir := filepath.Join(dir, ResultsDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if nWorker < 1 {
		nWorker = 1
	}
	c := make(chan string, len(files))
	res := make(chan BatchResult, len(files))
	for _, f := range files {
		c <- f
	}
	close(c)
	var wg sync.WaitGroup
	for i := 0; i < nWorker; i++ {
		wg.Add(1)
		go centerFiles(c, res, &wg, outDir)
	}
	wg.Wait()
	close(res)

	byName := make(map[string]BatchResult, len(files))
	for r := range res {
		byName[r.In] = r
	}
	results := make([]BatchResult, len(files))
	for i, f := range files {
		results[i] = byName[f]
	}
	return results, nil
}
