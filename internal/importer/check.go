package importer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	ontoerrors "github.com/Aman-CERP/ontosearch/internal/errors"
	"github.com/Aman-CERP/ontosearch/internal/metadata"
)

// CheckResult is the outcome of a dry run of one importer.
type CheckResult struct {
	Importer string
	Records  int
	Skipped  bool // the importer handles none of the enabled types
	Elapsed  time.Duration
	Err      error
}

// Check runs every registered importer against doc without touching a store
// and reports what each produced. Importers run concurrently, at most limit at
// a time (limit <= 0 means runtime.NumCPU()). Results are in registration
// order. A failing or panicking importer is reported in its CheckResult; the
// returned error is only set when ctx ends first.
func (m *Manager) Check(ctx context.Context, doc Document, types metadata.TypeSet, limit int) ([]CheckResult, error) {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	imps := m.Importers()
	results := make([]CheckResult, len(imps))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, imp := range imps {
		results[i].Importer = imp.Name()
		if !imp.Handles(types) {
			results[i].Skipped = true
			continue
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			n, err := dryRun(imp, doc, types)
			results[i].Records = n
			results[i].Err = err
			results[i].Elapsed = time.Since(start)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func dryRun(imp Importer, doc Document, types metadata.TypeSet) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = ontoerrors.New(ontoerrors.ErrCodeImporterFailed, "importer panicked", fmt.Errorf("%v", r)).
				WithDetail("importer", imp.Name())
		}
	}()

	records, err := imp.Import(doc, types)
	if err != nil {
		return 0, ontoerrors.New(ontoerrors.ErrCodeImporterFailed, "importer failed", err).
			WithDetail("importer", imp.Name())
	}
	for _, r := range records {
		if types.Contains(r.Type()) {
			n++
		}
	}
	return n, nil
}
