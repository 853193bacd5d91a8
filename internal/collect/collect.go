// Package collect runs archive reading and failure extraction over a batch
// of archives.
package collect

import (
	"context"
	"errors"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dkoosis/faildiff/internal/archive"
	"github.com/dkoosis/faildiff/internal/logging"
	"github.com/dkoosis/faildiff/pkg/failure"
	"github.com/dkoosis/faildiff/pkg/junit"
)

// ErrNoData means no archive in the batch could be read. Callers must treat
// it as "no data", never as "zero failures".
var ErrNoData = errors.New("no readable archives")

// Options configures a batch run. Zero values select defaults.
type Options struct {
	Reader    *archive.Reader
	Extractor *junit.Extractor
	Workers   int
	Log       *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.Reader == nil {
		o.Reader = archive.NewReader()
	}
	if o.Extractor == nil {
		o.Extractor = junit.NewExtractor(nil)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Log == nil {
		o.Log = logging.Discard()
	}
	return o
}

// ArchiveResult is the outcome for one input archive.
type ArchiveResult struct {
	Path      string
	Origin    string
	Records   []failure.Record
	Entries   int     // report entries read
	Malformed int     // testcase blocks that could not be matched
	Err       error   // non-nil when the archive itself could not be opened
	EntryErrs []error // one per skipped entry
}

// Result is the outcome of a batch.
type Result struct {
	// Records holds every archive's records, archives in input order and
	// records in document order within each archive.
	Records  []failure.Record
	Archives []ArchiveResult
	// Warnings collects every archive and entry failure, or is nil.
	Warnings error
}

// Readable returns how many archives could be opened.
func (r *Result) Readable() int {
	n := 0
	for _, a := range r.Archives {
		if a.Err == nil {
			n++
		}
	}
	return n
}

// Run extracts failures from every archive in paths. Archives are processed
// concurrently; results are concatenated in input order once all finish.
// A bad archive or entry becomes a warning. When no archive is readable the
// result is returned together with ErrNoData.
func Run(ctx context.Context, paths []string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := &Result{Archives: make([]ArchiveResult, len(paths))}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res.Archives[i] = Archive(path, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var warnings *multierror.Error
	for _, a := range res.Archives {
		res.Records = append(res.Records, a.Records...)
		if a.Err != nil {
			warnings = multierror.Append(warnings, a.Err)
		}
		warnings = multierror.Append(warnings, a.EntryErrs...)
	}
	res.Warnings = warnings.ErrorOrNil()

	if res.Readable() == 0 {
		return res, ErrNoData
	}
	return res, nil
}

// Archive extracts failures from a single archive. Open and entry failures
// are recorded on the result, not returned.
func Archive(path string, opts Options) ArchiveResult {
	opts = opts.withDefaults()
	log := opts.Log.WithField("archive", path)
	out := ArchiveResult{Path: path}

	a, err := opts.Reader.Open(path)
	if err != nil {
		log.WithError(err).Warn("skipping archive")
		out.Err = err
		return out
	}
	defer a.Close()
	out.Origin = a.Name()

	log.Debug("processing archive")
	for entry, err := range a.Entries() {
		if err != nil {
			log.WithField("entry", entry.Name).WithError(err).Warn("skipping entry")
			out.EntryErrs = append(out.EntryErrs, err)
			continue
		}
		out.Entries++
		records, stats := opts.Extractor.Extract(entry.Text, out.Origin)
		if stats.Malformed > 0 {
			log.WithField("entry", entry.Name).Debugf("%d malformed testcase block(s) skipped", stats.Malformed)
		}
		out.Malformed += stats.Malformed
		out.Records = append(out.Records, records...)
	}
	log.WithField("issues", len(out.Records)).Debug("archive done")
	return out
}
