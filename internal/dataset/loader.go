package dataset

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/value-bot/internal/fetcher"
	"github.com/sells-group/value-bot/internal/model"
)

// Format names the encoding of the remote sheet.
type Format string

// Supported sheet formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// DefaultTimeout bounds a single fetch-and-parse.
const DefaultTimeout = 15 * time.Second

// maxSheetRows caps a CSV export so a wrong URL cannot fill memory.
const maxSheetRows = 100_000

// Source hands out the dataset, loading it on first use.
type Source interface {
	GetOrLoad(ctx context.Context) (*model.Dataset, error)
}

// Options configures a Loader.
type Options struct {
	URL     string
	Format  Format
	Sheet   string // xlsx sheet name, or the json field holding the rows; empty means the first sheet or a bare array
	Timeout time.Duration
}

// Loader fetches the sheet once and keeps the first successful result for
// the life of the process. Failed loads are not remembered, so the next call
// tries again. Concurrent callers share a single in-flight fetch.
type Loader struct {
	fetcher fetcher.Fetcher
	opts    Options
	group   singleflight.Group
	cached  atomic.Pointer[model.Dataset]
}

// NewLoader creates a Loader reading from opts.URL through f.
func NewLoader(f fetcher.Fetcher, opts Options) *Loader {
	if opts.Format == "" {
		opts.Format = FormatCSV
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Loader{fetcher: f, opts: opts}
}

// Cached returns the published dataset, if any.
func (l *Loader) Cached() (*model.Dataset, bool) {
	ds := l.cached.Load()
	return ds, ds != nil
}

// GetOrLoad returns the cached dataset or loads it. Every failure, including
// ctx expiring while waiting on another caller's fetch, is reported as a
// model.KindDataUnavailable error.
func (l *Loader) GetOrLoad(ctx context.Context) (*model.Dataset, error) {
	if ds := l.cached.Load(); ds != nil {
		return ds, nil
	}

	ch := l.group.DoChan("dataset", func() (any, error) {
		if ds := l.cached.Load(); ds != nil {
			return ds, nil
		}
		// The fetch outlives the caller that started it; other waiters may
		// still want the result.
		ds, err := l.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if !l.cached.CompareAndSwap(nil, ds) {
			return l.cached.Load(), nil
		}
		return ds, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, model.DataUnavailable(res.Err)
		}
		return res.Val.(*model.Dataset), nil
	case <-ctx.Done():
		return nil, model.DataUnavailable(eris.Wrap(ctx.Err(), "dataset: wait for load"))
	}
}

func (l *Loader) load(ctx context.Context) (*model.Dataset, error) {
	log := zap.L().With(zap.String("url", l.opts.URL), zap.String("format", string(l.opts.Format)))
	if l.opts.URL == "" {
		return nil, eris.New("dataset: no url configured")
	}

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	start := time.Now()
	log.Info("dataset: fetching sheet")

	ds, err := l.fetchAndDecode(ctx)
	if err != nil {
		log.Error("dataset: load failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, err
	}

	log.Info("dataset: loaded",
		zap.Int("items", ds.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}

func (l *Loader) fetchAndDecode(ctx context.Context) (*model.Dataset, error) {
	body, err := l.fetcher.Download(ctx, l.opts.URL)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: fetch")
	}
	defer body.Close() //nolint:errcheck

	return Decode(ctx, body, l.opts.Format, l.opts.Sheet)
}

// Decode parses a sheet in the given format.
func Decode(ctx context.Context, r io.Reader, format Format, sheet string) (*model.Dataset, error) {
	switch format {
	case FormatCSV, "":
		rows, err := fetcher.ReadCSV(ctx, r, fetcher.CSVOptions{MaxRows: maxSheetRows})
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode csv")
		}
		return FromRows(rows)
	case FormatXLSX:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: read xlsx")
		}
		rows, err := fetcher.ReadXLSXBinary(data, fetcher.XLSXOptions{SheetName: sheet})
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode xlsx")
		}
		return FromRows(rows)
	case FormatJSON:
		records, err := fetcher.ReadJSONArray[map[string]any](ctx, r, sheet)
		if err != nil {
			return nil, eris.Wrap(err, "dataset: decode json")
		}
		return FromRecords(records)
	default:
		return nil, eris.Errorf("dataset: unsupported format %q", format)
	}
}
