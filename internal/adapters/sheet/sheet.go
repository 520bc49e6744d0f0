// Package sheet reads registrations from a published spreadsheet CSV export.
package sheet

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/okian/fest/internal/domain/normalize"
	"github.com/okian/fest/internal/domain/participant"
	"github.com/okian/fest/pkg/logger"
	"github.com/okian/fest/pkg/metrics"
)

// CacheBustParam is appended to every request so intermediaries never serve
// a stale export.
const CacheBustParam = "_cb"

// Fetcher downloads and parses the spreadsheet.
type Fetcher struct {
	url     string
	client  *http.Client
	timeout time.Duration
	aliases normalize.AliasTable
	log     logger.Logger
	now     func() time.Time
	group   singleflight.Group
}

// New creates a Fetcher for rawURL.
func New(rawURL string, opts ...Option) *Fetcher {
	f := &Fetcher{
		url:     strings.TrimSpace(rawURL),
		client:  http.DefaultClient,
		timeout: 10 * time.Second,
		aliases: normalize.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = logger.Named("sheet")
	}
	return f
}

// Configured reports whether a URL was supplied.
func (f *Fetcher) Configured() bool { return f.url != "" }

// FetchRows downloads the CSV and returns one Row per non-empty data line.
// Concurrent callers share a single request, which is bounded by the fetch
// timeout rather than by any one caller's context.
func (f *Fetcher) FetchRows(ctx context.Context) ([]normalize.Row, error) {
	if !f.Configured() {
		return nil, ErrNoURL
	}
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan("rows", func() (any, error) {
		return f.fetch(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			f.log.Debug(ctx, "shared in-flight sheet fetch")
		}
		return res.Val.([]normalize.Row), nil
	}
}

// FetchRecords downloads the CSV and maps each row to an imported record.
func (f *Fetcher) FetchRecords(ctx context.Context) ([]participant.Record, error) {
	rows, err := f.FetchRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]participant.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, participant.FromRow(f.aliases, row))
	}
	return out, nil
}

func (f *Fetcher) fetch(ctx context.Context) (rows []normalize.Row, err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeError
		}
		_ = metrics.RecordSheetFetch(outcome, time.Since(start), len(rows))
	}()

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	target, err := f.bustedURL()
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("sheet: build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheet: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	rows, err = Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	f.log.Info(ctx, "sheet fetched",
		logger.Int("rows", len(rows)),
		logger.Duration("took", time.Since(start)),
	)
	return rows, nil
}

func (f *Fetcher) bustedURL() (string, error) {
	u, err := url.Parse(f.url)
	if err != nil {
		return "", fmt.Errorf("sheet: parse url: %w", err)
	}
	q := u.Query()
	q.Set(CacheBustParam, strconv.FormatInt(f.now().UnixNano(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Parse reads CSV text with a header row. A UTF-8 byte order mark is
// dropped, lines with only blank cells are skipped, and when a header
// repeats the first non-empty value wins.
func Parse(r io.Reader) ([]normalize.Row, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	cr := csv.NewReader(dec)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("sheet: read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []normalize.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sheet: read row %d: %w", len(rows)+2, err)
		}
		row := make(normalize.Row, len(header))
		blank := true
		for i, cell := range rec {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell != "" {
				blank = false
			}
			if prev, ok := row[header[i]]; ok && prev != "" {
				continue
			}
			row[header[i]] = cell
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
