package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/isdelr/leadgate-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// DefaultPageSize is the number of properties requested per page.
const DefaultPageSize = 100

// reportTimeout bounds the session report sent after a run, which must go out
// even when the run itself was cancelled.
const reportTimeout = 15 * time.Second

// Reporter records the outcome of a run with the backend.
type Reporter interface {
	ReportSession(ctx context.Context, dataCount int, status models.SessionStatus) error
}

// Result describes a finished run.
type Result struct {
	Count int
	Pages int
	Path  string
}

// Pipeline pulls every page from a PageSource, keeps unique wireless numbers
// and exports them as CSV.
type Pipeline struct {
	source    PageSource
	reporter  Reporter
	limiter   *rate.Limiter
	pageSize  int
	outputDir string
}

// NewPipeline creates a Pipeline. Fetches are spaced at least pageDelay apart.
func NewPipeline(source PageSource, reporter Reporter, pageSize int, pageDelay time.Duration, outputDir string) *Pipeline {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	limit := rate.Inf
	if pageDelay > 0 {
		limit = rate.Every(pageDelay)
	}
	return &Pipeline{
		source:    source,
		reporter:  reporter,
		limiter:   rate.NewLimiter(limit, 1),
		pageSize:  pageSize,
		outputDir: outputDir,
	}
}

// IsWireless reports whether a phone entry qualifies for export: type must be
// exactly "W" and the carrier name must mention "wireless" in any case.
func IsWireless(ph PhoneNumber) bool {
	return ph.Type == "W" && strings.Contains(strings.ToLower(ph.Carrier), "wireless")
}

// Run performs one extraction. Every run reports exactly one session: a
// failed run reports zero leads and leaves no file behind.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	rows, pages, err := p.collect(ctx)
	var path string
	if err == nil {
		path, err = p.export(rows)
	}

	if err != nil {
		log.Error().Err(err).Int("pages", pages).Msg("Extraction failed")
		if rerr := p.report(ctx, 0, models.SessionFailed); rerr != nil {
			return Result{Pages: pages}, errors.Join(err, fmt.Errorf("session log failed: %w", rerr))
		}
		return Result{Pages: pages}, err
	}

	result := Result{Count: len(rows), Pages: pages, Path: path}
	log.Info().Int("leads", result.Count).Int("pages", pages).Str("path", path).Msg("Extraction finished")
	if err := p.report(ctx, result.Count, models.SessionCompleted); err != nil {
		return result, fmt.Errorf("export written but session log failed: %w", err)
	}
	return result, nil
}

func (p *Pipeline) collect(ctx context.Context) ([]Row, int, error) {
	seen := make(map[string]struct{})
	var rows []Row

	for page := 1; ; page++ {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, page - 1, err
		}

		props, err := p.source.FetchPage(ctx, page, p.pageSize)
		if err != nil {
			return nil, page - 1, fmt.Errorf("page %d: %w", page, err)
		}
		log.Debug().Int("page", page).Int("properties", len(props)).Msg("Fetched leads page")

		for _, prop := range props {
			for _, ph := range prop.PhoneNumbers {
				if !IsWireless(ph) {
					continue
				}
				for _, num := range ph.Contact.Phones() {
					if num == "" {
						continue
					}
					if _, dup := seen[num]; dup {
						continue
					}
					seen[num] = struct{}{}
					rows = append(rows, Row{
						Street:    prop.Address,
						City:      prop.City,
						State:     prop.State,
						Zip:       prop.Zip,
						Phone:     num,
						FirstName: ph.Contact.GivenName,
						LastName:  ph.Contact.Surname,
					})
				}
			}
		}

		if len(props) < p.pageSize {
			return rows, page, nil
		}
	}
}

// export writes to a temporary file first so a failed write leaves nothing behind.
func (p *Pipeline) export(rows []Row) (string, error) {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(p.outputDir, ".leads-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, rows); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	path := filepath.Join(p.outputDir, FileName(len(rows)))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to finalise export: %w", err)
	}
	return path, nil
}

func (p *Pipeline) report(ctx context.Context, count int, status models.SessionStatus) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
	defer cancel()
	return p.reporter.ReportSession(ctx, count, status)
}
