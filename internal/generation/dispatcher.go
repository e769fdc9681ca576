package generation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/eventwise/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Report collects what each generator produced. A category is either in
// Items (possibly with an empty list) or in Failed.
type Report struct {
	Items  map[domain.Category][]domain.ContentItem
	Failed map[domain.Category]error
}

// Total returns the number of items across categories.
func (r Report) Total() int {
	return domain.CountItems(r.Items)
}

// Counts returns the item count per category.
func (r Report) Counts() map[domain.Category]int {
	out := make(map[domain.Category]int, len(r.Items))
	for c, items := range r.Items {
		out[c] = len(items)
	}
	return out
}

// FailedCategories lists failed categories in display order.
func (r Report) FailedCategories() []domain.Category {
	var out []domain.Category
	for _, c := range domain.Categories {
		if _, ok := r.Failed[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Dispatcher runs every generator concurrently, each under its own deadline.
// One generator failing never cancels the others.
type Dispatcher struct {
	generators []Generator
	timeout    time.Duration
	logger     *slog.Logger
}

func NewDispatcher(timeout time.Duration, logger *slog.Logger, generators ...Generator) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{generators: generators, timeout: timeout, logger: logger}
}

// Categories lists the categories this dispatcher can produce.
func (d *Dispatcher) Categories() []domain.Category {
	out := make([]domain.Category, 0, len(d.generators))
	for _, g := range d.generators {
		out = append(out, g.Category())
	}
	return out
}

func (d *Dispatcher) Run(ctx context.Context, ec EventContext) Report {
	report := Report{
		Items:  map[domain.Category][]domain.ContentItem{},
		Failed: map[domain.Category]error{},
	}

	var (
		mu sync.Mutex
		eg errgroup.Group
	)
	for _, g := range d.generators {
		eg.Go(func() error {
			gctx := ctx
			if d.timeout > 0 {
				var cancel context.CancelFunc
				gctx, cancel = context.WithTimeout(ctx, d.timeout)
				defer cancel()
			}

			start := time.Now()
			items, err := g.Generate(gctx, ec)
			cat := g.Category()

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[cat] = err
				d.logger.Warn("generator failed",
					"category", cat,
					"duration_ms", time.Since(start).Milliseconds(),
					"error", err,
				)
				return nil
			}
			report.Items[cat] = items
			d.logger.Debug("generator finished",
				"category", cat,
				"items", len(items),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		})
	}
	_ = eg.Wait()
	return report
}
