package batch

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/finplanner/internal/export"
	"github.com/sells-group/finplanner/internal/model"
)

// Planner computes one plan. *service.PlanService satisfies it.
type Planner interface {
	Preview(ctx context.Context, p model.UserProfile, goals []model.Goal) (model.PlanResult, error)
}

// Result summarizes a batch run.
type Result struct {
	Rows      []export.SummaryRow // same order as the input
	Succeeded int
	Failed    int
}

// Run plans every row with up to concurrency workers. Row failures are
// recorded on their SummaryRow and logged; only context cancellation stops
// the run early.
func Run(ctx context.Context, p Planner, rows []Row, concurrency int) (*Result, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	out := make([]export.SummaryRow, len(rows))
	var failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			out[i] = export.SummaryRow{UserID: row.UserID}
			if row.Err != nil {
				out[i].Err = row.Err
				failed.Add(1)
				zap.L().Warn("batch: skipping row", zap.Int("line", row.Line), zap.Error(row.Err))
				return nil
			}

			plan, err := p.Preview(gctx, row.Profile, row.Goals)
			if err != nil {
				out[i].Err = err
				failed.Add(1)
				zap.L().Warn("batch: plan failed", zap.String("user_id", row.UserID), zap.Error(err))
				return nil
			}
			out[i].Plan = &plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n := int(failed.Load())
	zap.L().Info("batch: complete",
		zap.Int("rows", len(rows)),
		zap.Int("succeeded", len(rows)-n),
		zap.Int("failed", n),
	)
	return &Result{Rows: out, Succeeded: len(rows) - n, Failed: n}, nil
}
