package scoring

import (
	"context"
	"fmt"

	"github.com/okian/fest/internal/domain/model"
)

// PointsWriter persists a recomputed point value.
type PointsWriter interface {
	WritePoints(ctx context.Context, id string, points int) error
}

// PointsWriterFunc adapts a function to PointsWriter.
type PointsWriterFunc func(ctx context.Context, id string, points int) error

// WritePoints calls f.
func (f PointsWriterFunc) WritePoints(ctx context.Context, id string, points int) error {
	return f(ctx, id, points)
}

// RecalcReport summarizes a recalculation pass.
type RecalcReport struct {
	Scanned   int      `json:"scanned"`
	Updated   int      `json:"updated"`
	Unchanged int      `json:"unchanged"`
	Failed    int      `json:"failed"`
	FailedIDs []string `json:"failedIds,omitempty"`
}

// Recalculate recomputes every placement and writes only those whose stored
// points differ. A failed write is counted and the pass continues. The pass
// stops early when ctx is done.
func (e *Engine) Recalculate(ctx context.Context, records []model.Placement, w PointsWriter) (RecalcReport, error) {
	var rep RecalcReport
	for _, p := range records {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("recalculate: %w", err)
		}
		rep.Scanned++
		pts := e.Points(p)
		if pts == p.Points {
			rep.Unchanged++
			continue
		}
		if err := w.WritePoints(ctx, p.ID, pts); err != nil {
			rep.Failed++
			rep.FailedIDs = append(rep.FailedIDs, p.ID)
			continue
		}
		rep.Updated++
	}
	return rep, nil
}

// Recalculate runs a pass with the default engine.
func Recalculate(ctx context.Context, records []model.Placement, w PointsWriter) (RecalcReport, error) {
	return NewEngine().Recalculate(ctx, records, w)
}
