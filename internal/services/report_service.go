package services

import (
	"context"
	"fmt"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/metrics"
	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/report"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
)

// Report is a generated logistics report and the data it was written from
type Report struct {
	Text        string         `json:"report"`
	Summary     report.Summary `json:"summary"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// ReportService produces the admin logistics report
type ReportService interface {
	Generate(ctx context.Context, actor models.Actor) (*Report, error)
}

type reportService struct {
	orders    repository.OrderRepository
	generator report.Generator
	now       func() time.Time
}

// NewReportService creates a report service. A nil generator makes every
// request fail with ErrReportUnavailable.
func NewReportService(orders repository.OrderRepository, generator report.Generator) ReportService {
	return &reportService{orders: orders, generator: generator, now: time.Now}
}

func (s *reportService) Generate(ctx context.Context, actor models.Actor) (out *Report, err error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can generate reports", models.ErrNotPermitted)
	}
	defer func() { metrics.RecordOrderOperation(metrics.OpReport, err == nil) }()

	if s.generator == nil {
		return nil, fmt.Errorf("%w: no report generator configured", models.ErrReportUnavailable)
	}

	orders, err := s.orders.List(ctx, models.OrderFilter{Limit: report.WindowSize})
	if err != nil {
		return nil, err
	}
	now := s.now()
	summary := report.Summarize(orders, now)

	text, err := s.generator.Generate(ctx, summary)
	if err != nil {
		log.WithError(err).Error("Report generation failed")
		return nil, fmt.Errorf("%w: %v", models.ErrReportUnavailable, err)
	}
	return &Report{Text: text, Summary: summary, GeneratedAt: now}, nil
}
