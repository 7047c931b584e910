package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/franciscosanchezn/gin-food-api/internal/report"
	"github.com/franciscosanchezn/gin-food-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	got  report.Summary
	text string
	err  error
}

func (g *stubGenerator) Generate(_ context.Context, summary report.Summary) (string, error) {
	g.got = summary
	return g.text, g.err
}

func TestReportCoversLatestOrders(t *testing.T) {
	ctx := context.Background()
	orders := repository.NewMemoryOrderRepository()
	svc := NewOrderService(orders, seededCatalog(t, doubleBurger()), newEngine(), nil)
	lines := []models.CartLine{{ItemConfiguration: models.ItemConfiguration{FoodID: "b2"}}}
	for i := 0; i < report.WindowSize+5; i++ {
		_, err := svc.CreateOrder(ctx, "u1", lines, validDelivery(), validPayment())
		require.NoError(t, err)
	}

	gen := &stubGenerator{text: "All quiet."}
	reports := NewReportService(orders, gen)

	_, err := reports.Generate(ctx, customer)
	assert.ErrorIs(t, err, models.ErrNotPermitted)

	out, err := reports.Generate(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "All quiet.", out.Text)
	assert.Equal(t, report.WindowSize, gen.got.OrderCount)
	assert.Equal(t, report.WindowSize, out.Summary.Active)
	assert.False(t, out.GeneratedAt.IsZero())
}

func TestReportFailuresAreUnavailable(t *testing.T) {
	ctx := context.Background()
	orders := repository.NewMemoryOrderRepository()

	_, err := NewReportService(orders, nil).Generate(ctx, admin)
	assert.ErrorIs(t, err, models.ErrReportUnavailable)

	_, err = NewReportService(orders, &stubGenerator{err: errTransportDown}).Generate(ctx, admin)
	assert.ErrorIs(t, err, models.ErrReportUnavailable)
}
