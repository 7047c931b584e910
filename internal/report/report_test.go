package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-food-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id string, status models.OrderStatus, total int64, created time.Time) models.Order {
	return models.Order{
		ID:                  id,
		Status:              status,
		TotalPrice:          total,
		DeliveryDestination: "Block 4",
		CreatedAt:           created,
		LineItems: []models.OrderLine{
			{CartLine: models.CartLine{ItemConfiguration: models.ItemConfiguration{Quantity: 2}}},
			{CartLine: models.CartLine{ItemConfiguration: models.ItemConfiguration{Quantity: 1}}},
		},
		StatusHistory: []models.StatusEntry{{Status: status, At: created}},
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	orders := []models.Order{
		order("order-aaaaaa", models.StatusPending, 450, now.Add(-10*time.Minute)),
		order("order-bbbbbb", models.StatusDelivered, 330, now.Add(-time.Hour)),
		order("order-cccccc", models.StatusDelivered, 200, now.Add(-2*time.Hour)),
		order("order-dddddd", models.StatusCancelled, 999, now.Add(-3*time.Hour)),
		order("order-eeeeee", models.StatusOutForDelivery, 100, now.Add(-5*time.Minute)),
	}

	s := Summarize(orders, now)

	assert.Equal(t, 5, s.OrderCount)
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 2, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
	assert.Equal(t, int64(530), s.Revenue)
	assert.Equal(t, 2, s.ByStatus[models.StatusDelivered])
	assert.Equal(t, 0, s.ByStatus[models.StatusPreparing])
	require.Len(t, s.Orders, 5)
	assert.Equal(t, "AAAAAA", s.Orders[0].ShortID)
	assert.Equal(t, 3, s.Orders[0].Items)
	assert.Equal(t, 10, s.Orders[0].MinutesInStatus)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, time.Now())
	assert.Equal(t, 0, s.OrderCount)
	assert.NotNil(t, s.Orders)
	assert.Len(t, s.ByStatus, len(models.OrderStatuses))
}

func TestOpenAIGenerator(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Throughput is steady.  "}, "finish_reason": "stop"}]
		}`))
	}))
	defer server.Close()

	gen := NewOpenAIGenerator("test-key", "test-model", WithBaseURL(server.URL+"/"))
	text, err := gen.Generate(context.Background(), Summarize(nil, time.Now()))

	require.NoError(t, err)
	assert.Equal(t, "Throughput is steady.", text)
	assert.Equal(t, "test-model", received["model"])
	messages, ok := received["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestOpenAIGeneratorSurfacesErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": {"message": "overloaded", "type": "server_error"}}`))
	}))
	defer server.Close()

	gen := NewOpenAIGenerator("test-key", "test-model", WithBaseURL(server.URL))
	_, err := gen.Generate(context.Background(), Summarize(nil, time.Now()))
	assert.Error(t, err)
}

func TestOpenAIGeneratorRejectsEmptyReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	gen := NewOpenAIGenerator("test-key", "test-model", WithBaseURL(server.URL))
	_, err := gen.Generate(context.Background(), Summarize(nil, time.Now()))
	assert.Error(t, err)
}
