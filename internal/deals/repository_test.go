package deals

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealfunnel/internal/external/backend"
	"github.com/wonny/dealfunnel/pkg/config"
	"github.com/wonny/dealfunnel/pkg/httputil"
	"github.com/wonny/dealfunnel/pkg/logger"
	"github.com/wonny/dealfunnel/pkg/metrics"
)

func newRepo(t *testing.T, handler http.HandlerFunc, m *metrics.Metrics) *Repository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{Backend: config.BackendConfig{BaseURL: server.URL, Timeout: time.Second}}
	client := backend.NewClient(httputil.New(cfg, logger.Nop()), server.URL, logger.Nop())
	return NewRepository(client, logger.Nop(), m)
}

func TestGetDealsPreservesOrder(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deals/%D0%9C%D0%A1%D0%9A", r.URL.EscapedPath())
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("date"))
		w.Write([]byte(`[
			{"id":2,"name":"Б","summa":200,"timestamp":"2024-01-01 09:30:00"},
			{"id":1,"name":"А","summa":"150.50","timestamp":"2024-01-01T08:00:00Z"}
		]`))
	}, nil)

	got := repo.GetDeals(context.Background(), "МСК", "2024-01-01")
	require.Len(t, got, 2)
	assert.Equal(t, "Б", got[0].Name)
	assert.Equal(t, "А", got[1].Name)
	assert.True(t, got[1].Summa.Equal(decimal.RequireFromString("150.50")))
	assert.Equal(t, 9, got[0].Timestamp.Hour())
}

func TestGetDealsEmpty(t *testing.T) {
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}, nil)

	got := repo.GetDeals(context.Background(), "МСК", "2024-01-01")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetDealsNeverCaches(t *testing.T) {
	var hits int32
	repo := newRepo(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte(`[]`))
	}, nil)

	repo.GetDeals(context.Background(), "МСК", "2024-01-01")
	repo.GetDeals(context.Background(), "МСК", "2024-01-01")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestGetDealsFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			kind: "network",
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"deals":`))
			},
			kind: "malformed",
		},
		{
			name: "bad timestamp",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`[{"name":"А","summa":1,"timestamp":"yesterday"}]`))
			},
			kind: "malformed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			repo := newRepo(t, tt.handler, m)

			got := repo.GetDeals(context.Background(), "МСК", "2024-01-01")
			assert.NotNil(t, got)
			assert.Empty(t, got)

			expected := `
# HELP dealfunnel_backend_fetch_failures_total Failed backend fetches by endpoint and error kind.
# TYPE dealfunnel_backend_fetch_failures_total counter
dealfunnel_backend_fetch_failures_total{endpoint="deals",kind="` + tt.kind + `"} 1
`
			assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "dealfunnel_backend_fetch_failures_total"))
		})
	}
}
