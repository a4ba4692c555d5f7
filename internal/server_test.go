package internal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	env := setupServices(t)

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	catalogs := NewCatalogService(env.resolver, nil, metrics, zerolog.Nop())
	recommend := NewRecommendService(env.resolver, catalogs, nil, metrics, zerolog.Nop())

	srv := httptest.NewServer(NewServer(recommend, catalogs, reg, zerolog.Nop(), "").Routes())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServerHealth(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestServerRecommend(t *testing.T) {
	srv := setupServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/recommendations",
		`{"type":"Nature","season":"Summer","budget":"Medium","family_friendly":true,"girls_friendly":true,"top_k":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		RequestID       string `json:"request_id"`
		Recommendations []struct {
			Name  string  `json:"name"`
			Score float64 `json:"score"`
			Type  string  `json:"type"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.NotEmpty(t, body.RequestID)
	require.Len(t, body.Recommendations, 3)
	assert.Equal(t, "Ratti Gali Lake", body.Recommendations[0].Name)
	assert.Equal(t, "Nature", body.Recommendations[0].Type)
	assert.InDelta(t, 1.0, body.Recommendations[0].Score, 1e-12)
	assert.Equal(t, "Hunza", body.Recommendations[1].Name)
	assert.Equal(t, "Naltar Valley", body.Recommendations[2].Name)
}

func TestServerRecommendRequestIDEcho(t *testing.T) {
	srv := setupServer(t)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/recommendations",
		bytes.NewBufferString(`{"type":"Nature","season":"Summer","budget":"Medium"}`))
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc123")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc123", resp.Header.Get("X-Request-ID"))

	var body recommendResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "abc123", body.RequestID)
	assert.Len(t, body.Recommendations, DefaultTopK)
}

func TestServerRecommendUnknownCategory(t *testing.T) {
	srv := setupServer(t)

	resp := postJSON(t, srv.URL+"/api/v1/recommendations",
		`{"type":"Beach","season":"Summer","budget":"Medium"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "type", body.Field)
	assert.Equal(t, "Beach", body.Value)
	assert.Contains(t, body.Error, "known: Adventure, Nature")
}

func TestServerRecommendBadRequests(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"type":`},
		{"unknown field", `{"type":"Nature","season":"Summer","budget":"Medium","color":"red"}`},
		{"missing season", `{"type":"Nature","budget":"Medium"}`},
		{"negative top_k", `{"type":"Nature","season":"Summer","budget":"Medium","top_k":-1}`},
		{"huge top_k", `{"type":"Nature","season":"Summer","budget":"Medium","top_k":1000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/v1/recommendations", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestServerCatalogAndOptions(t *testing.T) {
	srv := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()

	var items []Destination
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&items))
	assert.Len(t, items, 8)

	resp2, err := http.Get(srv.URL + "/api/v1/catalog/options")
	require.NoError(t, err)
	defer resp2.Body.Close()

	var opts map[string][]string
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&opts))
	assert.Equal(t, []string{"Summer", "Spring", "Autumn"}, opts["season"])
}

func TestServerMetrics(t *testing.T) {
	srv := setupServer(t)

	postJSON(t, srv.URL+"/api/v1/recommendations", `{"type":"Nature","season":"Summer","budget":"Medium"}`)
	postJSON(t, srv.URL+"/api/v1/recommendations", `{"type":"Beach","season":"Summer","budget":"Medium"}`)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `wander_recommendations_total{outcome="ok"} 1`)
	assert.Contains(t, text, `wander_recommendations_total{outcome="unknown_category"} 1`)
	assert.Contains(t, text, "wander_catalog_destinations 8")
}
