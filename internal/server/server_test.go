package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivavenkatesh/atomgraph/internal/service"
	"github.com/shivavenkatesh/atomgraph/internal/splitter"
	"github.com/shivavenkatesh/atomgraph/internal/store"
	"github.com/shivavenkatesh/atomgraph/internal/store/sqlite"
	"github.com/shivavenkatesh/atomgraph/pkg/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.New(sqlite.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)

	svc := service.NewService(st, service.DefaultConfig(), nil)
	t.Cleanup(func() { svc.Close() })

	ts := httptest.NewServer(New(svc, Config{}, nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := doJSON(t, http.MethodGet, ts.URL+"/health", nil, &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestServer_Split(t *testing.T) {
	ts := newTestServer(t)

	var resp types.SplitResponse
	status := doJSON(t, http.MethodPost, ts.URL+"/split", types.SplitRequest{Content: "abcd"}, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"abc", "bcd"}, resp.Atoms)
	assert.Equal(t, "ngrams", resp.Strategy)
}

func TestServer_Split_ErrorKinds(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"unknown strategy", types.SplitRequest{Content: "abc", SplitOptions: types.SplitOptions{Strategy: "semantic"}}, http.StatusBadRequest},
		{"strict remainder", types.SplitRequest{Content: "ABCDEFGH", SplitOptions: types.SplitOptions{Strategy: "chunks", Remainder: "strict"}}, http.StatusUnprocessableEntity},
		{"bad remainder name", types.SplitRequest{Content: "abc", SplitOptions: types.SplitOptions{Remainder: "maybe"}}, http.StatusBadRequest},
		{"not json", "{", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			status := doJSON(t, http.MethodPost, ts.URL+"/split", tt.body, &body)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, body["error"])
		})
	}

	resp, err := http.Get(ts.URL + "/split")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_GraphLifecycle(t *testing.T) {
	ts := newTestServer(t)

	var built types.GraphRecord
	status := doJSON(t, http.MethodPost, ts.URL+"/graphs", types.BuildRequest{
		Name:     "pair",
		Payloads: []string{"abcd", "abce"},
	}, &built)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, built.ID)
	assert.Len(t, built.Nodes, 3)

	var got types.GraphRecord
	status = doJSON(t, http.MethodGet, ts.URL+"/graphs/"+built.ID, nil, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, built.Nodes, got.Nodes)
	assert.Equal(t, built.Edges, got.Edges)

	var list struct {
		Graphs []types.GraphSummary `json:"graphs"`
		Total  int                  `json:"total"`
	}
	status = doJSON(t, http.MethodGet, ts.URL+"/graphs?strategy=ngrams&limit=10", nil, &list)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, "pair", list.Graphs[0].Name)
	assert.Equal(t, 3, list.Graphs[0].NodeCount)

	var stats types.StatsResponse
	status = doJSON(t, http.MethodGet, ts.URL+"/stats", nil, &stats)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, stats.TotalGraphs)

	var deleted map[string]bool
	status = doJSON(t, http.MethodDelete, ts.URL+"/graphs/"+built.ID, nil, &deleted)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, deleted["deleted"])

	var missing map[string]string
	status = doJSON(t, http.MethodGet, ts.URL+"/graphs/"+built.ID, nil, &missing)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Graphs_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := doJSON(t, http.MethodPost, ts.URL+"/graphs", types.BuildRequest{}, &body)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodGet, ts.URL+"/graphs?limit=-1", nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodGet, ts.URL+"/graphs/", nil, &body)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestServer_Strategies(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Strategies []string `json:"strategies"`
		Default    string   `json:"default"`
	}
	status := doJSON(t, http.MethodGet, ts.URL+"/strategies", nil, &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, splitter.Strategies(), body.Strategies)
	assert.Equal(t, splitter.DefaultStrategy, body.Default)
}

func TestServer_CORS(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/split", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{splitter.ErrNilPayload, http.StatusBadRequest},
		{&splitter.UnknownStrategyError{Name: "x"}, http.StatusBadRequest},
		{&splitter.MalformedPayloadError{Strategy: "chunks"}, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrapped: %w", store.ErrNotFound), http.StatusNotFound},
		{context.Canceled, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
