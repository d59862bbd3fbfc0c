package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mstovari/framstore/pkg/device"
	"github.com/mstovari/framstore/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	s, err := store.New(device.NewMemDevice(8*1024), store.Config{
		Base:        0x0200,
		Slots:       2,
		Version:     1,
		PayloadSize: 4,
	})
	require.NoError(t, err)

	return NewServer(s, zap.NewNop(), prometheus.NewRegistry())
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	return rec, resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestGetRecordNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := doJSON(t, srv, http.MethodGet, "/api/v1/record", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
}

func TestPutThenGetRecord(t *testing.T) {
	srv := newTestServer(t)

	payload := []byte{1, 2, 3, 4}

	rec, resp := doJSON(t, srv, http.MethodPut, "/api/v1/record",
		RecordRequest{Payload: payload})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = doJSON(t, srv, http.MethodGet, "/api/v1/record", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var got RecordResponse
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, payload, got.Payload)
}

func TestPutRecordWrongSize(t *testing.T) {
	srv := newTestServer(t)

	rec, resp := doJSON(t, srv, http.MethodPut, "/api/v1/record",
		RecordRequest{Payload: []byte{1, 2}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, resp.Success)
}

func TestDeferredAndFlush(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/v1/record/deferred",
		RecordRequest{Payload: []byte{9, 9, 9, 9}})
	require.Equal(t, http.StatusAccepted, rec.Code)

	// Deferred only: not on media yet.
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/v1/record", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/v1/flush", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/v1/record", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatus(t *testing.T) {
	srv := newTestServer(t)

	_, resp := doJSON(t, srv, http.MethodGet, "/api/v1/status", nil)
	require.True(t, resp.Success)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(data, &status))

	assert.NotEmpty(t, status.ID)
	assert.False(t, status.Dirty)
	assert.Equal(t, 2, status.Slots)
	assert.Equal(t, 4, status.PayloadSize)
	assert.Equal(t, uint32(0x0200), status.BaseAddress)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
