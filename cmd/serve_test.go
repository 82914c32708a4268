package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/value-bot/internal/bot"
	"github.com/sells-group/value-bot/internal/lookup"
	"github.com/sells-group/value-bot/internal/model"
)

func serveRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v))
}

func TestBuildRouter_Health(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	rr := serveRequest(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	decodeBody(t, rr, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_ReadyAfterLoad(t *testing.T) {
	env := newTestApp(t, http.StatusOK, testSheet)
	h := buildRouter(env, serverOptions{})

	rr := serveRequest(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	env.Service.Warm(context.Background())

	rr = serveRequest(t, h, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	decodeBody(t, rr, &body)
	assert.Equal(t, "ready", body["status"])
	assert.InDelta(t, 5, body["items"], 0)
}

func TestBuildRouter_Message(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	rr := serveRequest(t, h, http.MethodPost, "/api/v1/messages", bot.Message{Author: "a", Content: "f!value silver bar"})
	require.Equal(t, http.StatusOK, rr.Code)
	var reply bot.Reply
	decodeBody(t, rr, &reply)
	assert.Equal(t, "Silver Bar", reply.Title)

	rr = serveRequest(t, h, http.MethodPost, "/api/v1/messages", bot.Message{Author: "a", Content: "just chatting"})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestBuildRouter_MessageInvalidBody(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request body")
}

func TestBuildRouter_Item(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	rr := serveRequest(t, h, http.MethodGet, "/api/v1/items/"+url.PathEscape("gold bar"), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var res model.MatchResult
	decodeBody(t, rr, &res)
	require.NotNil(t, res.Item)
	assert.Equal(t, "Gold Bar", res.Item.Name)
	assert.Equal(t, 100, res.Score)
}

func TestBuildRouter_ItemNotFound(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	rr := serveRequest(t, h, http.MethodGet, "/api/v1/items/qqqqqqq", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var body map[string]any
	decodeBody(t, rr, &body)
	assert.Equal(t, "item_not_found", body["kind"])
	assert.Equal(t, "qqqqqqq", body["item"])
	assert.Contains(t, body, "score")
}

func TestBuildRouter_Trade(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	rr := serveRequest(t, h, http.MethodPost, "/api/v1/trades", map[string]string{"spec": "Silver Bar + Silver Bar for Gold Bar"})
	require.Equal(t, http.StatusOK, rr.Code)
	var out map[string]any
	decodeBody(t, rr, &out)
	assert.Equal(t, "LOWBALL", out["classification"])
	assert.Equal(t, "80", out["percentage"])
}

func TestBuildRouter_TradeErrors(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	tests := []struct {
		name   string
		spec   string
		status int
		kind   string
	}{
		{"missing separator", "Gold Bar", http.StatusBadRequest, "format_error"},
		{"unknown item", "qqqqqqq for Gold Bar", http.StatusNotFound, "item_not_found"},
		{"non numeric value", "Mystery Box for Gold Bar", http.StatusUnprocessableEntity, "value_conversion"},
		{"zero target", "Gold Bar for Broken Shard", http.StatusUnprocessableEntity, "zero_target_value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serveRequest(t, h, http.MethodPost, "/api/v1/trades", map[string]string{"spec": tt.spec})
			assert.Equal(t, tt.status, rr.Code)
			var body map[string]any
			decodeBody(t, rr, &body)
			assert.Equal(t, tt.kind, body["kind"])
		})
	}
}

func TestBuildRouter_DataUnavailable(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusInternalServerError, "boom"), serverOptions{})

	rr := serveRequest(t, h, http.MethodGet, "/api/v1/items/gold", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	var body map[string]any
	decodeBody(t, rr, &body)
	assert.Equal(t, "data_unavailable", body["kind"])
}

func TestBuildRouter_HighDemand(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{HighDemandThreshold: 7, HighDemandLimit: 20})

	rr := serveRequest(t, h, http.MethodGet, "/api/v1/high-demand", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []lookup.HighDemandEntry
	decodeBody(t, rr, &entries)
	require.Len(t, entries, 3)
	assert.Equal(t, "Diamond", entries[0].Name)

	rr = serveRequest(t, h, http.MethodGet, "/api/v1/high-demand?threshold=8.5&limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decodeBody(t, rr, &entries)
	require.Len(t, entries, 1)
	assert.Equal(t, "Diamond", entries[0].Name)
}

func TestBuildRouter_HighDemandBadQuery(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	for _, q := range []string{"threshold=high", "limit=0", "limit=x"} {
		rr := serveRequest(t, h, http.MethodGet, "/api/v1/high-demand?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestBuildRouter_Help(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{})

	rr := serveRequest(t, h, http.MethodGet, "/api/v1/help", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var entries []lookup.HelpEntry
	decodeBody(t, rr, &entries)
	require.Len(t, entries, 4)
	assert.Equal(t, "f!value <item>", entries[0].Usage)
}

func TestBuildRouter_CORS(t *testing.T) {
	h := buildRouter(newTestApp(t, http.StatusOK, testSheet), serverOptions{CORSOrigins: []string{"https://example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/help", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "https://example.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(model.KindItemNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.KindFormat))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(model.KindValueConversion))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(model.KindZeroTargetValue))
	assert.Equal(t, http.StatusServiceUnavailable, statusFor(model.KindDataUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(model.KindUnknown))
}
