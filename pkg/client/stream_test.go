package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/goals/breakdown/stream", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReadEventsMultilineDataAndComments(t *testing.T) {
	in := ": keepalive\n" +
		"event: progress\n" +
		"data: {\"message\":\n" +
		"data: \"m1\"}\n\n" +
		"data: plain\r\n\r\n"

	var names, payloads []string
	err := readEvents(strings.NewReader(in), func(event string, data []byte) (bool, error) {
		names = append(names, event)
		payloads = append(payloads, string(data))
		return false, nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"progress", "message"}, names)
	assert.Equal(t, "{\"message\":\n\"m1\"}", payloads[0])
	assert.Equal(t, "plain", payloads[1])
}

func TestStreamBreakdownDeliversEventsInOrder(t *testing.T) {
	body := "event: progress\ndata: {\"message\":\"m1\",\"currentChunk\":1,\"totalChunks\":2}\n\n" +
		"event: chunk\ndata: {\"chunk\":1,\"weeklyGoals\":[{\"title\":\"w1\",\"weekNumber\":1,\"tasks\":[]}]}\n\n" +
		"event: progress\ndata: {\"message\":\"m2\",\"currentChunk\":2,\"totalChunks\":2}\n\n" +
		"event: chunk\ndata: {\"chunk\":2,\"weeklyGoals\":[{\"title\":\"w2\",\"weekNumber\":2,\"tasks\":[]}]}\n\n" +
		"event: complete\ndata: {\"weeklyGoals\":[{\"title\":\"w1\",\"weekNumber\":1,\"tasks\":[]},{\"title\":\"w2\",\"weekNumber\":2,\"tasks\":[]}]}\n\n"
	srv := sseServer(t, body)

	var order []string
	bd, err := New(srv.URL).StreamBreakdown(context.Background(), BreakdownRequest{Specific: "x"}, StreamHandler{
		OnProgress: func(p Progress) { order = append(order, p.Message) },
		OnChunk: func(w []WeeklyGoal) {
			for _, wg := range w {
				order = append(order, wg.Title)
			}
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"m1", "w1", "m2", "w2"}, order)
	require.Len(t, bd.WeeklyGoals, 2)
	assert.Equal(t, 2, bd.WeeklyGoals[1].WeekNumber)
}

func TestStreamBreakdownErrorEvent(t *testing.T) {
	body := "event: progress\ndata: {\"message\":\"m1\",\"currentChunk\":1,\"totalChunks\":3}\n\n" +
		"event: error\ndata: {\"error\":\"model unavailable\",\"code\":\"EXTERNAL_SERVICE_ERROR\"}\n\n"
	srv := sseServer(t, body)

	bd, err := New(srv.URL).StreamBreakdown(context.Background(), BreakdownRequest{}, StreamHandler{})
	assert.Nil(t, bd)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", apiErr.Code)
	assert.Equal(t, "model unavailable", apiErr.Message)
}

func TestStreamBreakdownTruncated(t *testing.T) {
	srv := sseServer(t, "event: progress\ndata: {\"message\":\"m1\",\"currentChunk\":1,\"totalChunks\":3}\n\n")

	_, err := New(srv.URL).StreamBreakdown(context.Background(), BreakdownRequest{}, StreamHandler{})
	assert.ErrorIs(t, err, ErrStreamTruncated)
}

func TestStreamBreakdownHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"AI service is not configured","code":"EXTERNAL_SERVICE_ERROR"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).StreamBreakdown(context.Background(), BreakdownRequest{}, StreamHandler{})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}
