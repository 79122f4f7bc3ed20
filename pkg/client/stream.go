package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrStreamTruncated means the event stream ended before a complete or
// error event arrived.
var ErrStreamTruncated = errors.New("smartgoals: breakdown stream ended without a result")

// Stream event names.
const (
	EventProgress = "progress"
	EventChunk    = "chunk"
	EventComplete = "complete"
	EventError    = "error"
)

// Progress is one progress update of a breakdown generation.
type Progress struct {
	Message      string `json:"message"`
	CurrentChunk int    `json:"currentChunk"`
	TotalChunks  int    `json:"totalChunks"`
}

// StreamHandler receives stream callbacks in delivery order. Nil fields are
// skipped.
type StreamHandler struct {
	OnProgress func(Progress)
	OnChunk    func([]WeeklyGoal)
}

type chunkEvent struct {
	Chunk       int          `json:"chunk"`
	WeeklyGoals []WeeklyGoal `json:"weeklyGoals"`
}

type errorEvent struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StreamBreakdown posts req to the streaming endpoint and dispatches the
// server-sent events to h until the server sends the final breakdown or an
// error. The request is bounded only by ctx.
func (c *Client) StreamBreakdown(ctx context.Context, req BreakdownRequest, h StreamHandler) (*Breakdown, error) {
	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/goals/breakdown/stream", req)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("stream breakdown: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	var result *Breakdown
	err = readEvents(resp.Body, func(event string, data []byte) (bool, error) {
		switch event {
		case EventProgress:
			var p Progress
			if err := json.Unmarshal(data, &p); err != nil {
				return false, fmt.Errorf("decode progress event: %w", err)
			}
			if h.OnProgress != nil {
				h.OnProgress(p)
			}
		case EventChunk:
			var ch chunkEvent
			if err := json.Unmarshal(data, &ch); err != nil {
				return false, fmt.Errorf("decode chunk event: %w", err)
			}
			if h.OnChunk != nil {
				h.OnChunk(ch.WeeklyGoals)
			}
		case EventComplete:
			var bd Breakdown
			if err := json.Unmarshal(data, &bd); err != nil {
				return false, fmt.Errorf("decode complete event: %w", err)
			}
			result = &bd
			return true, nil
		case EventError:
			var e errorEvent
			_ = json.Unmarshal(data, &e)
			if e.Error == "" {
				e.Error = strings.TrimSpace(string(data))
			}
			return true, &APIError{Status: resp.StatusCode, Code: e.Code, Message: e.Error}
		default:
			c.logger.Debug("ignoring breakdown stream event", "event", event)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrStreamTruncated
	}
	return result, nil
}

// readEvents parses a text/event-stream body and calls fn for every
// dispatched event until fn reports done, fn fails or the body ends.
func readEvents(r io.Reader, fn func(event string, data []byte) (bool, error)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 4<<20)

	var (
		event string
		data  strings.Builder
		has   bool
	)
	dispatch := func() (bool, error) {
		if !has {
			event = ""
			return false, nil
		}
		name := event
		if name == "" {
			name = "message"
		}
		payload := []byte(data.String())
		event, has = "", false
		data.Reset()
		return fn(name, payload)
	}

	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			done, err := dispatch()
			if err != nil || done {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			event = value
		case "data":
			if has {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			has = true
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read breakdown stream: %w", err)
	}
	_, err := dispatch()
	return err
}
