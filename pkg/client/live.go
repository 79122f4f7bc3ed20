package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// Subscribe opens the live update socket and calls fn for every event until
// ctx is done or the connection drops. A cancelled ctx is not an error.
func (c *Client) Subscribe(ctx context.Context, fn func(LiveEvent)) error {
	wsURL, err := c.liveURL()
	if err != nil {
		return err
	}

	header := http.Header{}
	if token := c.Token(); token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.StatusCode >= 400 {
			defer resp.Body.Close()
			return decodeError(resp)
		}
		return fmt.Errorf("dial live updates: %w", err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read live update: %w", err)
		}
		var ev LiveEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			c.logger.Warn("skipping malformed live event", "error", err)
			continue
		}
		fn(ev)
	}
}

func (c *Client) liveURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", errors.New("smartgoals: unsupported base url scheme " + u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/live"
	return u.String(), nil
}
