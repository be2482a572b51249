package network

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	pkgnetwork "github.com/cbodonnell/wordfall/pkg/network"
	"github.com/gorilla/websocket"
)

const pingInterval = 15 * time.Second

// WatchLeaderboard subscribes to the live leaderboard feed. The returned channel
// always holds the newest board and is closed when ctx ends or the feed drops.
func (c *APIClient) WatchLeaderboard(ctx context.Context) (<-chan messages.ServerLeaderboard, error) {
	if c == nil {
		return nil, ErrOffline
	}

	wsURL := *c.baseURL
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL = *wsURL.ResolveReference(&url.URL{Path: "/leaderboard/ws"})

	dialer := websocket.Dialer{HandshakeTimeout: requestTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial leaderboard feed: %v", err)
	}

	boards := make(chan messages.ServerLeaderboard, 1)
	feedCtx, cancel := context.WithCancel(ctx)

	go func() {
		<-feedCtx.Done()
		conn.Close()
	}()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-feedCtx.Done():
				return
			case <-ticker.C:
				if err := pkgnetwork.WriteMessageToWS(conn, &messages.Message{Type: messages.MessageTypeClientPing}); err != nil {
					log.Warn("Failed to ping leaderboard feed: %v", err)
					cancel()
					return
				}
			}
		}
	}()

	go func() {
		defer close(boards)
		defer cancel()
		for {
			msg, err := pkgnetwork.ReadMessageFromWS(conn)
			if err != nil {
				if feedCtx.Err() == nil {
					log.Warn("Leaderboard feed closed: %v", err)
				}
				return
			}
			if msg.Type != messages.MessageTypeServerLeaderboard {
				continue
			}
			var board messages.ServerLeaderboard
			if err := messages.DecodePayload(msg, &board); err != nil {
				log.Error("Failed to decode leaderboard: %v", err)
				continue
			}
			// keep only the newest board
			select {
			case <-boards:
			default:
			}
			boards <- board
		}
	}()

	return boards, nil
}
