package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/cbodonnell/wordfall/pkg/network"
	"github.com/cbodonnell/wordfall/pkg/queue"
	"github.com/cbodonnell/wordfall/pkg/repositories"
)

const DefaultBroadcastInterval = 250 * time.Millisecond

// LeaderboardBroadcastWorker pushes accepted scores and the refreshed leaderboard
// to every feed client, and the current leaderboard to each client that connects.
type LeaderboardBroadcastWorker struct {
	clientManager *network.ClientManager
	repository    repositories.Repository
	scoreQueue    queue.Queue[messages.ServerNewScore]
	interval      time.Duration
}

type NewLeaderboardBroadcastWorkerOptions struct {
	ClientManager *network.ClientManager
	Repository    repositories.Repository
	ScoreQueue    queue.Queue[messages.ServerNewScore]
	Interval      time.Duration
}

func NewLeaderboardBroadcastWorker(opts NewLeaderboardBroadcastWorkerOptions) *LeaderboardBroadcastWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultBroadcastInterval
	}
	return &LeaderboardBroadcastWorker{
		clientManager: opts.ClientManager,
		repository:    opts.Repository,
		scoreQueue:    opts.ScoreQueue,
		interval:      interval,
	}
}

func (w *LeaderboardBroadcastWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	events := w.clientManager.GetClientEventChan()
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-events:
			if event.Type != network.ClientEventTypeConnect {
				continue
			}
			if err := w.sendLeaderboard(ctx, event.ClientID); err != nil {
				log.Error("Failed to send leaderboard to client %d: %v", event.ClientID, err)
			}
		case <-ticker.C:
			if err := w.flush(ctx); err != nil {
				log.Error("Failed to broadcast leaderboard: %v", err)
			}
		}
	}
}

// flush broadcasts every queued score, then the leaderboard once if any score was queued.
func (w *LeaderboardBroadcastWorker) flush(ctx context.Context) error {
	scores := w.scoreQueue.ReadAllMessages()
	if len(scores) == 0 {
		return nil
	}
	for _, score := range scores {
		msg, err := messages.NewMessage(messages.MessageTypeServerNewScore, score)
		if err != nil {
			log.Error("Failed to marshal new score: %v", err)
			continue
		}
		w.disconnectFailed(w.clientManager.Broadcast(msg))
	}

	msg, err := w.leaderboardMessage(ctx)
	if err != nil {
		return err
	}
	w.disconnectFailed(w.clientManager.Broadcast(msg))
	log.Debug("Broadcast %d new scores to %d clients", len(scores), w.clientManager.Count())
	return nil
}

func (w *LeaderboardBroadcastWorker) sendLeaderboard(ctx context.Context, clientID uint32) error {
	client, ok := w.clientManager.GetClient(clientID)
	if !ok {
		return nil
	}
	msg, err := w.leaderboardMessage(ctx)
	if err != nil {
		return err
	}
	if err := client.Send(msg); err != nil {
		w.clientManager.DisconnectClient(clientID)
		return err
	}
	return nil
}

func (w *LeaderboardBroadcastWorker) leaderboardMessage(ctx context.Context) (*messages.Message, error) {
	entries, err := w.repository.GetLeaderboard(ctx, repositories.MaxLeaderboardEntries)
	if err != nil {
		return nil, err
	}
	return messages.NewMessage(messages.MessageTypeServerLeaderboard, messages.ServerLeaderboard{
		Timestamp: time.Now().UnixMilli(),
		Entries:   entries,
	})
}

func (w *LeaderboardBroadcastWorker) disconnectFailed(clientIDs []uint32) {
	for _, clientID := range clientIDs {
		w.clientManager.DisconnectClient(clientID)
	}
}
