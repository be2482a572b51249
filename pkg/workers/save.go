package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/wordfall/pkg/log"
)

const (
	DefaultSubmitAttempts = 3
	DefaultSubmitBackoff  = 500 * time.Millisecond
)

// ScoreSink accepts the final score of a round
type ScoreSink interface {
	SubmitScore(ctx context.Context, score int) error
}

type ScoreSubmitRequest struct {
	Score int
	// Result receives the outcome of the submission when set; it should be buffered
	Result chan<- error
}

// ScoreSubmitWorker submits round scores off the UI goroutine, retrying failed attempts.
type ScoreSubmitWorker struct {
	sink       ScoreSink
	submitChan <-chan ScoreSubmitRequest
	attempts   int
	backoff    time.Duration
}

type NewScoreSubmitWorkerOptions struct {
	Sink       ScoreSink
	SubmitChan <-chan ScoreSubmitRequest
	Attempts   int
	Backoff    time.Duration
}

func NewScoreSubmitWorker(opts NewScoreSubmitWorkerOptions) *ScoreSubmitWorker {
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultSubmitAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultSubmitBackoff
	}
	return &ScoreSubmitWorker{
		sink:       opts.Sink,
		submitChan: opts.SubmitChan,
		attempts:   attempts,
		backoff:    backoff,
	}
}

func (w *ScoreSubmitWorker) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.submitChan:
			err := w.submit(ctx, req.Score)
			if err != nil {
				log.Error("Failed to submit score %d: %v", req.Score, err)
			}
			if req.Result != nil {
				select {
				case req.Result <- err:
				default:
				}
			}
		}
	}
}

func (w *ScoreSubmitWorker) submit(ctx context.Context, score int) error {
	var err error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if err = w.sink.SubmitScore(ctx, score); err == nil {
			log.Debug("Submitted score %d on attempt %d", score, attempt)
			return nil
		}
		if attempt == w.attempts {
			break
		}
		log.Warn("Score submission attempt %d failed: %v", attempt, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.backoff * time.Duration(attempt)):
		}
	}
	return err
}
