package messages

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cbodonnell/wordfall/pkg/repositories/models"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeDeserializeLeaderboard(t *testing.T) {
	board := ServerLeaderboard{
		Timestamp: 1,
		Entries: []models.LeaderboardEntry{
			{Rank: 1, Username: "alice", Score: 120, AchievedAt: 10},
			{Rank: 2, Username: "bob", Score: 80, AchievedAt: 20},
		},
	}
	msg, err := NewMessage(MessageTypeServerLeaderboard, board)
	require.NoError(t, err)

	b, err := SerializeMessage(msg)
	require.NoError(t, err)

	got, err := DeserializeMessage(b)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeServerLeaderboard, got.Type)

	var gotBoard ServerLeaderboard
	require.NoError(t, DecodePayload(got, &gotBoard))
	assert.Equal(t, board, gotBoard)
}

func TestDeserializeMessage_errors(t *testing.T) {
	compress := func(s string) []byte {
		buf := bytes.NewBuffer(nil)
		w, err := zstd.NewWriter(buf)
		require.NoError(t, err)
		_, err = w.Write([]byte(s))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		return buf.Bytes()
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "not compressed", data: []byte(`{"type":"ping"}`)},
		{name: "not json", data: compress("hello")},
		{name: "missing type", data: compress(`{"payload":{}}`)},
		{name: "too large", data: compress(`{"type":"ping","payload":"` + strings.Repeat("x", MessageBufferSize) + `"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeserializeMessage(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestNewMessage_withoutPayload(t *testing.T) {
	msg, err := NewMessage(MessageTypeClientPing, nil)
	require.NoError(t, err)
	assert.Empty(t, msg.Payload)

	var v struct{}
	assert.Error(t, DecodePayload(msg, &v))
}
