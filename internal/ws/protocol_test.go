package ws

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeUnmarshal(t *testing.T) {
	raw := `{"seq": 7, "event": "player:answer", "code": "ABCDE", "data": {"playerId": "p1", "answerIndex": 2}}`

	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	assert.Equal(t, int64(7), env.Seq)
	assert.Equal(t, "player:answer", env.Event)
	assert.Equal(t, "ABCDE", env.Code)

	p, err := decode[answerPayload](env)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.PlayerID)
	assert.Equal(t, 2, p.AnswerIndex)
}

func TestDecodeMissingPayload(t *testing.T) {
	p, err := decode[answerPayload](Envelope{Event: "player:answer"})
	require.NoError(t, err)
	assert.Empty(t, p.PlayerID)
	assert.Zero(t, p.AnswerIndex)
}

func TestDecodeIgnoresUnknownKeys(t *testing.T) {
	env := Envelope{Data: json.RawMessage(`{"playerId": "p1", "futureField": true}`)}
	p, err := decode[playerPayload](env)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.PlayerID)
}

func TestDecodeMalformedPayload(t *testing.T) {
	env := Envelope{Data: json.RawMessage(`{"playerId": 42}`)}
	_, err := decode[playerPayload](env)
	assert.Error(t, err)
}

func TestAckShapes(t *testing.T) {
	ok := okAck(3, map[string]string{"code": "ABCDE"})
	raw, err := json.Marshal(ok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq": 3, "ok": true, "data": {"code": "ABCDE"}}`, string(raw))

	bad := errAck(4, errors.New("Not authorized"))
	raw, err = json.Marshal(bad)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq": 4, "ok": false, "error": "Not authorized"}`, string(raw))
}

func TestPushShape(t *testing.T) {
	raw, err := json.Marshal(Push{Event: "room:state", Data: map[string]string{"phase": "lobby"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event": "room:state", "data": {"phase": "lobby"}}`, string(raw))
}

func TestHandlersCoverEveryEvent(t *testing.T) {
	expected := []string{
		"room:create", "room:join", "room:resume", "room:watch", "room:leave",
		"game:configure", "game:start", "act:start", "boss:start",
		"question:reveal", "question:next", "shop:open",
		"player:answer", "player:lockin", "player:buyback",
		"shop:buy", "item:use",
		"wager:set", "wager:lock", "wager:spotlight_end",
		"revive:request", "revive:approve", "revive:decline",
	}
	for _, event := range expected {
		assert.Contains(t, handlers, event)
	}
	assert.Len(t, handlers, len(expected))
}
