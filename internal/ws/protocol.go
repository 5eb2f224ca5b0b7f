package ws

import "encoding/json"

// Envelope is one inbound client event. Seq correlates the single
// acknowledgement the server always produces for it.
type Envelope struct {
	Seq   int64           `json:"seq"`
	Event string          `json:"event"`
	Code  string          `json:"code,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Ack is the per-event acknowledgement: {ok, data} or {ok:false, error}
type Ack struct {
	Seq   int64  `json:"seq"`
	OK    bool   `json:"ok"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// Push is a server-initiated event (snapshots, private envelopes). It has
// no acknowledgement.
type Push struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

func okAck(seq int64, data any) Ack {
	return Ack{Seq: seq, OK: true, Data: data}
}

func errAck(seq int64, err error) Ack {
	return Ack{Seq: seq, OK: false, Error: err.Error()}
}

// decode unmarshals an envelope payload into a typed struct. A missing
// payload decodes to the zero value; unknown keys are ignored.
func decode[T any](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 {
		return v, nil
	}
	err := json.Unmarshal(env.Data, &v)
	return v, err
}
