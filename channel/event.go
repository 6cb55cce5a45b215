package channel

import "encoding/json"

// Event is a decoded runtime-to-host message. The wire form is a JSON
// envelope {"event": <name>, "data": <payload>}; Data stays raw because its
// schema belongs to the application, not the bridge.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// decodeEvent parses the envelope. ok is false for anything malformed: the
// producer sits on the far side of the boundary and cannot be coerced into
// conforming, so bad payloads are dropped rather than surfaced.
func decodeEvent(raw string) (Event, bool) {
	var ev Event
	if err := json.Unmarshal([]byte(raw), &ev); err != nil {
		return Event{}, false
	}
	if ev.Name == "" {
		return Event{}, false
	}
	return ev, true
}

// EncodeEvent renders ev in the bridge's wire form. Engines and tests use
// it to produce well-formed runtime-side payloads.
func EncodeEvent(ev Event) (string, error) {
	buf, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
