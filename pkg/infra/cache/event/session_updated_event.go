package event

// SessionUpdatedEvent is broadcast after a replica persisted a session so the
// others drop their in-memory copy.
type SessionUpdatedEvent struct {
	SessionID string `json:"session_id"`
	Origin    string `json:"origin"`
}

func (e SessionUpdatedEvent) Type() string {
	return SessionUpdatedEventType
}
