package services

// Broadcaster pushes a payload to every live subscriber of a room. The
// websocket hub satisfies it; tests use a recording fake.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// NoopBroadcaster is used when the live hub is not wired (CLI tools).
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastToRoom(string, interface{}) {}
