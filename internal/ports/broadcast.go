package ports

// Broadcaster is the publish/subscribe primitive the room layer relays
// through. Connections are grouped under named keys; delivery is owned by
// the transport, not this module.
type Broadcaster interface {
	JoinGroup(userID, key string)
	LeaveGroup(userID, key string)
	EmitToGroup(key, event string, payload any)
	EmitToOne(userID, event string, payload any)
}
