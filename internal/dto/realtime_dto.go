package dto

// RealtimeEvent is a payload-free invalidation signal pushed to a room. Clients
// refetch the underlying resource; the event itself carries no data.
type RealtimeEvent struct {
	Room  string `json:"room"`
	Event string `json:"event"`
}
