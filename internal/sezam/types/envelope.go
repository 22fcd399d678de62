package types

// Callback event types sent by the chat platform and by the door controller.
const (
	EventConfirmation = "confirmation"
	EventMessageNew   = "message_new"
	EventDoorStatus   = "get_open_door_flag"
	EventRosterQuery  = "get_users_if_updated"
)

// Envelope is the outer shape of every inbound callback. For
// get_users_if_updated the controller reuses EventID as its since-token.
type Envelope struct {
	Type    string       `json:"type"`
	Secret  string       `json:"secret"`
	EventID string       `json:"event_id"`
	Object  *EventObject `json:"object,omitempty"`
}

type EventObject struct {
	Message Message `json:"message"`
}

// Message is the embedded chat message of a message_new event.
type Message struct {
	Date   int64  `json:"date"`
	Text   string `json:"text"`
	FromID int64  `json:"from_id"`
}

// RosterResponse is the body returned to get_users_if_updated. Users is null
// when the caller's token already matches LastUpdatedValue.
type RosterResponse struct {
	Users            []Member `json:"users"`
	LastUpdatedValue string   `json:"lastUpdatedValue"`
}
