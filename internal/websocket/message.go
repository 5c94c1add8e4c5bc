package websocket

import "encoding/json"

// Actions carried by Message.
const (
	ActionEvent = "event"
	ActionPing  = "ping"
	ActionPong  = "pong"
	ActionError = "error"
)

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewErrorMessage encodes an error notice for a single client.
func NewErrorMessage(text string) []byte {
	return encode(Message{Action: ActionError, Payload: map[string]string{"error": text}})
}

// NewPongMessage encodes the reply to an application-level ping.
func NewPongMessage() []byte {
	return encode(Message{Action: ActionPong})
}

func encode(m Message) []byte {
	data, _ := json.Marshal(m)
	return data
}
