package common

import "encoding/json"

// RemoteCreateParams is the body of POST /api/reminder.
type RemoteCreateParams struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	TriggerTime int64  `json:"triggerTime"`
}

// RemoteResponse is the envelope returned by every remote endpoint.
type RemoteResponse struct {
	Ok       bool            `json:"ok"`
	Data     json.RawMessage `json:"data,omitempty"`
	Error    string          `json:"error,omitempty"`
	Fallback bool            `json:"fallback,omitempty"`
}

// RemoteCreated is the optional data of a successful create.
type RemoteCreated struct {
	ID string `json:"id,omitempty"`
}

// RemoteListData is the data of GET /api/reminders.
type RemoteListData struct {
	Count     int               `json:"count"`
	Reminders []*RemoteListItem `json:"reminders"`
}

// RemoteListItem is a single reminder held by the remote peer.
type RemoteListItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	TriggerTime int64  `json:"triggerTime"`
	// TimeLeft is in milliseconds.
	TimeLeft int64 `json:"timeLeft"`
}
