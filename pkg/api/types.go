package api

// ChatMessage is one inbound message to the relay. ThreadID is omitted on
// the first turn of a conversation; the relay mints an identifier and
// returns it.
type ChatMessage struct {
	Query    string `json:"query"`
	ThreadID any    `json:"thread_id,omitempty"`
}

// ChatReply is the relay's response to one chat turn. ThreadID is the
// canonical string identifier for the conversation, or null when the turn
// was rejected before a session existed.
type ChatReply struct {
	ThreadID any    `json:"thread_id"`
	Response string `json:"response"`
}
