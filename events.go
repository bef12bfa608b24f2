package main

// Messages coming from clients. One envelope for all event types, in the
// style of the original socket protocol; unused fields stay empty.
type ClientEvent struct {
	Type          string `json:"type"`                     // see dispatch in client.go
	PreferredCode string `json:"preferred_code,omitempty"` // create_room
	Role          string `json:"role,omitempty"`           // join_role / queue_for_role
	Room          string `json:"room,omitempty"`           // join_role
	AuthToken     string `json:"auth_token,omitempty"`     // join_role, optional
	Character     string `json:"character,omitempty"`      // set_human_character / ask
	Question      string `json:"question,omitempty"`       // ask
	CorrelationID string `json:"correlation_id,omitempty"` // murderer_answer / murderer_ack
	Answer        string `json:"answer,omitempty"`         // murderer_answer
}

// Messages sent to clients.

type RoomCreatedMessage struct {
	Type string `json:"type"` // "room_created"
	Room string `json:"room"`
}

type MatchedMessage struct {
	Type string `json:"type"` // "matched"
	Room string `json:"room"`
}

type SystemMessage struct {
	Type string `json:"type"` // "system"
	Msg  string `json:"msg"`
}

type ErrorMessage struct {
	Type string `json:"type"` // "error"
	Msg  string `json:"msg"`
}

// Sent to the murderer only, confirming a possession change.
type CharacterLockedMessage struct {
	Type      string `json:"type"` // "character_locked"
	Character string `json:"character"`
}

// Sent to the murderer when a question routes to the human path.
type QuestionForMurdererMessage struct {
	Type          string `json:"type"` // "question_for_murderer"
	CorrelationID string `json:"correlation_id"`
	Character     string `json:"character"`
	Question      string `json:"question"`
}

// Sent to the detective with the final answer, whichever path produced it.
type AnswerMessage struct {
	Type      string `json:"type"` // "answer"
	Character string `json:"character"`
	Answer    string `json:"answer"`
}

// Room broadcast telling peers to re-fetch clue state.
type CluesUpdatedMessage struct {
	Type string `json:"type"` // "clues_updated"
}

func systemMsg(msg string) SystemMessage {
	return SystemMessage{Type: "system", Msg: msg}
}

func errorMsg(msg string) ErrorMessage {
	return ErrorMessage{Type: "error", Msg: msg}
}
