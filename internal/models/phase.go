package models

// Phase names emitted while an answer is being produced
const (
	PhaseSearching = "searching"
	PhaseReading   = "reading"
	PhaseAnswer    = "answer"
	PhaseError     = "error"
)

// Phase is one progress event of the streamed answer endpoints
type Phase struct {
	Phase   string  `json:"phase"`
	Message string  `json:"message,omitempty"`
	Count   *int    `json:"count,omitempty"`
	Payload *Answer `json:"payload,omitempty"`
}

// SearchingPhase is emitted before any source is queried
func SearchingPhase() Phase {
	return Phase{Phase: PhaseSearching, Message: "Searching the web..."}
}

// ReadingPhase is emitted once the document set is known
func ReadingPhase(count int) Phase {
	return Phase{Phase: PhaseReading, Count: &count}
}

// AnswerPhase carries the final answer
func AnswerPhase(answer *Answer) Phase {
	return Phase{Phase: PhaseAnswer, Payload: answer}
}

// ErrorPhase reports a failure on streaming transports
func ErrorPhase(message string) Phase {
	return Phase{Phase: PhaseError, Message: message}
}
