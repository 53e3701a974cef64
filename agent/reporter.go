package agent

import (
	"github.com/hazemmrad17/cftravel-sub000/catalog"
)

// ResponseKind tells the client what a reply is: a clarifying question, a
// confirmation prompt holding offers back, or a final answer.
type ResponseKind string

const (
	KindClarify ResponseKind = "clarify"
	KindConfirm ResponseKind = "confirm"
	KindAnswer  ResponseKind = "answer"
)

// Response is the synchronous result of one pipeline run.
type Response struct {
	Kind   ResponseKind    `json:"kind"`
	Text   string          `json:"text"`
	Offers []catalog.Match `json:"offers,omitempty"`
}

// Reporter receives the streamed form of a pipeline run. Implementations
// must tolerate Content being called many times before End. Send errors are
// treated as client disconnects.
type Reporter interface {
	// Content delivers one displayable text chunk. Chunks concatenate to
	// the full reply text.
	Content(chunk string) error

	// Offers delivers the ranked match list, before End.
	Offers(matches []catalog.Match) error

	// End marks a successful end of stream.
	End(kind ResponseKind) error

	// Error delivers a terminal failure with its machine-readable kind.
	Error(kind, message string) error
}

// NoOpReporter discards all events. Used for the synchronous surface.
type NoOpReporter struct{}

func (NoOpReporter) Content(string) error { return nil }

func (NoOpReporter) Offers([]catalog.Match) error { return nil }

func (NoOpReporter) End(ResponseKind) error { return nil }

func (NoOpReporter) Error(kind, msg string) error { return nil }
