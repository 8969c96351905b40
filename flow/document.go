package flow

import "encoding/json"

// DocumentSink receives the structured fields an Action.Document call
// emits. AddField mirrors the logiface Event.AddField model used for
// structured logging elsewhere in this module, reused here rather than
// inventing a second key-value emission shape. Nested returns a sink
// scoped to a named child, for combinators to document their children.
type DocumentSink interface {
	AddField(key string, val any)
	Nested(key string) DocumentSink
}

// jsonSink is the DocumentSink backing JSONDocument: a plain key-value map,
// with Nested keys holding nested maps.
type jsonSink struct {
	fields map[string]any
}

func newJSONSink() *jsonSink {
	return &jsonSink{fields: make(map[string]any)}
}

func (s *jsonSink) AddField(key string, val any) {
	s.fields[key] = val
}

func (s *jsonSink) Nested(key string) DocumentSink {
	child := newJSONSink()
	s.fields[key] = child.fields
	return child
}

// JSONDocument renders a's introspection document (and recursively its
// children) as JSON.
func JSONDocument(a Action) ([]byte, error) {
	sink := newJSONSink()
	a.Document(sink)
	return json.Marshal(sink.fields)
}
