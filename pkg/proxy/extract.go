package proxy

import (
	"strings"

	"mercator-hq/courier/pkg/jsonvalue"
)

// NoResponse is returned when no text can be derived from a payload.
const NoResponse = "No response."

// Source names the extraction rule that produced a reply.
type Source string

// Extraction sources, in the order they are tried.
const (
	SourceChoices  Source = "choices"
	SourceText     Source = "text"
	SourceRaw      Source = "raw"
	SourceFallback Source = "fallback"
)

var (
	choicesContentPath = []jsonvalue.Step{
		jsonvalue.Key("output"), jsonvalue.Key("choices"), jsonvalue.Idx(0),
		jsonvalue.Key("message"), jsonvalue.Key("content"),
	}
	outputTextPath = []jsonvalue.Step{
		jsonvalue.Key("output"), jsonvalue.Key("text"),
	}
)

// Extract returns the display text for an upstream completion payload.
//
// It returns the first of these that is a non-empty string after trimming:
// output.choices[0].message.content, then output.text. Otherwise it returns
// the payload re-serialized as compact JSON (untrimmed), and NoResponse only
// if that serialization is empty. Extract never fails.
func Extract(payload jsonvalue.Value) string {
	text, _ := ExtractWithSource(payload)
	return text
}

// ExtractWithSource is Extract that also reports which rule matched.
func ExtractWithSource(payload jsonvalue.Value) (string, Source) {
	if text, ok := trimmedString(payload, choicesContentPath); ok {
		return text, SourceChoices
	}
	if text, ok := trimmedString(payload, outputTextPath); ok {
		return text, SourceText
	}

	raw, err := payload.MarshalJSON()
	if err == nil && len(raw) > 0 {
		return string(raw), SourceRaw
	}
	return NoResponse, SourceFallback
}

// trimmedString resolves path and returns the trimmed string there. Missing
// fields, wrong kinds and whitespace-only strings all report false.
func trimmedString(payload jsonvalue.Value, path []jsonvalue.Step) (string, bool) {
	v, ok := payload.Lookup(path...)
	if !ok {
		return "", false
	}
	s, ok := v.AsString()
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
