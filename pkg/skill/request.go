// pkg/skill/request.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package skill

import (
	"html"
	"strings"
)

// Request types
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

// Intent names
const (
	HelpIntent           = "AMAZON.HelpIntent"
	StopIntent           = "AMAZON.StopIntent"
	CancelIntent         = "AMAZON.CancelIntent"
	NearbyAircraftIntent = "AIRTRAFFICnearbyAircraft"
	SetLocationIntent    = "AIRTRAFFICsetLocation"
)

///////////////////////////////////////////////////////////////////////////
// Request

// Request is the body of a request from the voice service.
type Request struct {
	Version string      `json:"version"`
	Session Session     `json:"session"`
	Context Context     `json:"context"`
	Request RequestBody `json:"request"`
}

type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	User        User           `json:"user"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type User struct {
	UserID string `json:"userId"`
}

type Context struct {
	System System `json:"System"`
}

type System struct {
	Application Application `json:"application"`
	User        User        `json:"user"`
}

type RequestBody struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
	Locale    string `json:"locale"`
	Intent    Intent `json:"intent"`
	Reason    string `json:"reason,omitempty"` // SessionEndedRequest only
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// UserID returns the id of the user making the request. Session-less
// requests only carry it in the context.
func (r *Request) UserID() string {
	if r.Session.User.UserID != "" {
		return r.Session.User.UserID
	}
	return r.Context.System.User.UserID
}

// Slot returns the trimmed value of the named slot and whether it was
// given.
func (i Intent) Slot(name string) (string, bool) {
	s, ok := i.Slots[name]
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(s.Value)
	return v, v != ""
}

///////////////////////////////////////////////////////////////////////////
// Response

type Response struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          ResponseBody   `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Reprompt struct {
	OutputSpeech *OutputSpeech `json:"outputSpeech"`
}

// ssml wraps speech, which should already be escaped, in a speak element.
func ssml(speech string) *OutputSpeech {
	return &OutputSpeech{Type: "SSML", SSML: "<speak>" + speech + "</speak>"}
}

// escape prepares text that came from a request or the flight feed for
// inclusion in SSML.
func escape(s string) string {
	return html.EscapeString(s)
}

// sayCharacters has codes like "LHR" spoken letter by letter.
func sayCharacters(s string) string {
	return `<say-as interpret-as="characters">` + escape(s) + `</say-as>`
}

// Tell returns a response that speaks and then ends the session.
func Tell(speech string) *Response {
	return &Response{
		Version: "1.0",
		Response: ResponseBody{
			OutputSpeech:     ssml(speech),
			ShouldEndSession: true,
		},
	}
}

// Ask returns a response that speaks and then waits for the user, using
// reprompt if they don't say anything.
func Ask(speech, reprompt string) *Response {
	r := &Response{
		Version: "1.0",
		Response: ResponseBody{
			OutputSpeech: ssml(speech),
		},
	}
	if reprompt != "" {
		r.Response.Reprompt = &Reprompt{OutputSpeech: ssml(reprompt)}
	}
	return r
}

// WithCard adds a simple card to be shown in the companion app.
func (r *Response) WithCard(title, content string) *Response {
	r.Response.Card = &Card{Type: "Simple", Title: title, Content: content}
	return r
}

// Speech returns the response's speech with the SSML markup removed.
func (r *Response) Speech() string {
	if r.Response.OutputSpeech == nil {
		return ""
	}
	return stripTags(r.Response.OutputSpeech.SSML)
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, ch := range s {
		switch {
		case ch == '<':
			inTag = true
		case ch == '>':
			inTag = false
		case !inTag:
			b.WriteRune(ch)
		}
	}
	return html.UnescapeString(b.String())
}
