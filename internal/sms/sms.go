// Package sms answers inbound text messages with a fixed onboarding reply.
package sms

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultSiteURL is linked from the onboarding reply when none is configured.
const DefaultSiteURL = "https://your-app.vercel.app"

// ContentType is the media type of a Reply.
const ContentType = "text/xml"

// ConnectCommand is the keyword that triggers the onboarding reply.
const ConnectCommand = "connect"

// ErrInvalidMessage is returned when a reply cannot be encoded.
var ErrInvalidMessage = errors.New("reply is not valid UTF-8")

const genericTemplate = `👋 Hi there! Text "connect" to get started with Time Since - your personal time tracking app!`

var xmlText = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Responder maps commands to reply messages.
type Responder struct {
	SiteURL string
}

// Match reports whether command is the connect keyword, ignoring case and
// surrounding whitespace.
func Match(command string) bool {
	return strings.ToLower(strings.TrimSpace(command)) == ConnectCommand
}

// Respond returns the reply text for command.
func (r Responder) Respond(command string) string {
	if !Match(command) {
		return genericTemplate
	}
	site := r.SiteURL
	if site == "" {
		site = DefaultSiteURL
	}
	return "🎉 Welcome to Time Since!\n\nStart tracking your important moments:\n" +
		site +
		"\n\nCreate an account to save your trackers and share them with friends! ⏰"
}

// Reply returns the reply for command wrapped in a TwiML document.
func (r Responder) Reply(command string) ([]byte, error) {
	return Envelope(r.Respond(command))
}

// Envelope wraps message in a TwiML response with a single Message element.
func Envelope(message string) ([]byte, error) {
	if !utf8.ValidString(message) {
		return nil, ErrInvalidMessage
	}
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString("<Response>\n  <Message>")
	b.WriteString(xmlText.Replace(message))
	b.WriteString("</Message>\n</Response>")
	return []byte(b.String()), nil
}
