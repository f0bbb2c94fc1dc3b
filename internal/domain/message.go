package domain

import "github.com/google/uuid"

// Message is one unit of data feed output
type Message struct {
	// ID uniquely identifies the message for log correlation
	ID string `json:"id"`
	// Text is the message payload
	Text string `json:"text"`
	// Source names the feed that produced the message
	Source string `json:"source,omitempty"`
}

// NewMessage creates a message with a fresh ID
func NewMessage(text, source string) Message {
	return Message{
		ID:     uuid.NewString(),
		Text:   text,
		Source: source,
	}
}

// Texts returns the text of every message, in order
func Texts(msgs []Message) []string {
	texts := make([]string, len(msgs))
	for i, m := range msgs {
		texts[i] = m.Text
	}
	return texts
}
