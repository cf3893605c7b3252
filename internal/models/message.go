package models

import "encoding/json"

// MessageType names a sync channel message
type MessageType string

const (
	MessageSlideChange  MessageType = "SLIDE_CHANGE"
	MessageRequestSlide MessageType = "REQUEST_SLIDE"
)

// Message is the unit exchanged between the presenter and displays.
// Slide is nil when a SLIDE_CHANGE asks displays to show the waiting state.
type Message struct {
	Type  MessageType
	Slide *QueueEntry
}

// SlideChange builds a SLIDE_CHANGE message for entry (which may be nil)
func SlideChange(entry *QueueEntry) Message {
	return Message{Type: MessageSlideChange, Slide: entry}
}

// RequestSlide builds a REQUEST_SLIDE message
func RequestSlide() Message {
	return Message{Type: MessageRequestSlide}
}

type slideChangeWire struct {
	Type  MessageType `json:"type"`
	Slide *QueueEntry `json:"slide"`
}

type requestWire struct {
	Type MessageType `json:"type"`
}

// MarshalJSON writes `slide` only for SLIDE_CHANGE, where it is always
// present (null included).
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Type == MessageSlideChange {
		return json.Marshal(slideChangeWire{Type: m.Type, Slide: m.Slide})
	}
	return json.Marshal(requestWire{Type: m.Type})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var wire slideChangeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	m.Type = wire.Type
	m.Slide = nil
	if wire.Type == MessageSlideChange {
		m.Slide = wire.Slide
	}
	return nil
}
