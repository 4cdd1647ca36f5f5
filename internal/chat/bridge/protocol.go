package bridge

import (
	"encoding/json"
	"fmt"
)

// Frame types exchanged with the puppet bridge.
const (
	FrameTypeRequest  = "request"
	FrameTypeResponse = "response"
	FrameTypeEvent    = "event"
)

// Request methods.
const (
	MethodSend          = "send"
	MethodSendImage     = "sendImage"
	MethodFindContact   = "findContact"
	MethodFindGroup     = "findGroup"
	MethodDownloadImage = "downloadImage"
)

// Event names emitted by the bridge.
const (
	EventScan    = "scan"
	EventLogin   = "login"
	EventMessage = "message"
)

// Frame is the wire envelope for every bridge message.
type Frame struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	OK      bool            `json:"ok,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`
}

// ErrorShape is the error body of a failed response frame.
type ErrorShape struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *ErrorShape) Error() string {
	return fmt.Sprintf("bridge error %s: %s", e.Code, e.Message)
}

// NewRequest builds a request frame with marshalled params.
func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return Frame{}, fmt.Errorf("marshalling %s params: %w", method, err)
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

// scanPayload is the body of a scan event.
type scanPayload struct {
	QRCode string `json:"qrcode"`
}

// loginPayload is the body of a login event.
type loginPayload struct {
	Name string `json:"name"`
}

// messagePayload is the body of a message event. Timestamp is Unix
// milliseconds; ImageID references a downloadable image for image messages.
type messagePayload struct {
	Sender    string `json:"sender"`
	Group     string `json:"group,omitempty"`
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	Timestamp int64  `json:"timestamp"`
	Self      bool   `json:"self,omitempty"`
	ImageID   string `json:"imageId,omitempty"`
}

// target addresses an outbound send.
type target struct {
	Kind string `json:"kind"` // "contact" | "group"
	Name string `json:"name"`
}

type sendParams struct {
	To   target `json:"to"`
	Text string `json:"text"`
}

type sendImageParams struct {
	To       target `json:"to"`
	URL      string `json:"url,omitempty"`
	Data     string `json:"data,omitempty"` // base64 when pre-downloaded
	Filename string `json:"filename,omitempty"`
}

type findParams struct {
	Name string `json:"name"`
}

type findResult struct {
	Found bool `json:"found"`
}

type downloadImageParams struct {
	ImageID string `json:"imageId"`
}

type downloadImageResult struct {
	Data string `json:"data"` // base64
}
