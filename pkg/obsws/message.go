package obsws

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	FieldRequestType    = "request-type"
	FieldMessageID      = "message-id"
	FieldUpdateType     = "update-type"
	FieldStatus         = "status"
	FieldError          = "error"
	FieldStreamTimecode = "stream-timecode"
	FieldRecTimecode    = "rec-timecode"

	StatusOK    = "ok"
	StatusError = "error"
)

// Args are the request arguments, flattened into the top level of the request object.
type Args map[string]any

// Response is a frame carrying a message-id. Only the id is interpreted by the session,
// the rest of the frame is kept in Raw for the caller to decode.
type Response struct {
	ID  string
	Raw json.RawMessage
}

func (r *Response) Status() string {
	return gjson.GetBytes(r.Raw, FieldStatus).String()
}

func (r *Response) ErrorMessage() string {
	return gjson.GetBytes(r.Raw, FieldError).String()
}

// Field returns a single top-level field of the response.
func (r *Response) Field(name string) gjson.Result {
	return gjson.GetBytes(r.Raw, gjson.Escape(name))
}

func (r *Response) Unmarshal(v any) error {
	return json.Unmarshal(r.Raw, v)
}

// Event is a frame pushed by the server without a message-id.
type Event struct {
	Type           string
	StreamTimecode string
	RecTimecode    string
	Raw            json.RawMessage
}

func (e Event) Unmarshal(v any) error {
	return json.Unmarshal(e.Raw, v)
}

func encodeRequest(requestType, id string, args Args) ([]byte, error) {
	data := []byte("{}")

	if len(args) > 0 {
		var err error

		data, err = json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal args: %w", err)
		}
	}

	// request-type и message-id выставляются последними, аргументы не могут их переопределить.
	data, err := sjson.SetBytes(data, FieldRequestType, requestType)
	if err != nil {
		return nil, err
	}

	return sjson.SetBytes(data, FieldMessageID, id)
}

// decodeFrame classifies an inbound frame: a frame with message-id is a response,
// a frame with a string update-type is an event, anything else is a decode error.
func decodeFrame(data []byte) (*Response, *Event, error) {
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("%w: malformed json", ErrDecode)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil, fmt.Errorf("%w: frame is not a json object", ErrDecode)
	}

	if id := root.Get(FieldMessageID); id.Exists() {
		if id.Type != gjson.String && id.Type != gjson.Number {
			return nil, nil, fmt.Errorf("%w: unexpected %s type %s", ErrDecode, FieldMessageID, id.Type)
		}

		return &Response{ID: id.String(), Raw: data}, nil, nil
	}

	kind := root.Get(FieldUpdateType)
	if kind.Type != gjson.String {
		return nil, nil, fmt.Errorf("%w: frame has neither %s nor %s", ErrDecode, FieldMessageID, FieldUpdateType)
	}

	return nil, &Event{
		Type:           kind.String(),
		StreamTimecode: root.Get(FieldStreamTimecode).String(),
		RecTimecode:    root.Get(FieldRecTimecode).String(),
		Raw:            data,
	}, nil
}
