package reminder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	FieldID    = "id"
	FieldTime  = "time"
	FieldTitle = "title"

	// TimeLayout is the local timestamp format stored in the time field.
	TimeLayout = "2006-01-02 15:04:05"
)

// ErrInvalidPayload is returned when a reminder body is not a JSON object.
var ErrInvalidPayload = errors.New("reminder must be a JSON object")

// Reminder is a free-form record: whatever fields the client sent plus the
// server-assigned id and time.
type Reminder map[string]any

// Parse decodes a JSON object into a Reminder. Numbers are kept as
// json.Number so client values round-trip unchanged.
func Parse(data []byte) (Reminder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var r Reminder
	if err := dec.Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if r == nil {
		return nil, ErrInvalidPayload
	}
	if err := expectEOF(dec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return r, nil
}

// ParseList decodes a JSON array of reminders, as kept in the reminders file.
// Anything after the array other than whitespace is an error.
func ParseList(data []byte) ([]Reminder, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var reminders []Reminder
	if err := dec.Decode(&reminders); err != nil {
		return nil, err
	}
	if err := expectEOF(dec); err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return reminders, nil
}

var errTrailingData = errors.New("trailing data after JSON value")

// expectEOF reports an error unless dec has nothing left but whitespace.
func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// Stamp returns a copy of fields with id and time set. Client supplied id or
// time keys are overwritten.
func Stamp(fields Reminder, id int, at time.Time) Reminder {
	out := make(Reminder, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out[FieldID] = id
	out[FieldTime] = at.Format(TimeLayout)
	return out
}

// Fields returns a copy without the server-assigned keys.
func (r Reminder) Fields() Reminder {
	out := make(Reminder, len(r))
	for k, v := range r {
		if k == FieldID || k == FieldTime {
			continue
		}
		out[k] = v
	}
	return out
}

// ID returns the numeric id, or 0 when missing or not a number.
func (r Reminder) ID() int {
	switch v := r[FieldID].(type) {
	case int:
		return v
	case json.Number:
		n, err := strconv.Atoi(v.String())
		if err != nil {
			return 0
		}
		return n
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Time returns the stored timestamp string.
func (r Reminder) Time() string {
	s, _ := r[FieldTime].(string)
	return s
}

// Title returns the title field the voice client uses, falling back to the
// JSON of the client fields.
func (r Reminder) Title() string {
	if s, ok := r[FieldTitle].(string); ok && s != "" {
		return s
	}
	data, err := json.Marshal(r.Fields())
	if err != nil {
		return ""
	}
	return string(data)
}
