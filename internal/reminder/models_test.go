package reminder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	r, err := Parse([]byte(`{"label":"call mom","count":12345678901234567890,"nested":{"a":[1,2]}}`))
	require.NoError(t, err)

	assert.Equal(t, "call mom", r["label"])
	assert.Equal(t, json.Number("12345678901234567890"), r["count"])
	assert.Contains(t, r, "nested")
}

func TestParseRejectsNonObjects(t *testing.T) {
	for _, body := range []string{``, `null`, `[]`, `"text"`, `42`, `{"a":1} {"b":2}`, `{`, `{"a":1}]`, `{"a":1} garbage`} {
		_, err := Parse([]byte(body))
		assert.ErrorIs(t, err, ErrInvalidPayload, "body %q", body)
	}
}

func TestParseAllowsTrailingWhitespace(t *testing.T) {
	r, err := Parse([]byte("{\"a\":1}\n\t "))
	require.NoError(t, err)
	assert.Equal(t, json.Number("1"), r["a"])
}

func TestParseList(t *testing.T) {
	list, err := ParseList([]byte(`[{"title":"a","id":1,"time":"x"}]` + "\n"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].ID())

	empty, err := ParseList([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, data := range []string{`[{"id":1}] garbage`, `[{"id":1}]]`, `[] []`, `{"id":1}`, ``} {
		_, err := ParseList([]byte(data))
		assert.Error(t, err, "data %q", data)
	}
}

func TestStampOverridesServerFields(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fields := Reminder{"label": "call mom", "id": 99, "time": "yesterday"}

	r := Stamp(fields, 1, at)

	assert.Equal(t, Reminder{"label": "call mom", "id": 1, "time": "2024-01-01 10:00:00"}, r)
	assert.Equal(t, 99, fields["id"], "input must not be mutated")
	assert.Equal(t, Reminder{"label": "call mom"}, r.Fields())
}

func TestAccessors(t *testing.T) {
	assert.Equal(t, 3, Reminder{"id": json.Number("3")}.ID())
	assert.Equal(t, 4, Reminder{"id": float64(4)}.ID())
	assert.Equal(t, 0, Reminder{"id": "x"}.ID())

	assert.Equal(t, "buy milk", Reminder{"title": "buy milk", "id": 1}.Title())
	assert.Equal(t, `{"label":"call mom"}`, Reminder{"label": "call mom", "id": 1, "time": "t"}.Title())
}
