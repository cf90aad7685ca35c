package shared

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := ParseID(raw)
		assert.True(t, IsValidation(err), "input %q", raw)
	}
}

func TestDate_JSON(t *testing.T) {
	type payload struct {
		Day Date `json:"day"`
	}

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"day":"1895-12-28"}`), &p))
	assert.Equal(t, NewDate(1895, time.December, 28), p.Day)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"1895-12-28"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"day":null}`), &p))
	assert.True(t, p.Day.IsZero())

	out, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"day":"28.12.1895"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"day":18951228}`), &p))
}

func TestDate_Ordering(t *testing.T) {
	early := MustParseDate("1895-12-27")
	cinema := MustParseDate("1895-12-28")

	assert.True(t, early.Before(cinema))
	assert.True(t, cinema.After(early))
	assert.True(t, cinema.Equal(DateOf(time.Date(1895, 12, 28, 23, 59, 0, 0, time.UTC))))
	assert.Equal(t, "1895-12-28", cinema.String())
	assert.Empty(t, Date{}.String())
}
