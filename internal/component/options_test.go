package component

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_String(t *testing.T) {
	opts := Options{"text": "hello", "count": 3, "flag": true, "list": []any{"a"}, "nothing": nil}

	s, err := opts.String("text")
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	s, err = opts.String("count")
	require.NoError(t, err)
	assert.Equal(t, "3", s)

	_, err = opts.String("missing")
	var missing *MissingOptionError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "missing", missing.Option)

	_, err = opts.String("nothing")
	require.ErrorAs(t, err, &missing)

	_, err = opts.String("list")
	var invalid *InvalidOptionError
	require.ErrorAs(t, err, &invalid)

	s, err = opts.StringOr("missing", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", s)
}

func TestOptions_Strings(t *testing.T) {
	opts := Options{"one": "a", "many": []any{"a", 2}, "bad": []any{map[string]any{}}}

	got, err := opts.Strings("one")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)

	got, err = opts.Strings("many")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "2"}, got)

	_, err = opts.Strings("bad")
	assert.Error(t, err)
	_, err = opts.Strings("missing")
	assert.Error(t, err)
}

func TestOptions_Numbers(t *testing.T) {
	opts := Options{"int": 4, "float": 2.0, "frac": 2.5, "str": "7", "bool": "yes", "b": true, "bs": "false"}

	n, err := opts.IntOr("int", 0)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = opts.IntOr("float", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = opts.IntOr("str", 0)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = opts.IntOr("missing", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	_, err = opts.IntOr("frac", 0)
	assert.Error(t, err)

	b, err := opts.BoolOr("b", false)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = opts.BoolOr("bs", true)
	require.NoError(t, err)
	assert.False(t, b)

	_, err = opts.BoolOr("bool", false)
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      any
		want    time.Duration
		wantErr bool
	}{
		{10, 10 * time.Second, false},
		{int64(2), 2 * time.Second, false},
		{0.5, 500 * time.Millisecond, false},
		{"1m30s", 90 * time.Second, false},
		{"soon", 0, true},
		{-1, 0, true},
		{true, 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		require.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.want, got)
	}

	d, err := Options{}.DurationOr("timeout", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	_, err = Options{"timeout": "x"}.DurationOr("timeout", 0)
	var invalid *InvalidOptionError
	assert.ErrorAs(t, err, &invalid)
}

func TestOptions_List(t *testing.T) {
	opts := Options{
		"items": []any{
			map[string]any{"colour": "red"},
			map[any]any{"colour": "blue"},
		},
		"scalar": "x",
		"mixed":  []any{"x"},
	}

	items, err := opts.List("items")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "blue", items[1]["colour"])

	items, err = opts.List("missing")
	require.NoError(t, err)
	assert.Nil(t, items)

	_, err = opts.List("scalar")
	assert.Error(t, err)
	_, err = opts.List("mixed")
	assert.Error(t, err)
}
