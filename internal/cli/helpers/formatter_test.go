package helpers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRow struct {
	Name  string `header:"NAME" json:"name"`
	Count int    `header:"COUNT" json:"count"`
	Extra string `json:"-"`
}

func TestNewFormatter(t *testing.T) {
	for _, f := range ListFormats {
		got, err := NewFormatter(f)
		require.NoError(t, err, f)
		assert.NotNil(t, got)
	}

	_, err := NewFormatter("xml")
	assert.Error(t, err)
}

func TestTableFormatter(t *testing.T) {
	rows := []*testRow{{Name: "GenFuture", Count: 2, Extra: "x"}, {Name: "ReadFutureState", Count: 0}}

	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(rows, &buf))

	assert.Equal(t, "NAME              COUNT\nGenFuture         2\nReadFutureState   0\n", buf.String())
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format([]testRow{}, &buf))
	assert.Empty(t, buf.String())
}

func TestCSVFormatter(t *testing.T) {
	rows := []testRow{{Name: "a,b", Count: 1}}

	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Format(rows, &buf))

	assert.Equal(t, "NAME,COUNT\n\"a,b\",1\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	rows := []testRow{{Name: "GenFuture", Count: 1, Extra: "hidden"}}

	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(rows, &buf))

	assert.JSONEq(t, `[{"name":"GenFuture","count":1}]`, buf.String())
}

func TestFormatter_RejectsNonSlice(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, (&TableFormatter{}).Format(testRow{}, &buf))
	assert.Error(t, (&CSVFormatter{}).Format([]int{1}, &buf))
}
