package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type product struct {
	ID    string  `json:"id"`
	Price float64 `json:"price"`
}

type productList []product

func (l productList) Table() *TableData {
	table := NewTableData("ID", "PRICE")
	for _, p := range l {
		table.AddRow(p.ID, "x")
	}
	return table
}

func TestTableFormatter(t *testing.T) {
	out, err := NewTableFormatter().Format(productList{{ID: "p-starter", Price: 199}, {ID: "p-pro"}})
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "--")
	assert.True(t, strings.HasPrefix(lines[2], "p-starter"))

	out, err = NewTableFormatter().Format(productList{})
	require.NoError(t, err)
	assert.Equal(t, "No data found", out)
}

func TestTableFormatter_FallsBackToYAML(t *testing.T) {
	out, err := NewTableFormatter().Format(product{ID: "p1", Price: 10})
	require.NoError(t, err)
	assert.Equal(t, "id: p1\nprice: 10", out)
}

func TestJSONFormatter(t *testing.T) {
	out, err := NewJSONFormatter(false).Format(product{ID: "p1", Price: 10})
	require.NoError(t, err)
	assert.Equal(t, `{"id":"p1","price":10}`, out)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := NewYAMLFormatter().Format(map[string]interface{}{"brand": map[string]string{"name": "Hidden Shop"}})
	require.NoError(t, err)
	assert.Equal(t, "brand:\n  name: Hidden Shop", out)

	out, err = NewYAMLFormatter().Format([]string{"bKash", "Nagad"})
	require.NoError(t, err)
	assert.Equal(t, "- bKash\n- Nagad", out)
}

func TestGetFormatter(t *testing.T) {
	for _, format := range []FormatType{"", FormatTable, FormatJSON, FormatYAML, "JSON"} {
		_, err := GetFormatter(format)
		assert.NoError(t, err, format)
	}

	_, err := GetFormatter("xml")
	assert.EqualError(t, err, "unsupported output format: xml")
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatJSON, []int{1, 2}))
	assert.JSONEq(t, `[1,2]`, buf.String())
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
}
