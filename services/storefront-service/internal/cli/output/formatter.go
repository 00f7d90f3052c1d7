package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v2"
)

// FormatType представляет тип форматирования вывода
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// Formatter интерфейс для форматирования вывода
type Formatter interface {
	Format(data interface{}) (string, error)
}

// Tabular реализуют ответы, у которых есть табличное представление
type Tabular interface {
	Table() *TableData
}

// TableData представляет данные для табличного вывода
type TableData struct {
	Headers []string
	Rows    [][]string
}

// NewTableData создает новые табличные данные
func NewTableData(headers ...string) *TableData {
	return &TableData{Headers: headers}
}

// AddRow добавляет строку
func (td *TableData) AddRow(cells ...string) {
	td.Rows = append(td.Rows, cells)
}

// TableFormatter форматирует данные в виде таблицы
type TableFormatter struct{}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) Format(data interface{}) (string, error) {
	switch v := data.(type) {
	case *TableData:
		return f.formatTable(v), nil
	case Tabular:
		return f.formatTable(v.Table()), nil
	case string:
		return v, nil
	default:
		// без табличного представления показываем YAML
		return NewYAMLFormatter().Format(v)
	}
}

func (f *TableFormatter) formatTable(data *TableData) string {
	if data == nil || len(data.Rows) == 0 {
		return "No data found"
	}

	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, strings.Join(data.Headers, "\t"))
	separators := make([]string, len(data.Headers))
	for i := range separators {
		separators[i] = strings.Repeat("-", len(data.Headers[i]))
	}
	fmt.Fprintln(w, strings.Join(separators, "\t"))

	for _, row := range data.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()

	return strings.TrimRight(builder.String(), "\n")
}

// JSONFormatter форматирует данные в JSON
type JSONFormatter struct {
	Indent bool
}

func NewJSONFormatter(indent bool) *JSONFormatter {
	return &JSONFormatter{Indent: indent}
}

func (f *JSONFormatter) Format(data interface{}) (string, error) {
	var (
		out []byte
		err error
	)
	if f.Indent {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(out), nil
}

// YAMLFormatter форматирует данные в YAML
type YAMLFormatter struct{}

func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format проходит через JSON, чтобы YAML использовал те же имена полей, что и API
func (f *YAMLFormatter) Format(data interface{}) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	var generic yaml.MapSlice
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		// не объект: массив или скаляр
		var value interface{}
		if err := yaml.Unmarshal(raw, &value); err != nil {
			return "", fmt.Errorf("failed to convert to yaml: %w", err)
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return strings.TrimRight(string(out), "\n"), nil
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return "", fmt.Errorf("failed to marshal yaml: %w", err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}

// GetFormatter возвращает форматтер по типу
func GetFormatter(format FormatType) (Formatter, error) {
	switch FormatType(strings.ToLower(string(format))) {
	case FormatTable, "":
		return NewTableFormatter(), nil
	case FormatJSON:
		return NewJSONFormatter(true), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Print форматирует данные и пишет результат в w
func Print(w io.Writer, format FormatType, data interface{}) error {
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}
	out, err := formatter.Format(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
