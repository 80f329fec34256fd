// Package render turns backend results into dashboard content.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"flipfit/internal/domain/action"
	"flipfit/internal/domain/backend"
)

// Missing is shown for a column the row does not have.
const Missing = "N/A"

// NoData is shown instead of a table for empty results.
const NoData = "No data found."

// alwaysHidden columns never appear, whatever the category.
var alwaysHidden = map[string]bool{"password": true}

// userHidden columns are personal details suppressed from user listings.
var userHidden = map[string]bool{"password": true, "city": true, "pinCode": true, "role": true}

// Table is a rendered grid: humanized headers and one string cell per header per row.
type Table struct {
	Keys    []string   `json:"keys"` // source keys, in column order
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// IsEmpty reports whether there is nothing to show.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// VisibleKeys applies the category's column policy to a key list, keeping order.
// PRE: none
// POST: Result never contains a hidden key for the category
func VisibleKeys(keys []string, category action.Category) []string {
	hidden := alwaysHidden
	if category == action.CategoryUsers {
		hidden = userHidden
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if !hidden[k] {
			out = append(out, k)
		}
	}
	return out
}

// BuildTable derives a table from an array of uniform objects.
// Columns come from the first element's keys; later elements missing a key get Missing.
// PRE: items came from backend.DecodeJSON
// POST: len(Headers) == len(VisibleKeys(first keys)); len(Rows) == len(items)
func BuildTable(items []any, category action.Category) Table {
	if len(items) == 0 {
		return Table{}
	}
	first, ok := items[0].(*backend.Object)
	if !ok {
		return scalarTable(items)
	}
	keys := VisibleKeys(first.Keys(), category)
	t := Table{Keys: keys, Headers: make([]string, len(keys)), Rows: make([][]string, 0, len(items))}
	for i, k := range keys {
		t.Headers[i] = Humanize(k)
	}
	for _, item := range items {
		obj, _ := item.(*backend.Object)
		row := make([]string, len(keys))
		for i, k := range keys {
			row[i] = Missing
			if obj == nil {
				continue
			}
			if v, ok := obj.Get(k); ok {
				row[i] = FormatValue(v)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// scalarTable lays out an array of non-objects as a single column.
func scalarTable(items []any) Table {
	t := Table{Keys: []string{"value"}, Headers: []string{"Value"}, Rows: make([][]string, len(items))}
	for i, item := range items {
		t.Rows[i] = []string{FormatValue(item)}
	}
	return t
}

// Humanize turns a camelCase key into a header: "fullName" becomes "Full Name".
// A space goes before every upper-case letter except a leading one.
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		if i == 0 {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatValue renders one cell.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}

var tableTemplate = template.Must(template.New("table").Parse(
	`{{if .IsEmpty}}<p class="no-data">` + NoData + `</p>{{else}}<div class="table-container"><table class="data-table">` +
		`<thead><tr>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>` +
		`<tbody>{{range .Rows}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>{{end}}</tbody>` +
		`</table></div>{{end}}`))

// HTML renders the table with every cell escaped.
func (t Table) HTML() template.HTML {
	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, t); err != nil {
		return template.HTML(template.HTMLEscapeString(err.Error()))
	}
	return template.HTML(buf.String())
}
