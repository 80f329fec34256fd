package render

import (
	"encoding/json"
	"html/template"

	"flipfit/internal/domain/action"
	"flipfit/internal/domain/backend"
)

// Kind says how an Outcome is displayed.
type Kind string

const (
	KindTable     Kind = "table"
	KindJSON      Kind = "json"
	KindText      Kind = "text"
	KindCurrency  Kind = "currency"
	KindError     Kind = "error"
	KindCancelled Kind = "cancelled"
)

// CancelledNotice is shown when an action is abandoned for lack of input.
const CancelledNotice = "Action cancelled."

// Outcome is the content that replaces the dashboard content area after an action.
type Outcome struct {
	Kind    Kind   `json:"kind"`
	Heading string `json:"heading,omitempty"`
	Table   *Table `json:"table,omitempty"`
	Text    string `json:"text,omitempty"`
}

// FromResult chooses the presentation for a successful call.
// Arrays become tables, plain strings stay text, anything else is pretty-printed JSON.
// PRE: res is the result of a 2xx response
// POST: Kind is one of table, text, currency, json
func FromResult(res backend.Result, category action.Category, mode action.RenderMode, heading string) Outcome {
	if mode == action.RenderCurrency {
		return Outcome{Kind: KindCurrency, Heading: heading, Text: "$" + currencyText(res)}
	}
	if items, ok := res.Array(); ok {
		t := BuildTable(items, category)
		return Outcome{Kind: KindTable, Heading: heading, Table: &t}
	}
	if msg, ok := res.Message(); ok {
		return Outcome{Kind: KindText, Heading: heading, Text: msg}
	}
	return Outcome{Kind: KindJSON, Heading: heading, Text: PrettyJSON(res.Value)}
}

// Failure renders an error inline, verbatim.
func Failure(err error) Outcome {
	return Outcome{Kind: KindError, Text: "Error: " + err.Error()}
}

// Cancelled renders the notice for an abandoned action.
func Cancelled() Outcome {
	return Outcome{Kind: KindCancelled, Text: CancelledNotice}
}

// IsFailure reports whether the outcome is an error display.
func (o Outcome) IsFailure() bool {
	return o.Kind == KindError
}

// TableHTML renders the table part, or nothing for non-table outcomes.
func (o Outcome) TableHTML() template.HTML {
	if o.Table == nil {
		return ""
	}
	return o.Table.HTML()
}

// PrettyJSON indents a decoded value with two spaces.
func PrettyJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return FormatValue(v)
	}
	return string(b)
}

func currencyText(res backend.Result) string {
	if msg, ok := res.Message(); ok {
		return msg
	}
	return FormatValue(res.Value)
}
