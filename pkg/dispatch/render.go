package dispatch

import "github.com/dmitrymomot/mailcast/pkg/mailer"

// SubjectSource tells where a message subject came from.
type SubjectSource int

const (
	SubjectNone SubjectSource = iota
	SubjectFromTemplate
	SubjectFromColumn
)

func (s SubjectSource) String() string {
	switch s {
	case SubjectFromTemplate:
		return "template"
	case SubjectFromColumn:
		return "column"
	default:
		return "none"
	}
}

// Content is the rendered body and subject for one row.
type Content struct {
	Body          mailer.Rendered
	Subject       mailer.Rendered
	SubjectSource SubjectSource
}

// RenderContext merges row fields, then extra, then the "name" and "recipient"
// aliases. Later sources win, so the aliases always hold the mapped column values.
func RenderContext(row Row, mapping Mapping, extra map[string]any) map[string]any {
	ctx := make(map[string]any, len(row)+len(extra)+2)
	for k, v := range row {
		ctx[k] = v
	}
	for k, v := range extra {
		ctx[k] = v
	}
	ctx["name"] = row[mapping.Name]
	ctx["recipient"] = row[mapping.Recipient]
	return ctx
}

// RenderMessage renders the body and resolves the subject for one row.
//
// Subject precedence: a non-empty subjectTpl is rendered with the same fallback rules
// as the body; otherwise a non-empty value in the mapped subject column is used
// verbatim; otherwise the subject is empty.
func RenderMessage(bodyTpl, subjectTpl string, row Row, mapping Mapping, extra map[string]any) Content {
	data := RenderContext(row, mapping, extra)

	c := Content{Body: mailer.RenderText(bodyTpl, data)}
	switch {
	case subjectTpl != "":
		c.Subject = mailer.RenderText(subjectTpl, data)
		c.SubjectSource = SubjectFromTemplate
	case mapping.Subject != "" && row[mapping.Subject] != "":
		c.Subject = mailer.Rendered{Text: row[mapping.Subject], Outcome: mailer.OutcomeRendered}
		c.SubjectSource = SubjectFromColumn
	}
	return c
}
