package mailer

import (
	"fmt"
	"strings"
	"text/template"
	"unicode"
)

// Outcome reports which branch RenderText took.
type Outcome int

const (
	// OutcomeRendered means the template executed against the context.
	OutcomeRendered Outcome = iota
	// OutcomeFallback means rendering failed and Text holds the original template.
	OutcomeFallback
)

func (o Outcome) String() string {
	if o == OutcomeFallback {
		return "fallback"
	}
	return "rendered"
}

// Rendered is the result of RenderText.
type Rendered struct {
	Err     error // set only for OutcomeFallback
	Text    string
	Outcome Outcome
}

// Fallback reports whether Text is the unrendered template.
func (r Rendered) Fallback() bool {
	return r.Outcome == OutcomeFallback
}

// reserved holds template builtins and keywords that context keys must not shadow.
var reserved = map[string]struct{}{
	"and": {}, "call": {}, "html": {}, "index": {}, "slice": {}, "js": {}, "len": {},
	"not": {}, "or": {}, "print": {}, "printf": {}, "println": {}, "urlquery": {},
	"eq": {}, "ge": {}, "gt": {}, "le": {}, "lt": {}, "ne": {},
	"if": {}, "else": {}, "end": {}, "range": {}, "with": {}, "define": {}, "template": {},
	"block": {}, "break": {}, "continue": {}, "nil": {}, "true": {}, "false": {},
}

// RenderText interpolates data into tpl. It never fails: on any parse or execution
// error, including a reference to a key missing from data, the result carries
// OutcomeFallback and the original tpl as Text.
//
// Values are substituted verbatim, without HTML escaping, because the same
// renderer serves subjects and bodies. A value such as "Tom & Jerry <x>" lands
// in an HTML body as markup; callers that need escaping apply the "html"
// builtin in the template: {{ html (name) }}.
func RenderText(tpl string, data map[string]any) (r Rendered) {
	defer func() {
		if p := recover(); p != nil {
			r = fallback(tpl, fmt.Errorf("%w: panic: %v", ErrRender, p))
		}
	}()

	t, err := template.New("text").
		Option("missingkey=error").
		Funcs(contextFuncs(data)).
		Parse(tpl)
	if err != nil {
		return fallback(tpl, fmt.Errorf("%w: %w", ErrRender, err))
	}

	var buf strings.Builder
	if err := t.Execute(&buf, data); err != nil {
		return fallback(tpl, fmt.Errorf("%w: %w", ErrRender, err))
	}

	return Rendered{Text: buf.String(), Outcome: OutcomeRendered}
}

func fallback(tpl string, err error) Rendered {
	return Rendered{Text: tpl, Outcome: OutcomeFallback, Err: err}
}

// contextFuncs exposes each identifier key as a niladic function so "{{ name }}" works.
func contextFuncs(data map[string]any) template.FuncMap {
	funcs := make(template.FuncMap, len(data))
	for k, v := range data {
		if !isIdentifier(k) {
			continue
		}
		if _, ok := reserved[k]; ok {
			continue
		}
		funcs[k] = func() any { return v }
	}
	return funcs
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
