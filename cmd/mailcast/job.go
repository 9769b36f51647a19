package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/mailcast/pkg/dispatch"
	"github.com/dmitrymomot/mailcast/pkg/mailer"
	"github.com/dmitrymomot/mailcast/pkg/namekey"
)

var (
	errNoRows          = errors.New("rows file is required")
	errNoTemplate      = errors.New("template file is required")
	errNoRecipient     = errors.New("recipient column is required")
	errUnsupportedRows = errors.New("unsupported rows file, want .csv or .json")
)

// jobSpec describes an offline job. It is read from a YAML job file and then
// overridden by command line flags. Relative paths in a job file are resolved
// against the job file's directory.
type jobSpec struct {
	ExtraContext map[string]any `yaml:"extraContext"`
	DelayMs      *float64       `yaml:"delayMs"`
	JitterMs     *float64       `yaml:"jitterMs"`
	Rows         string         `yaml:"rows"`
	Template     string         `yaml:"template"`
	Subject      string         `yaml:"subject"`
	Format       string         `yaml:"format"`
	Attachments  string         `yaml:"attachments"`
	Mapping      struct {
		Recipient string `yaml:"recipient"`
		Name      string `yaml:"name"`
		Subject   string `yaml:"subject"`
	} `yaml:"mapping"`
}

func loadJobFile(path string) (jobSpec, error) {
	var spec jobSpec

	raw, err := os.ReadFile(path)
	if err != nil {
		return spec, fmt.Errorf("read job file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return spec, fmt.Errorf("parse job file: %w", err)
	}

	dir := filepath.Dir(path)
	for _, p := range []*string{&spec.Rows, &spec.Template, &spec.Attachments} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	return spec, nil
}

// build loads every file the job file points at and assembles the dispatch job.
func (s jobSpec) build() (dispatch.Job, error) {
	switch {
	case s.Rows == "":
		return dispatch.Job{}, errNoRows
	case s.Template == "":
		return dispatch.Job{}, errNoTemplate
	case s.Mapping.Recipient == "":
		return dispatch.Job{}, errNoRecipient
	}

	rows, err := loadRows(s.Rows)
	if err != nil {
		return dispatch.Job{}, err
	}

	raw, err := os.ReadFile(s.Template)
	if err != nil {
		return dispatch.Job{}, fmt.Errorf("read template: %w", err)
	}
	tpl, err := mailer.ParseTemplate(raw)
	if err != nil {
		return dispatch.Job{}, fmt.Errorf("template %s: %w", s.Template, err)
	}

	subject := s.Subject
	if subject == "" {
		subject = tpl.Subject()
	}

	format := mailer.Format(strings.ToLower(s.Format))
	if format == "" {
		format = formatFromTemplate(s.Template, tpl)
	}

	var index dispatch.AttachmentIndex
	if s.Attachments != "" {
		if index, err = indexAttachmentDir(s.Attachments); err != nil {
			return dispatch.Job{}, err
		}
	}

	return dispatch.Job{
		Rows: rows,
		Mapping: dispatch.Mapping{
			Recipient: s.Mapping.Recipient,
			Name:      s.Mapping.Name,
			Subject:   s.Mapping.Subject,
		},
		Template:        tpl.Body,
		SubjectTemplate: subject,
		ExtraContext:    s.ExtraContext,
		Attachments:     index,
		DelayMs:         s.DelayMs,
		JitterMs:        s.JitterMs,
		Format:          format,
	}, nil
}

// formatFromTemplate takes "format" from frontmatter, then the file extension.
func formatFromTemplate(path string, tpl *mailer.Template) mailer.Format {
	if v, ok := tpl.Metadata["format"].(string); ok && v != "" {
		return mailer.Format(strings.ToLower(v))
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return mailer.FormatMarkdown
	default:
		return mailer.FormatHTML
	}
}

// loadRows reads a CSV file with a header line, or a JSON array of objects.
func loadRows(path string) ([]dispatch.Row, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err := gocsv.CSVToMaps(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse csv rows: %w", err)
		}
		rows := make([]dispatch.Row, len(records))
		for i, rec := range records {
			rows[i] = dispatch.Row(rec)
		}
		return rows, nil
	case ".json":
		var rows []dispatch.Row
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("parse json rows: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedRows, path)
	}
}

// indexAttachmentDir indexes every regular file in dir under the name key of its
// base name, so "José Rizal.pdf" attaches to the row named "jose rizal".
// Several files for one name ("Ana.pdf", "Ana.ics") all attach.
func indexAttachmentDir(dir string) (dispatch.AttachmentIndex, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read attachment dir: %w", err)
	}

	index := make(dispatch.AttachmentIndex)
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}

		ext := filepath.Ext(e.Name())
		key := namekey.Normalize(strings.TrimSuffix(e.Name(), ext))
		if key == "" {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read attachment %s: %w", e.Name(), err)
		}

		index[key] = append(index[key], dispatch.Attachment{
			Filename:      e.Name(),
			ContentType:   mime.TypeByExtension(ext),
			ContentBase64: base64.StdEncoding.EncodeToString(content),
		})
	}
	return index, nil
}
