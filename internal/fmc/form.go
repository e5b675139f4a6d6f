// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Form is a multipart/form-data request body. Fields are written in the
// order they were added, files after all fields.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	name        string
	contentType string
	content     io.Reader
}

// AddField adds a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, formField{name, value})
	return f
}

// AddJSON adds a field holding the JSON encoding of v.
func (f *Form) AddJSON(name string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("fmc: failed to marshal form field %s: %w", name, err)
	}
	f.AddField(name, string(b))
	return nil
}

// AddFile adds a file part.
func (f *Form) AddFile(field, name, contentType string, content io.Reader) *Form {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	f.files = append(f.files, formFile{field, name, contentType, content})
	return f
}

// FieldNames returns the names of all parts for logging.
func (f *Form) FieldNames() []string {
	names := make([]string, 0, len(f.fields)+len(f.files))
	for _, fd := range f.fields {
		names = append(names, fd.name)
	}
	for _, fl := range f.files {
		names = append(names, fl.field)
	}
	return names
}

// Encode writes the form and returns the body and its content type.
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, fd := range f.fields {
		if err := w.WriteField(fd.name, fd.value); err != nil {
			return nil, "", fmt.Errorf("fmc: failed to write form field %s: %w", fd.name, err)
		}
	}
	for _, fl := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(fl.field), quoteEscaper.Replace(fl.name)))
		h.Set("Content-Type", fl.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("fmc: failed to create form file %s: %w", fl.field, err)
		}
		if _, err := io.Copy(part, fl.content); err != nil {
			return nil, "", fmt.Errorf("fmc: failed to write form file %s: %w", fl.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("fmc: failed to close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
