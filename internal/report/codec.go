package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Encode writes doc as indented JSON followed by a newline. The output is
// byte-for-byte stable for equal documents.
func Encode(w io.Writer, doc *Document) error {
	if err := json.MarshalWrite(w, doc, jsontext.WithIndent("  "), json.Deterministic(true)); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Marshal returns the encoded form of doc.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a document, rejecting unknown members.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.UnmarshalRead(r, &doc, json.RejectUnknownMembers(true)); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	if doc.Futures == nil {
		doc.Futures = []Future{}
	}
	return &doc, nil
}
