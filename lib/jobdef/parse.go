// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package jobdef reads, writes, validates, and fingerprints job
// documents: the files the generator hands to the pipeline executor.
//
// Documents are {"jobs": [...]} in one of three formats. JSON is the
// default; JSON input may be JSONC (comments and trailing commas are
// stripped before decoding, so hand-annotated fixtures parse). YAML
// uses gopkg.in/yaml.v3. CBOR uses lib/codec's deterministic encoding.
//
// The typical flow:
//
//  1. Encode (or Marshal): jobs → bytes in the chosen format
//  2. ReadFile or Parse: bytes → []job.Job
//  3. Validate and CheckSecrets: structural and credential checks
//  4. Digest: a BLAKE3 fingerprint of the canonical CBOR encoding
package jobdef

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/buildmatrix/lib/codec"
	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
)

// Format is a job document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat converts a format name (as typed on the command line)
// into a Format. "yml" is accepted as an alias for yaml.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: json, yaml, cbor)", name)
	}
}

// FormatFromPath infers the format from a file extension. Returns false
// when the extension is not recognized.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".cbor":
		return FormatCBOR, true
	default:
		return "", false
	}
}

// Marshal encodes jobs as a document in format. JSON output is indented
// with two spaces and ends with a newline.
func Marshal(jobs []job.Job, format Format) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Encode(&buffer, jobs, format); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Encode writes jobs as a document in format to w.
func Encode(w io.Writer, jobs []job.Job, format Format) error {
	if jobs == nil {
		jobs = []job.Job{}
	}
	document := job.Document{Jobs: jobs}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(document); err != nil {
			return fmt.Errorf("encoding job document as JSON: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(document); err != nil {
			return fmt.Errorf("encoding job document as YAML: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encoding job document as YAML: %w", err)
		}
	case FormatCBOR:
		if err := codec.NewEncoder(w).Encode(document); err != nil {
			return fmt.Errorf("encoding job document as CBOR: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// Parse decodes a job document in format.
func Parse(data []byte, format Format) ([]job.Job, error) {
	var document job.Document

	switch format {
	case FormatJSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &document); err != nil {
			return nil, fmt.Errorf("parsing job document: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("parsing job document: %w", err)
		}
	case FormatCBOR:
		if err := codec.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("parsing job document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	return document.Jobs, nil
}

// ReadFile reads a job document from disk, choosing the format from the
// file extension.
func ReadFile(path string) ([]job.Job, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("%s: cannot infer format from extension (use .json, .jsonc, .yaml, .yml, or .cbor)", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	jobs, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return jobs, nil
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) of the
// document's canonical encoding: the exact bytes [Digest] hashes, in
// readable form.
func Diagnose(jobs []job.Job) (string, error) {
	data, err := Marshal(jobs, FormatCBOR)
	if err != nil {
		return "", err
	}
	return codec.Diagnose(data)
}
