// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the standard CBOR encoding configuration for
// generated job documents.
//
// Job documents are emitted in three formats. JSON and YAML are the
// human-facing formats consumed by most executors; CBOR is the compact
// binary form used for handoff to executors that ingest CBOR, and the
// canonical byte form that document digests are computed over.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same logical document always produces identical bytes, which is what
// makes a digest of the encoding a stable fingerprint.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
// fxamacker/cbor reads `json` tags when `cbor` tags are absent, so the
// wire records in lib/schema/job carry only `json` (and `yaml`) tags
// and serialize with identical field names in every format. Never add
// a `cbor` tag alongside a `json` tag on the same field.
package codec
