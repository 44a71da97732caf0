// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package job

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/buildmatrix/lib/codec"
)

// EnvValue is the value of a step environment variable: either a
// literal string embedded in the job definition, or the secret marker
// telling the executor to supply the value out-of-band.
//
// The zero value is the empty literal.
type EnvValue struct {
	literal string
	secret  bool
}

// secretMarker is the wire form of a secret environment value.
type secretMarker struct {
	Secret bool `json:"secret" yaml:"secret"`
}

// Literal returns an environment value embedded verbatim in the job
// definition.
func Literal(value string) EnvValue {
	return EnvValue{literal: value}
}

// Secret returns the secret marker. The executor substitutes the
// credential registered under the variable's name.
func Secret() EnvValue {
	return EnvValue{secret: true}
}

// IsSecret reports whether this is the secret marker.
func (e EnvValue) IsSecret() bool {
	return e.secret
}

// Literal returns the literal value. Returns "" for the secret marker.
func (e EnvValue) Literal() string {
	return e.literal
}

// String returns the literal value, or "<secret>" for the marker.
func (e EnvValue) String() string {
	if e.secret {
		return "<secret>"
	}
	return e.literal
}

// MarshalJSON encodes a literal as a JSON string and the secret marker
// as {"secret":true}.
func (e EnvValue) MarshalJSON() ([]byte, error) {
	if e.secret {
		return json.Marshal(secretMarker{Secret: true})
	}
	return json.Marshal(e.literal)
}

// UnmarshalJSON accepts a JSON string or exactly {"secret": true}.
func (e *EnvValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		decoder := json.NewDecoder(bytes.NewReader(trimmed))
		decoder.DisallowUnknownFields()
		var marker secretMarker
		if err := decoder.Decode(&marker); err != nil {
			return fmt.Errorf("env value object must be {\"secret\": true}: %w", err)
		}
		return e.setMarker(marker)
	}

	var literal string
	if err := json.Unmarshal(trimmed, &literal); err != nil {
		return fmt.Errorf("env value must be a string or {\"secret\": true}: %w", err)
	}
	*e = Literal(literal)
	return nil
}

// MarshalYAML encodes a literal as a YAML string and the secret marker
// as a mapping with secret: true.
func (e EnvValue) MarshalYAML() (any, error) {
	if e.secret {
		return secretMarker{Secret: true}, nil
	}
	return e.literal, nil
}

// UnmarshalYAML accepts a scalar (taken as its literal text, so an
// unquoted 10.13 stays "10.13") or a mapping equal to secret: true.
func (e *EnvValue) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = Literal(node.Value)
		return nil
	case yaml.MappingNode:
		for index := 0; index+1 < len(node.Content); index += 2 {
			if key := node.Content[index].Value; key != "secret" {
				return fmt.Errorf("line %d: env value mapping has unexpected key %q (only secret: true is allowed)", node.Line, key)
			}
		}
		var marker secretMarker
		if err := node.Decode(&marker); err != nil {
			return fmt.Errorf("line %d: env value mapping: %w", node.Line, err)
		}
		return e.setMarker(marker)
	default:
		return fmt.Errorf("line %d: env value must be a string or secret: true", node.Line)
	}
}

// MarshalCBOR encodes a literal as a CBOR text string and the secret
// marker as a one-entry map.
func (e EnvValue) MarshalCBOR() ([]byte, error) {
	if e.secret {
		return codec.Marshal(secretMarker{Secret: true})
	}
	return codec.Marshal(e.literal)
}

// UnmarshalCBOR accepts a text string or a map equal to {"secret": true}.
func (e *EnvValue) UnmarshalCBOR(data []byte) error {
	var decoded any
	if err := codec.Unmarshal(data, &decoded); err != nil {
		return err
	}
	switch typed := decoded.(type) {
	case string:
		*e = Literal(typed)
		return nil
	case map[string]any:
		secret, ok := typed["secret"].(bool)
		if !ok || len(typed) != 1 {
			return fmt.Errorf("env value map must be {\"secret\": true}, got %v", typed)
		}
		return e.setMarker(secretMarker{Secret: secret})
	default:
		return fmt.Errorf("env value must be a string or {\"secret\": true}, got %T", decoded)
	}
}

func (e *EnvValue) setMarker(marker secretMarker) error {
	if !marker.Secret {
		return fmt.Errorf("env value object must be {\"secret\": true}; use a string for literal values")
	}
	*e = Secret()
	return nil
}
