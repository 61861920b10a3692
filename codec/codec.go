// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

// Package codec implements the format-specific boundary between raw bytes
// and an element.Element tree. The mapping engine never touches a byte
// stream directly; a Codec is the thin adapter that lets it interchange
// with JSON, YAML, TOML and BSON files.
package codec

import (
	"io"

	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/element"
)

// Codec decodes/encodes one textual or binary configuration format into
// the untyped element tree.
type Codec interface {
	Decode(r io.Reader) (element.Element, error)
	Encode(e element.Element, w io.Writer) error
	// Extensions lists the file extensions (with leading dot) this codec
	// claims, used by ByExtension.
	Extensions() []string
}

var ErrUnknownExtension = errors.New("codec: no codec registered for extension")

// Factory is the registration unit, modeled on internal/compose/registry.go's
// EngineFactory: a zero-arg constructor rather than a bare instance, so a
// caller can register a codec whose zero value isn't the desired
// configuration (codec.JSON{Lenient: true}, for instance).
type Factory func() Codec

var registry = map[string]Factory{}

// Register associates a Factory with one or more file extensions (each
// including its leading dot, e.g. ".json"). Later registrations for the
// same extension replace earlier ones.
func Register(factory Factory, extensions ...string) {
	for _, ext := range extensions {
		registry[ext] = factory
	}
}

// ByExtension looks up a codec by file extension (e.g. filepath.Ext's
// output, including the leading dot).
func ByExtension(ext string) (Codec, bool) {
	factory, ok := registry[ext]
	if !ok {
		return nil, false
	}
	return factory(), true
}

func init() {
	Register(func() Codec { return JSON{} }, ".json")
	Register(func() Codec { return YAML{} }, ".yaml", ".yml")
	Register(func() Codec { return TOML{} }, ".toml")
	Register(func() Codec { return BSON{} }, ".bson")
}
