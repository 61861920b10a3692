// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package codec

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/element"
)

// TOML decodes/encodes element trees via BurntSushi/toml, named from the
// retrieved pack's other_examples dependency surface rather than the
// teacher's own go.mod - the teacher carries no TOML library.
type TOML struct{}

func (c TOML) Extensions() []string { return []string{".toml"} }

func (c TOML) Decode(r io.Reader) (element.Element, error) {
	var v map[string]any
	if _, err := toml.NewDecoder(r).Decode(&v); err != nil {
		return nil, errors.Wrap(err, "codec: decoding toml")
	}
	return fromAny(v), nil
}

func (c TOML) Encode(e element.Element, w io.Writer) error {
	v := toAny(e)
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return errors.Wrap(err, "codec: encoding toml")
	}
	_, err := w.Write(buf.Bytes())
	return err
}

var _ Codec = TOML{}
