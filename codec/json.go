// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package codec

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/tigritik/Butylene/element"
)

// JSON decodes/encodes element trees as JSON. Decode normally goes through
// encoding/json into a map[string]any/[]any/scalar tree (matching
// json.Unmarshal's own untyped-decode shape, RFC 8259 object key order
// notwithstanding - Go's encoding/json does not preserve it). Setting
// Lenient walks the raw bytes directly with tidwall/gjson instead,
// avoiding the intermediate any allocation and, unlike encoding/json,
// preserving object key order as it appears in the source bytes.
type JSON struct {
	Lenient bool
}

func (c JSON) Extensions() []string { return []string{".json"} }

func (c JSON) Decode(r io.Reader) (element.Element, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "codec: reading json")
	}
	if c.Lenient {
		res := gjson.ParseBytes(buf)
		return fromGJSON(res), nil
	}
	var v any
	if err := json.Unmarshal(buf, &v); err != nil {
		return nil, errors.Wrap(err, "codec: decoding json")
	}
	return fromAny(v), nil
}

func (c JSON) Encode(e element.Element, w io.Writer) error {
	v := toAny(e)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "codec: encoding json")
	}
	return nil
}

func fromGJSON(res gjson.Result) element.Element {
	switch {
	case res.IsObject():
		n := element.NewNode()
		res.ForEach(func(key, value gjson.Result) bool {
			n.Set(key.String(), fromGJSON(value))
			return true
		})
		return n
	case res.IsArray():
		var items []element.Element
		res.ForEach(func(_, value gjson.Result) bool {
			items = append(items, fromGJSON(value))
			return true
		})
		return element.NewList(items...)
	default:
		return element.NewScalar(gjsonScalar(res))
	}
}

func gjsonScalar(res gjson.Result) any {
	switch res.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		if res.Num == float64(int64(res.Num)) {
			return int64(res.Num)
		}
		return res.Num
	default:
		return res.Str
	}
}

func fromAny(v any) element.Element {
	switch val := v.(type) {
	case map[string]any:
		n := element.NewNode()
		for k, cv := range val {
			n.Set(k, fromAny(cv))
		}
		return n
	case []any:
		items := make([]element.Element, len(val))
		for i, cv := range val {
			items[i] = fromAny(cv)
		}
		return element.NewList(items...)
	case float64:
		if val == float64(int64(val)) {
			return element.NewScalar(int64(val))
		}
		return element.NewScalar(val)
	default:
		return element.NewScalar(val)
	}
}

func toAny(e element.Element) any {
	switch v := e.(type) {
	case nil:
		return nil
	case element.Scalar:
		return v.Value
	case *element.List:
		out := make([]any, v.Size())
		for i, item := range v.Items() {
			out[i] = toAny(item)
		}
		return out
	case *element.Node:
		out := make(map[string]any, v.Size())
		for _, ent := range v.Entries() {
			out[ent.Key] = toAny(ent.Value)
		}
		return out
	default:
		return nil
	}
}

var _ Codec = JSON{}
