// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc

package codec

import (
	"io"

	"github.com/echa/bson"
	"github.com/pkg/errors"

	"github.com/tigritik/Butylene/element"
)

// BSON decodes/encodes element trees as BSON documents via the teacher's
// own echa/bson dependency (originally used for Tezos indexer storage
// records), repurposed here as a fourth interchange format. Decode reads
// into bson.D rather than bson.M so that document field order, which BSON
// preserves on the wire, survives into the Node's insertion order.
type BSON struct{}

func (c BSON) Extensions() []string { return []string{".bson"} }

func (c BSON) Decode(r io.Reader) (element.Element, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "codec: reading bson")
	}
	var doc bson.D
	if err := bson.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Wrap(err, "codec: decoding bson")
	}
	return fromBSON(doc), nil
}

func fromBSON(v any) element.Element {
	switch val := v.(type) {
	case bson.D:
		n := element.NewNode()
		for _, de := range val {
			n.Set(de.Name, fromBSON(de.Value))
		}
		return n
	case bson.M:
		n := element.NewNode()
		for k, cv := range val {
			n.Set(k, fromBSON(cv))
		}
		return n
	case []any:
		items := make([]element.Element, len(val))
		for i, cv := range val {
			items[i] = fromBSON(cv)
		}
		return element.NewList(items...)
	case int32:
		return element.NewScalar(int64(val))
	default:
		return element.NewScalar(val)
	}
}

func (c BSON) Encode(e element.Element, w io.Writer) error {
	doc := toBSON(e)
	buf, err := bson.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "codec: encoding bson")
	}
	_, err = w.Write(buf)
	return err
}

func toBSON(e element.Element) any {
	switch v := e.(type) {
	case nil:
		return nil
	case element.Scalar:
		return v.Value
	case *element.List:
		out := make([]any, v.Size())
		for i, item := range v.Items() {
			out[i] = toBSON(item)
		}
		return out
	case *element.Node:
		doc := make(bson.D, 0, v.Size())
		for _, ent := range v.Entries() {
			doc = append(doc, bson.DocElem{Name: ent.Key, Value: toBSON(ent.Value)})
		}
		return doc
	default:
		return nil
	}
}

var _ Codec = BSON{}
