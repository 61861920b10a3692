// Copyright (c) 2024 Blockwatch Data Inc.
// Author: alex@blockwatch.cc, abdul@blockwatch.cc

package codec

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tigritik/Butylene/element"
)

// YAML decodes/encodes element trees via gopkg.in/yaml.v3's own yaml.Node
// tree, which already walks a document in source order - a natural fit for
// Node's own insertion-order invariant, unlike decoding into map[string]any
// (yaml.v3 would do so via Go's unordered map type).
type YAML struct{}

func (c YAML) Extensions() []string { return []string{".yaml", ".yml"} }

func (c YAML) Decode(r io.Reader) (element.Element, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "codec: reading yaml")
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return nil, errors.Wrap(err, "codec: decoding yaml")
	}
	if len(doc.Content) == 0 {
		return element.NewScalar(nil), nil
	}
	return fromYAMLNode(doc.Content[0]), nil
}

func fromYAMLNode(n *yaml.Node) element.Element {
	switch n.Kind {
	case yaml.MappingNode:
		node := element.NewNode()
		for i := 0; i+1 < len(n.Content); i += 2 {
			node.Set(n.Content[i].Value, fromYAMLNode(n.Content[i+1]))
		}
		return node
	case yaml.SequenceNode:
		items := make([]element.Element, len(n.Content))
		for i, c := range n.Content {
			items[i] = fromYAMLNode(c)
		}
		return element.NewList(items...)
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	default:
		return element.NewScalar(yamlScalar(n))
	}
}

func yamlScalar(n *yaml.Node) any {
	switch n.Tag {
	case "!!null":
		return nil
	case "!!bool":
		b, _ := strconv.ParseBool(n.Value)
		return b
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return n.Value
		}
		return i
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return n.Value
		}
		return f
	default:
		return n.Value
	}
}

func (c YAML) Encode(e element.Element, w io.Writer) error {
	node := toYAMLNode(e)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(node); err != nil {
		return errors.Wrap(err, "codec: encoding yaml")
	}
	return nil
}

func toYAMLNode(e element.Element) *yaml.Node {
	switch v := e.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	case element.Scalar:
		return scalarYAMLNode(v.Value)
	case *element.List:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v.Items() {
			n.Content = append(n.Content, toYAMLNode(item))
		}
		return n
	case *element.Node:
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, ent := range v.Entries() {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: ent.Key})
			n.Content = append(n.Content, toYAMLNode(ent.Value))
		}
		return n
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func scalarYAMLNode(v any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	if err := n.Encode(v); err != nil {
		n.Value = ""
	}
	return n
}

var _ Codec = YAML{}
