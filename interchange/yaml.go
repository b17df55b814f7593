package interchange

import (
	"encoding/base64"
	"math/big"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
)

// maxYAMLDepth bounds alias expansion.
const maxYAMLDepth = 512

// integerLiteral matches decimal integers, which yaml.v3 tags !!float once
// they overflow 64 bits.
var integerLiteral = regexp.MustCompile(`^[-+]?[0-9][0-9_]*$`)

// ParseYAML reads the first document in data. An empty document is null.
func ParseYAML(data []byte, opts ...Option) (host.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.PhaseHost, errors.KindInvalidData, err, "parse YAML")
	}
	if len(doc.Content) == 0 {
		return host.Null, nil
	}
	y := yamlReader{opts: buildOptions(opts)}
	return y.value(doc.Content[0], 0)
}

type yamlReader struct {
	opts options
}

func (y *yamlReader) fail(n *yaml.Node, detail string) error {
	return errors.New(errors.PhaseHost, errors.KindInvalidData).
		Detail("line %d: %s", n.Line, detail).
		Build()
}

func (y *yamlReader) value(n *yaml.Node, depth int) (host.Value, error) {
	if depth > maxYAMLDepth {
		return nil, y.fail(n, "document nested too deeply")
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return host.Null, nil
		}
		return y.value(n.Content[0], depth+1)
	case yaml.AliasNode:
		return y.value(n.Alias, depth+1)
	case yaml.SequenceNode:
		arr := host.NewArrayCap(len(n.Content))
		for _, c := range n.Content {
			v, err := y.value(c, depth+1)
			if err != nil {
				return nil, err
			}
			arr.Push(v)
		}
		return arr, nil
	case yaml.MappingNode:
		return y.mapping(n, depth)
	case yaml.ScalarNode:
		return y.scalar(n)
	}
	return nil, y.fail(n, "unknown node kind")
}

func (y *yamlReader) mapping(n *yaml.Node, depth int) (host.Value, error) {
	stringKeys := true
	for i := 0; i < len(n.Content); i += 2 {
		if k := n.Content[i]; k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			stringKeys = false
			break
		}
	}

	if stringKeys {
		obj := host.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := y.value(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj.Set(n.Content[i].Value, v)
		}
		return obj, nil
	}

	m := host.NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, err := y.value(n.Content[i], depth+1)
		if err != nil {
			return nil, err
		}
		v, err := y.value(n.Content[i+1], depth+1)
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func (y *yamlReader) scalar(n *yaml.Node) (host.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return host.Null, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, y.fail(n, err.Error())
		}
		return host.Bool(b), nil
	case "!!int":
		return y.integer(n)
	case "!!float":
		if integerLiteral.MatchString(n.Value) {
			return y.bigInteger(n, 10)
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, y.fail(n, err.Error())
		}
		return host.Number(f), nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, y.fail(n, "invalid !!binary: "+err.Error())
		}
		arr, err := y.opts.heap.NewUint8Array(data)
		if err != nil {
			return nil, err
		}
		return arr, nil
	}
	return host.String(n.Value), nil
}

// integer keeps integers exact: safe values become numbers, the rest
// bigints.
func (y *yamlReader) integer(n *yaml.Node) (host.Value, error) {
	var i int64
	if err := n.Decode(&i); err == nil {
		if host.IsSafeInt64(i) {
			return host.Number(i), nil
		}
		return host.BigIntFromInt64(i), nil
	}
	var u uint64
	if err := n.Decode(&u); err == nil {
		return host.BigIntFromUint64(u), nil
	}
	return y.bigInteger(n, 0)
}

func (y *yamlReader) bigInteger(n *yaml.Node, base int) (host.Value, error) {
	text := strings.ReplaceAll(n.Value, "_", "")
	b, ok := new(big.Int).SetString(text, base)
	if !ok {
		return nil, y.fail(n, "invalid integer "+n.Value)
	}
	return host.NewBigInt(b), nil
}
