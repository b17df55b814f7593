package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
)

// maxIterated caps how many items are pulled from a user iterator.
const maxIterated = 1000

type nodeKind int

const (
	nodeScalar nodeKind = iota
	nodeString
	nodeContainer
	nodeNote
)

type node struct {
	parent   *node
	label    string
	seg      string
	summary  string
	children []*node
	depth    int
	kind     nodeKind
	expanded bool
}

func (n *node) path() string {
	var segs []string
	for p := n; p != nil && p.parent != nil; p = p.parent {
		segs = append(segs, p.seg)
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return errors.FormatPath(segs)
}

type treeBuilder struct {
	onPath map[host.Value]bool
}

func buildTree(v host.Value) *node {
	b := treeBuilder{onPath: make(map[host.Value]bool)}
	root := b.build(nil, "value", "", v)
	root.expanded = true
	return root
}

func (b *treeBuilder) add(parent *node, label, seg string, v host.Value) {
	parent.children = append(parent.children, b.build(parent, label, seg, v))
}

func (b *treeBuilder) build(parent *node, label, seg string, v host.Value) *node {
	n := &node{parent: parent, label: label, seg: seg}
	if parent != nil {
		n.depth = parent.depth + 1
	}

	switch x := v.(type) {
	case host.String:
		n.kind = nodeString
		n.summary = host.QuoteJSON(string(x))
		return n
	case host.Number:
		n.summary = host.FormatNumber(float64(x))
		return n
	case host.Bool:
		n.summary = strconv.FormatBool(bool(x))
		return n
	case host.BigInt:
		n.summary = x.String() + "n"
		return n
	}
	if src, ok := host.AsBytes(v); ok {
		n.summary = bytesSummary(v, src)
		return n
	}
	if v == nil || v.Kind() != host.KindObject {
		n.summary = host.Describe(v)
		return n
	}

	if b.onPath[v] {
		n.kind = nodeNote
		n.summary = "[Circular]"
		return n
	}
	b.onPath[v] = true
	defer delete(b.onPath, v)

	n.kind = nodeContainer
	switch x := v.(type) {
	case *host.Array:
		n.summary = fmt.Sprintf("Array(%d)", x.Len())
		for i, e := range x.Values() {
			seg := "[" + strconv.Itoa(i) + "]"
			b.add(n, seg, seg, e)
		}
	case *host.Set:
		n.summary = fmt.Sprintf("Set(%d)", x.Len())
		for i, e := range x.Values() {
			seg := "[" + strconv.Itoa(i) + "]"
			b.add(n, seg, seg, e)
		}
	case *host.Map:
		n.summary = fmt.Sprintf("Map(%d)", x.Len())
		x.Each(func(k, val host.Value) bool {
			label := keyLabel(k)
			b.add(n, label, "["+label+"]", val)
			return true
		})
	case *host.Object:
		if it, ok := host.Iterate(x); ok {
			b.iterated(n, it)
			break
		}
		entries, _, _ := host.Entries(x)
		n.summary = fmt.Sprintf("%s {%d}", x.Class(), len(entries))
		for _, e := range entries {
			b.add(n, e.Key, e.Key, e.Value)
		}
	default:
		n.summary = host.Describe(v)
	}
	return n
}

func (b *treeBuilder) iterated(n *node, it host.Iterator) {
	count := 0
	for ; count < maxIterated; count++ {
		v, ok, err := it.Next()
		if err != nil {
			n.children = append(n.children, &node{parent: n, depth: n.depth + 1, kind: nodeNote, label: "error", summary: err.Error()})
			break
		}
		if !ok {
			break
		}
		seg := "[" + strconv.Itoa(count) + "]"
		b.add(n, seg, seg, v)
	}
	n.summary = fmt.Sprintf("Iterable(%d)", count)
	if count == maxIterated {
		n.summary = fmt.Sprintf("Iterable(%d+)", count)
	}
}

func keyLabel(k host.Value) string {
	switch x := k.(type) {
	case host.String:
		return host.QuoteJSON(string(x))
	case host.Number:
		return host.FormatNumber(float64(x))
	case host.BigInt:
		return x.String() + "n"
	case host.Bool:
		return strconv.FormatBool(bool(x))
	}
	return host.Describe(k)
}

func bytesSummary(v host.Value, src host.ByteSource) string {
	b, err := src.Bytes()
	if err != nil {
		return host.Describe(v) + " <" + err.Error() + ">"
	}
	const preview = 16
	text := hex.EncodeToString(b[:min(len(b), preview)])
	if len(b) > preview {
		text += "…"
	}
	return fmt.Sprintf("%s(%d) %s", host.Describe(v), len(b), text)
}

// visible lists the nodes shown when only expanded containers are open.
func visible(root *node) []*node {
	var out []*node
	var walk func(n *node)
	walk = func(n *node) {
		out = append(out, n)
		if n.expanded {
			for _, c := range n.children {
				walk(c)
			}
		}
	}
	walk(root)
	return out
}

func setExpanded(n *node, open bool) {
	if n.kind == nodeContainer {
		n.expanded = open
	}
	for _, c := range n.children {
		setExpanded(c, open)
	}
}

type palette struct {
	key, str, scalar, container, note lipgloss.Style
}

var (
	colors = palette{
		key:       lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		str:       lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		scalar:    lipgloss.NewStyle().Foreground(lipgloss.Color("#F0E68C")),
		container: lipgloss.NewStyle().Foreground(lipgloss.Color("#B19CD9")).Bold(true),
		note:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	}
	plain = palette{
		key:       lipgloss.NewStyle(),
		str:       lipgloss.NewStyle(),
		scalar:    lipgloss.NewStyle(),
		container: lipgloss.NewStyle(),
		note:      lipgloss.NewStyle(),
	}
)

func (p palette) line(n *node) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.depth))
	if n.kind == nodeContainer {
		if n.expanded {
			b.WriteString("▾ ")
		} else {
			b.WriteString("▸ ")
		}
	} else {
		b.WriteString("  ")
	}
	b.WriteString(p.key.Render(n.label))
	b.WriteString(": ")
	switch n.kind {
	case nodeString:
		b.WriteString(p.str.Render(n.summary))
	case nodeContainer:
		b.WriteString(p.container.Render(n.summary))
	case nodeNote:
		b.WriteString(p.note.Render(n.summary))
	default:
		b.WriteString(p.scalar.Render(n.summary))
	}
	return b.String()
}

// writeTree prints every node of the tree, fully expanded.
func writeTree(w io.Writer, root *node, p palette) error {
	setExpanded(root, true)
	for _, n := range visible(root) {
		if _, err := fmt.Fprintln(w, p.line(n)); err != nil {
			return err
		}
	}
	return nil
}
