package main

import (
	"bytes"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/wippyai/hostserde/errors"
	"github.com/wippyai/hostserde/host"
	"github.com/wippyai/hostserde/interchange"
	"github.com/wippyai/hostserde/transcoder"
)

const doc = `
name: depot
ports: [80, 443]
limits:
  cpu: 2
  1: one
`

func parse(t *testing.T) host.Value {
	t.Helper()
	v, err := interchange.ParseYAML([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestWrite_Tree(t *testing.T) {
	var buf bytes.Buffer
	if err := write(&buf, "tree", parse(t), plain); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		`▾ value: Object {3}`,
		`    name: "depot"`,
		`  ▾ ports: Array(2)`,
		`      [0]: 80`,
		`      [1]: 443`,
		`  ▾ limits: Map(2)`,
		`      "cpu": 2`,
		`      1: "one"`,
	}, "\n") + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestWrite_Formats(t *testing.T) {
	v, err := interchange.ParseJSONC([]byte(`{"a": [1, true], /* note */ "b": null}`))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		output string
		want   string
	}{
		{"json", `{"a":[1,true],"b":null}` + "\n"},
		{"cbor", `{"a": [1, true], "b": null}` + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			var buf bytes.Buffer
			if err := write(&buf, tt.output, v, plain); err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}

	if err := write(&bytes.Buffer{}, "xml", v, plain); err == nil {
		t.Error("expected error for unknown output")
	}
}

func TestNormalize(t *testing.T) {
	v, err := host.ParseJSON([]byte(`{"name":"depot","ports":[80,443]}`))
	if err != nil {
		t.Fatal(err)
	}

	out, err := normalize(v, transcoder.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out.(*host.Map); !ok {
		t.Errorf("expected objects to come back as Map, got %s", host.Describe(out))
	}

	out, err = normalize(v, transcoder.DefaultConfig().WithMapsAsObjects(true))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := write(&buf, "json", out, plain); err != nil {
		t.Fatal(err)
	}
	if buf.String() != `{"name":"depot","ports":[80,443]}`+"\n" {
		t.Errorf("got %s", buf.String())
	}

	// A Map carries no shape of its own without a target type.
	if _, err := normalize(parse(t), transcoder.DefaultConfig()); err == nil {
		t.Error("expected the Map under limits to be rejected")
	}
}

func TestTree_CircularAndPaths(t *testing.T) {
	obj := host.NewObject()
	list := host.NewArray(host.String("x"))
	obj.Set("list", list)
	obj.Set("self", obj)

	root := buildTree(obj)
	self := root.children[1]
	if self.summary != "[Circular]" {
		t.Errorf("self = %s", self.summary)
	}
	if got := root.children[0].children[0].path(); got != "list[0]" {
		t.Errorf("path = %q", got)
	}
	if n := find(root, "LIST[0]"); n == nil || n.summary != `"x"` {
		t.Errorf("find = %+v", n)
	}
	if find(root, "missing") != nil {
		t.Error("unexpected match")
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowser_Navigation(t *testing.T) {
	m := newBrowserModel("doc.yaml", parse(t))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	// Only the root starts open.
	if len(m.nodes) != 4 {
		t.Fatalf("visible = %d", len(m.nodes))
	}

	m.Update(key("j"))
	m.Update(key("j"))
	if m.nodes[m.cursor].label != "ports" {
		t.Fatalf("cursor on %s", m.nodes[m.cursor].label)
	}
	m.Update(key("enter"))
	if len(m.nodes) != 6 {
		t.Errorf("after expand visible = %d", len(m.nodes))
	}
	m.Update(key("h"))
	if len(m.nodes) != 4 {
		t.Errorf("after collapse visible = %d", len(m.nodes))
	}

	m.Update(key("/"))
	for _, r := range "cpu" {
		m.Update(key(string(r)))
	}
	m.Update(key("enter"))
	if got := m.nodes[m.cursor].path(); got != `limits["cpu"]` {
		t.Errorf("search landed on %q", got)
	}
	if !strings.Contains(m.View(), `limits["cpu"]`) {
		t.Error("view does not show the current path")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Error("q should quit")
	}
}

func TestParseArgs(t *testing.T) {
	var stderr bytes.Buffer
	opts, err := parseArgs([]string{"-o", "json", "--normalize", "--maps-as-objects", "in.yaml"}, &stderr)
	if err != nil {
		t.Fatal(err)
	}
	want := options{input: "in.yaml", output: "json", normalize: true, mapsAsObjects: true}
	if opts != want {
		t.Errorf("got %+v, want %+v", opts, want)
	}

	if _, err := parseArgs([]string{"--help"}, &stderr); !errors.Is(err, pflag.ErrHelp) {
		t.Errorf("--help: %v", err)
	}

	for _, args := range [][]string{{"--no-such-flag"}, {"a.json", "b.json"}} {
		stderr.Reset()
		if _, err := parseArgs(args, &stderr); err == nil {
			t.Errorf("%v: expected an error", args)
		}
		if !strings.Contains(stderr.String(), "Usage: hostval") {
			t.Errorf("%v: usage not printed, stderr = %q", args, stderr.String())
		}
	}
}
