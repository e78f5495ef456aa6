package behaviortree

import (
	"fmt"
	"strconv"
	"strings"
)

// Forest is the result of parsing a behavior-tree source file: zero or more
// independently rooted trees (spec §6: "a tuple (remainder, forest)").
type Forest []*ParsedNode

// ParsedNode is one line of source: a node name, its literal arguments, and
// its nested children (by indentation).
type ParsedNode struct {
	Name     string
	Args     map[string]string
	Children []*ParsedNode
}

// ArgFloat parses arg as a float64, or returns def if the arg is absent or
// malformed.
func (n *ParsedNode) ArgFloat(arg string, def float64) float64 {
	s, ok := n.Args[arg]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// ArgInt parses arg as an int, or returns def if the arg is absent or
// malformed.
func (n *ParsedNode) ArgInt(arg string, def int) int {
	s, ok := n.Args[arg]
	if !ok {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// ArgString returns arg's literal value, or def if absent.
func (n *ParsedNode) ArgString(arg, def string) string {
	if s, ok := n.Args[arg]; ok {
		return s
	}
	return def
}

// ParseFile parses a behavior-tree source into a Forest. It normalizes
// newlines to "\n" first (spec §6). remainder is the suffix of the source
// that could not be parsed as a well-formed node line (spec §6: "fully
// valid source has empty remainder"); a non-empty remainder means parsing
// stopped at that line, and no forest is returned with it.
//
// There is no behavior-tree textual grammar in the retrieved pack (the
// library registers nodes but leaves source format to its caller, and
// original_source's own parser used a hand-rolled combinator library not
// present in this retrieval), so the grammar below — one
// `Name(key=val, ...)` call per line, nesting by two-space indentation — is
// this engine's own, documented here rather than copied from anywhere.
func ParseFile(src string) (forest Forest, remainder string) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	lines := strings.Split(src, "\n")

	type stackEntry struct {
		indent int
		node   *ParsedNode
	}
	var stack []stackEntry

	for lineNo, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		node, err := parseLine(trimmed)
		if err != nil {
			return nil, strings.Join(lines[lineNo:], "\n")
		}

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if len(stack) == 0 {
			forest = append(forest, node)
		} else {
			parent := stack[len(stack)-1].node
			parent.Children = append(parent.Children, node)
		}
		stack = append(stack, stackEntry{indent: indent, node: node})
	}

	return forest, ""
}

func parseLine(line string) (*ParsedNode, error) {
	open := strings.IndexByte(line, '(')
	if open < 0 {
		// A bare name with no argument list, e.g. the composite nodes
		// "Selector" / "Sequence" that take no arguments of their own.
		if strings.ContainsAny(line, ")=") {
			return nil, fmt.Errorf("behaviortree: malformed node line %q", line)
		}
		return &ParsedNode{Name: line, Args: map[string]string{}}, nil
	}
	if !strings.HasSuffix(line, ")") {
		return nil, fmt.Errorf("behaviortree: malformed node line %q", line)
	}
	name := strings.TrimSpace(line[:open])
	if name == "" {
		return nil, fmt.Errorf("behaviortree: missing node name in %q", line)
	}
	body := strings.TrimSpace(line[open+1 : len(line)-1])

	node := &ParsedNode{Name: name, Args: map[string]string{}}
	if body == "" {
		return node, nil
	}
	for _, pair := range strings.Split(body, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq < 0 {
			return nil, fmt.Errorf("behaviortree: malformed argument %q in %q", pair, line)
		}
		key := strings.TrimSpace(pair[:eq])
		val := strings.Trim(strings.TrimSpace(pair[eq+1:]), `"`)
		node.Args[key] = val
	}
	return node, nil
}
