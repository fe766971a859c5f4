package pds

import (
	"fmt"
	"iter"
	"strings"
)

// Node is one entry of a parsed label: either a NAME = VALUE attribute or a
// nested object holding child nodes. Objects carry their type ("COLUMN",
// "TABLE", ...) in Name and an ordered child list; attributes carry Name and
// Value. The two cases are distinguished structurally, as in the source
// format, not by a separate type.
type Node struct {
	Name     string
	Value    string
	Children []*Node

	object bool
}

// newAttribute creates an attribute node
func newAttribute(name, value string) *Node {
	return &Node{Name: name, Value: value}
}

// newObject creates an empty object node of the given type
func newObject(typeName string) *Node {
	return &Node{Name: typeName, object: true}
}

// IsAttribute reports whether the node is a NAME = VALUE leaf
func (n *Node) IsAttribute() bool {
	return !n.object
}

// IsObject reports whether the node is an object, optionally of type t
func (n *Node) IsObject(t ...string) bool {
	if !n.object {
		return false
	}
	if len(t) == 0 {
		return true
	}
	return n.Name == t[0]
}

// Valid reports whether the node is well formed. An attribute is valid when
// both name and value are non-empty (the lone END tag is also accepted). An
// object is valid when every child is valid and a direct child END_OBJECT
// attribute names the object's own type. Validity is recomputed on every
// call; nothing is cached, so a tree edited after parsing answers correctly.
func (n *Node) Valid(sc Schema) bool {
	if n.IsAttribute() {
		if n.Name == sc.EndTag {
			return true
		}
		return n.Name != "" && n.Value != ""
	}
	for _, child := range n.Children {
		if !child.Valid(sc) {
			return false
		}
	}
	return n.hasEnd(sc)
}

// empty reports whether the node carries no content at all. Empty nodes come
// from the blank remainder of a line after a closing quote or parenthesis
// and are dropped without counting as data loss.
func (n *Node) empty() bool {
	return !n.object && n.Name == "" && n.Value == ""
}

// hasEnd reports whether a direct child closes the object
func (n *Node) hasEnd(sc Schema) bool {
	for _, child := range n.Children {
		if child.Name == sc.EndObjectTag && child.Value == n.Name {
			return true
		}
	}
	return false
}

// Get returns the value of the named direct child attribute, with any
// surrounding quotes removed. The second result reports whether the
// attribute exists.
func (n *Node) Get(name string) (string, bool) {
	for _, child := range n.Children {
		if child.IsAttribute() && child.Name == name {
			return unquote(child.Value), true
		}
	}
	return "", false
}

// Objects iterates over descendant objects in document (pre-order) order.
// An empty typeName yields every object.
func (n *Node) Objects(typeName string) iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, child := range n.Children {
			if !walkObjects(child, typeName, yield) {
				return
			}
		}
	}
}

// walkObjects visits n and its descendant objects in pre-order,
// returning false when the caller stopped the iteration
func walkObjects(n *Node, typeName string, yield func(*Node) bool) bool {
	if !n.object {
		return true
	}
	if typeName == "" || n.Name == typeName {
		if !yield(n) {
			return false
		}
	}
	for _, child := range n.Children {
		if !walkObjects(child, typeName, yield) {
			return false
		}
	}
	return true
}

// Attributes iterates over the direct child attributes of an object
func (n *Node) Attributes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, child := range n.Children {
			if child.IsAttribute() && !yield(child) {
				return
			}
		}
	}
}

// String renders the node and its children, one per line, indented by depth
func (n *Node) String() string {
	var b strings.Builder
	n.writeString(&b, 0)
	return b.String()
}

func (n *Node) writeString(b *strings.Builder, depth int) {
	indent := strings.Repeat("\t", depth)
	if n.IsAttribute() {
		fmt.Fprintf(b, "%sAttribute(name=%s, value=%s)", indent, n.Name, n.Value)
		return
	}
	fmt.Fprintf(b, "%sObject(type=%s)", indent, n.Name)
	for _, child := range n.Children {
		b.WriteByte('\n')
		child.writeString(b, depth+1)
	}
}

// unquote drops one pair of surrounding double quotes if present
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
