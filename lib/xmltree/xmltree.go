/*
 * Copyright 2022 Medicines Discovery Catapult
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *     http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package xmltree

import (
	"container/list"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
)

// Node is an element of a parsed XML document. Names are compared on their local part, so documents with and
// without a default namespace are navigated the same way.
type Node struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Parent   *Node
	Children []*Node
	// content holds character data (string) and child elements (*Node) in document order.
	content []interface{}
}

// Local returns the local name of the element.
func (n *Node) Local() string {
	return n.Name.Local
}

// Attr returns the value of the attribute with the given local name.
func (n *Node) Attr(local string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// Text returns all character data of the element and its descendants in document order.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	for _, c := range n.content {
		switch v := c.(type) {
		case string:
			b.WriteString(v)
		case *Node:
			v.writeText(b)
		}
	}
}

// FindAll returns every element named local in the subtree rooted at n, n included, in document order.
func (n *Node) FindAll(local string) []*Node {
	var found []*Node
	n.walk(func(node *Node) {
		if node.Name.Local == local {
			found = append(found, node)
		}
	})
	return found
}

// Find returns the first element FindAll would return, or nil.
func (n *Node) Find(local string) *Node {
	if nodes := n.FindAll(local); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// FindWithAttr returns the first element named local whose attribute attr equals value, or nil.
func (n *Node) FindWithAttr(local, attr, value string) *Node {
	for _, node := range n.FindAll(local) {
		if v, ok := node.Attr(attr); ok && v == value {
			return node
		}
	}
	return nil
}

// Path descends by local name, e.g. Path("archdesc", "did", "unittitle"), taking the first descendant in document
// order at each step. It returns nil when a step has no match.
func (n *Node) Path(locals ...string) *Node {
	current := n
	for _, local := range locals {
		var next *Node
		for _, child := range current.Children {
			if next = child.Find(local); next != nil {
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

func (n *Node) walk(visit func(*Node)) {
	visit(n)
	for _, child := range n.Children {
		child.walk(visit)
	}
}

type nodeStack struct {
	*list.List
}

func (s *nodeStack) push(node *Node) {
	if s.List == nil {
		s.List = list.New()
	}
	if front := s.Front(); front != nil {
		parent := front.Value.(*Node)
		node.Parent = parent
		parent.Children = append(parent.Children, node)
		parent.content = append(parent.content, node)
	}
	s.PushFront(node)
}

func (s *nodeStack) collectText(text []byte) {
	if s.List == nil || s.Front() == nil {
		return
	}
	node := s.Front().Value.(*Node)
	node.content = append(node.content, string(text))
}

func (s *nodeStack) pop() *Node {
	if s.List == nil {
		return nil
	}
	e := s.Front()
	if e == nil {
		return nil
	}
	s.Remove(e)
	return e.Value.(*Node)
}

// Parse reads a well-formed XML document and returns its root element. Documents declaring an encoding other than
// UTF-8 are decoded using the IANA registry.
func Parse(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true
	decoder.CharsetReader = charsetReader
	// legacy finding aids use HTML entities such as &nbsp; without declaring them
	decoder.Entity = xml.HTMLEntity

	var stack nodeStack
	var root *Node
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if root != nil && stack.List.Len() == 0 {
				return nil, fmt.Errorf("unexpected second root element <%s>", t.Name.Local)
			}
			node := &Node{Name: t.Name, Attrs: t.Copy().Attr}
			if root == nil {
				root = node
			}
			stack.push(node)
		case xml.EndElement:
			stack.pop()
		case xml.CharData:
			stack.collectText(t)
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
