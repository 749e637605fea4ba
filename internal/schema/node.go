package schema

import "fmt"

// Repeat describes a repeating section: Count identical child nodes laid
// out at base + i*StrideBits, where base is the owning Node's nominal
// bit offset (the lowest bit offset among its template fields).
type Repeat struct {
	Count      int
	StrideBits int
}

// Node groups fields for presentation; it may also be a repeating section,
// in which case Fields/Children describe the template and Repeat gives the
// replication parameters. Nodes form the tree a UI enumerates; the flat
// field list is the concatenation of every node's fields in tree order.
type Node struct {
	Name     string
	Fields   []*Field
	Children []*Node
	Repeat   *Repeat
}

// Flatten returns every field in this node's subtree, in tree order, with
// repeating sections expanded and each instance's field ids suffixed by
// index (fieldID#i) to keep them distinct while preserving the template's
// declared bit offsets via the i*stride shift.
func (n *Node) Flatten() []*Field {
	if n.Repeat == nil {
		out := make([]*Field, 0, len(n.Fields))
		out = append(out, n.Fields...)
		for _, c := range n.Children {
			out = append(out, c.Flatten()...)
		}
		return out
	}

	template := &Node{Name: n.Name, Fields: n.Fields, Children: n.Children}
	templateFields := template.Flatten()

	out := make([]*Field, 0, len(templateFields)*n.Repeat.Count)
	for i := 0; i < n.Repeat.Count; i++ {
		shift := i * n.Repeat.StrideBits
		for _, tf := range templateFields {
			f := *tf // shallow copy: constraint/enum maps are shared, immutable
			f.ID = fmt.Sprintf("%s#%d", tf.ID, i)
			f.BitOffset = tf.BitOffset + shift
			out = append(out, &f)
		}
	}
	return out
}

// FieldTable builds a flat id -> field lookup for this node's subtree,
// suitable for precomputing at model-registration time.
func (n *Node) FieldTable() map[string]*Field {
	fields := n.Flatten()
	table := make(map[string]*Field, len(fields))
	for _, f := range fields {
		table[f.ID] = f
	}
	return table
}
