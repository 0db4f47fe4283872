package validate

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// The parse tree produced by pg_query is a protobuf message graph, so a
// single reflective traversal serves every collection pass: statement
// classification, the safety deny-list search, and the semantic reference
// collectors all walk the same way with a different visit predicate.

// Walk calls visit for every message node in the tree rooted at root,
// depth-first, root included. Returning false from visit skips the node's
// descendants.
func Walk(root proto.Message, visit func(proto.Message) bool) {
	if root == nil {
		return
	}
	walkMessage(root.ProtoReflect(), visit)
}

func walkMessage(m protoreflect.Message, visit func(proto.Message) bool) {
	if !m.IsValid() {
		return
	}
	if !visit(m.Interface()) {
		return
	}
	for _, child := range children(m) {
		walkMessage(child, visit)
	}
}

// children returns the populated message-valued fields of m, expanding
// repeated fields. The pg_query tree has no map-valued fields.
func children(m protoreflect.Message) []protoreflect.Message {
	var out []protoreflect.Message
	m.Range(func(fd protoreflect.FieldDescriptor, v protoreflect.Value) bool {
		switch {
		case fd.IsMap():
			// not present in pg_query trees
		case fd.IsList():
			if fd.Kind() == protoreflect.MessageKind {
				list := v.List()
				for i := 0; i < list.Len(); i++ {
					out = append(out, list.Get(i).Message())
				}
			}
		case fd.Kind() == protoreflect.MessageKind:
			out = append(out, v.Message())
		}
		return true
	})
	return out
}
