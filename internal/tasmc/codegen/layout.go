package codegen

import "github.com/vybium/tasmc/internal/tasmc/ast"
import "github.com/vybium/tasmc/internal/tasmc/target"

// resolveTypeWidth is the free function spec.md §4.3 calls for
// throughout emission: the number of field elements a value of type t
// occupies on the target's operand stack.
func resolveTypeWidth(t ast.Type, cfg *target.Config) uint32 {
	return resolveTypeWidthWithSubs(t, nil, cfg)
}

// resolveTypeWidthWithSubs is resolveTypeWidth, but array sizes that
// are still size-generic parameters are resolved against subs — used
// while emitting a monomorphized function body.
func resolveTypeWidthWithSubs(t ast.Type, subs map[string]uint64, cfg *target.Config) uint32 {
	switch v := t.(type) {
	case nil:
		return 0
	case ast.FieldType:
		return 1
	case ast.BoolType:
		return 1
	case ast.U32Type:
		return 1
	case ast.XFieldType:
		return cfg.XFieldWidth
	case ast.DigestType:
		return cfg.DigestWidth
	case ast.ArrayType:
		n := uint32(v.Size.Eval(subs))
		return n * resolveTypeWidthWithSubs(v.Elem, subs, cfg)
	case ast.TupleType:
		var total uint32
		for _, elem := range v.Elems {
			total += resolveTypeWidthWithSubs(elem, subs, cfg)
		}
		return total
	case ast.NamedType:
		return 0 // resolved via struct_types lookup by the caller, not here
	default:
		return 1
	}
}

// structFieldWidths computes each field's width, in the literal's own
// field order, for a struct literal's explicit field list: each width is
// looked up by field name in the declared struct (1 when the name or the
// struct is unknown) — grounded on
// compute_struct_field_widths in original_source/src/codegen/emitter.rs.
func (e *Emitter) structFieldWidths(declType ast.Type, fields []ast.FieldInit) []uint32 {
	widths := make([]uint32, len(fields))
	if nt, ok := declType.(ast.NamedType); ok && len(nt.Path) > 0 {
		if sdef, ok := e.structTypes[nt.Path[len(nt.Path)-1]]; ok {
			byName := make(map[string]ast.Type, len(sdef.Fields))
			for _, f := range sdef.Fields {
				byName[f.Name] = f.Type
			}
			for i, fi := range fields {
				if ft, ok := byName[fi.Name]; ok {
					widths[i] = resolveTypeWidth(ft, e.backend.Config())
					continue
				}
				widths[i] = 1
			}
			return widths
		}
	}
	for i := range widths {
		widths[i] = 1
	}
	return widths
}

// registerStructInitLayout records varName's field offsets from a
// struct-literal initializer, keyed by the literal's own field names and
// laid out in the literal's field order (the order emitStructInit pushes
// them), with each width taken from structFieldWidths' by-name lookup in
// the declared struct.
func (e *Emitter) registerStructInitLayout(varName string, declType ast.Type, fields []ast.FieldInit) {
	widths := e.structFieldWidths(declType, fields)
	var total uint32
	for _, w := range widths {
		total += w
	}
	layout := make(map[string]fieldLayout, len(fields))
	var offset uint32
	for i, fi := range fields {
		w := uint32(1)
		if i < len(widths) {
			w = widths[i]
		}
		layout[fi.Name] = fieldLayout{offsetFromTop: total - offset - w, width: w}
		offset += w
	}
	e.structLayouts[varName] = layout
}

// registerStructLayout records varName's field offsets (from the top
// of its on-stack block) for a struct-typed binding, looked up by
// declared type name.
func (e *Emitter) registerStructLayout(varName string, t ast.Type) {
	nt, ok := t.(ast.NamedType)
	if !ok || len(nt.Path) == 0 {
		return
	}
	sdef, ok := e.structTypes[nt.Path[len(nt.Path)-1]]
	if !ok {
		return
	}
	var total uint32
	for _, f := range sdef.Fields {
		total += resolveTypeWidth(f.Type, e.backend.Config())
	}
	layout := make(map[string]fieldLayout, len(sdef.Fields))
	var offset uint32
	for _, f := range sdef.Fields {
		w := resolveTypeWidth(f.Type, e.backend.Config())
		layout[f.Name] = fieldLayout{offsetFromTop: total - offset - w, width: w}
		offset += w
	}
	e.structLayouts[varName] = layout
}

func (e *Emitter) fieldOffsetInVar(varName, field string) (fieldLayout, bool) {
	layout, ok := e.structLayouts[varName]
	if !ok {
		return fieldLayout{}, false
	}
	fl, ok := layout[field]
	return fl, ok
}

// fieldOffsetByShape finds (offset_from_top, width) for field among
// every known struct type whose total width matches structWidth — used
// when a field access target isn't a plain named variable (e.g. a
// function-call result) so there is no recorded structLayouts entry.
func (e *Emitter) fieldOffsetByShape(structWidth uint32, field string) (fieldLayout, bool) {
	for _, sdef := range e.structTypes {
		var total uint32
		for _, f := range sdef.Fields {
			total += resolveTypeWidth(f.Type, e.backend.Config())
		}
		if total != structWidth {
			continue
		}
		var off uint32
		for _, f := range sdef.Fields {
			w := resolveTypeWidth(f.Type, e.backend.Config())
			if f.Name == field {
				return fieldLayout{offsetFromTop: total - off - w, width: w}, true
			}
			off += w
		}
	}
	return fieldLayout{}, false
}
