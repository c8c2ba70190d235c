package shader

import "fmt"

// MemberLayout describes where a single struct member lives in host-shareable memory.
type MemberLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
	Align  uint64
}

// StructLayoutInfo is the host-shareable layout of a WGSL struct.
type StructLayoutInfo struct {
	Name    string
	Size    uint64
	Align   uint64
	Members []MemberLayout
}

// StructLayout computes the host-shareable memory layout of a named WGSL struct using the
// WGSL alignment and size rules: every member starts at the next offset aligned to its type,
// and the struct size is rounded up to the largest member alignment.
//
// The source may contain @oxy:include annotations; they are expanded before parsing.
// Structs referenced as member types must be declared in the same source.
//
// Parameters:
//   - source: WGSL source declaring the struct
//   - name: the struct name to resolve
//
// Returns:
//   - StructLayoutInfo: offsets and sizes of every member plus the total size
//   - error: an error if the struct is missing or holds an unresolvable member type
func StructLayout(source, name string) (StructLayoutInfo, error) {
	processed, err := NewPreProcessor().Process(source)
	if err != nil {
		return StructLayoutInfo{}, err
	}
	return reflectWGSL(processed).structLayout(name)
}

func (r *wgslReflection) structLayout(name string) (StructLayoutInfo, error) {
	ps, ok := r.findStruct(name)
	if !ok {
		return StructLayoutInfo{}, fmt.Errorf("struct %s not found", name)
	}

	info := StructLayoutInfo{Name: name, Align: 1}
	var offset uint64
	for i, f := range ps.fields {
		if f.isBuiltin {
			continue
		}
		fl, ok := resolveTypeLayout(f.typeName, r.layouts)
		if !ok {
			return StructLayoutInfo{}, fmt.Errorf("struct %s: cannot resolve type %q of member %s", name, f.typeName, f.name)
		}
		m := MemberLayout{
			Name:   f.name,
			Type:   f.typeName,
			Offset: roundUpAlign(fl.align, offset),
			Size:   fl.size,
			Align:  fl.align,
		}
		if isRuntimeArray(f.typeName) {
			if i != len(ps.fields)-1 {
				return StructLayoutInfo{}, fmt.Errorf("struct %s: runtime-sized member %s is not last", name, f.name)
			}
			m.Size = 0
		}
		info.Members = append(info.Members, m)
		offset = m.Offset + m.Size
		info.Align = max(info.Align, fl.align)
	}
	info.Size = roundUpAlign(info.Align, offset)
	return info, nil
}

// Member returns the layout of the named member.
//
// Parameters:
//   - name: the member name
//
// Returns:
//   - MemberLayout: the member layout
//   - bool: false if no member has that name
func (s StructLayoutInfo) Member(name string) (MemberLayout, bool) {
	for _, m := range s.Members {
		if m.Name == name {
			return m, true
		}
	}
	return MemberLayout{}, false
}
