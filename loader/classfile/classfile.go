package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const magic = 0xCAFEBABE

// AccessFlags is the raw access_flags bitmask shared by classes, fields and
// methods (interpretation depends on context).
type AccessFlags uint16

const (
	AccPublic    AccessFlags = 0x0001
	AccPrivate   AccessFlags = 0x0002
	AccProtected AccessFlags = 0x0004
	AccStatic    AccessFlags = 0x0008
	AccFinal     AccessFlags = 0x0010
	AccInterface AccessFlags = 0x0200
	AccAbstract  AccessFlags = 0x0400
	AccSynthetic AccessFlags = 0x1000
	AccEnum      AccessFlags = 0x4000
)

func (f AccessFlags) Has(bit AccessFlags) bool { return f&bit != 0 }

// FieldInfo is one field_info structure.
type FieldInfo struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []Attribute
}

// MethodInfo is one method_info structure.
type MethodInfo struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  []Attribute
	Code        *CodeAttribute // nil for abstract/native methods
}

// Attribute is a generic attribute_info; Name selects how Info is
// interpreted by higher-level readers (Code, annotations, etc).
type Attribute struct {
	Name string
	Info []byte
}

// ClassFile is the fully parsed structure of one .class file.
type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool *ConstantPool
	AccessFlags  AccessFlags
	ThisClass    string
	SuperClass   string
	Interfaces   []string
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []Attribute
}

// Parse reads one .class file from r.
func Parse(r io.Reader) (*ClassFile, error) {
	var hdr struct {
		Magic        uint32
		MinorVersion uint16
		MajorVersion uint16
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("classfile: reading header: %w", err)
	}
	if hdr.Magic != magic {
		return nil, errors.New("classfile: bad magic number, not a .class file")
	}

	var poolCount uint16
	if err := binary.Read(r, binary.BigEndian, &poolCount); err != nil {
		return nil, err
	}
	cp, err := readConstantPool(r, int(poolCount))
	if err != nil {
		return nil, err
	}

	var accessFlags, thisClassIdx, superClassIdx uint16
	if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &thisClassIdx); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.BigEndian, &superClassIdx); err != nil {
		return nil, err
	}

	var interfaceCount uint16
	if err := binary.Read(r, binary.BigEndian, &interfaceCount); err != nil {
		return nil, err
	}
	interfaces := make([]string, interfaceCount)
	for i := range interfaces {
		var idx uint16
		if err := binary.Read(r, binary.BigEndian, &idx); err != nil {
			return nil, err
		}
		interfaces[i] = cp.ClassNameAt(idx)
	}

	fields, err := readFields(r, cp)
	if err != nil {
		return nil, fmt.Errorf("classfile: reading fields: %w", err)
	}
	methods, err := readMethods(r, cp)
	if err != nil {
		return nil, fmt.Errorf("classfile: reading methods: %w", err)
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, fmt.Errorf("classfile: reading class attributes: %w", err)
	}

	cf := &ClassFile{
		MinorVersion: hdr.MinorVersion,
		MajorVersion: hdr.MajorVersion,
		ConstantPool: cp,
		AccessFlags:  AccessFlags(accessFlags),
		ThisClass:    cp.ClassNameAt(thisClassIdx),
		SuperClass:   cp.ClassNameAt(superClassIdx),
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   attrs,
	}
	return cf, nil
}

func readFields(r io.Reader, cp *ConstantPool) ([]FieldInfo, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	out := make([]FieldInfo, count)
	for i := range out {
		var flags, nameIdx, descIdx uint16
		if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
			return nil, err
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, err
		}
		out[i] = FieldInfo{
			AccessFlags: AccessFlags(flags),
			Name:        cp.UTF8At(nameIdx),
			Descriptor:  cp.UTF8At(descIdx),
			Attributes:  attrs,
		}
	}
	return out, nil
}

func readMethods(r io.Reader, cp *ConstantPool) ([]MethodInfo, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	out := make([]MethodInfo, count)
	for i := range out {
		var flags, nameIdx, descIdx uint16
		if err := binary.Read(r, binary.BigEndian, &flags); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &descIdx); err != nil {
			return nil, err
		}
		attrs, err := readAttributes(r, cp)
		if err != nil {
			return nil, err
		}
		m := MethodInfo{
			AccessFlags: AccessFlags(flags),
			Name:        cp.UTF8At(nameIdx),
			Descriptor:  cp.UTF8At(descIdx),
			Attributes:  attrs,
		}
		for _, a := range attrs {
			if a.Name == "Code" {
				code, err := parseCodeAttribute(a.Info, cp)
				if err != nil {
					return nil, fmt.Errorf("method %s%s: %w", m.Name, m.Descriptor, err)
				}
				m.Code = code
			}
		}
		out[i] = m
	}
	return out, nil
}

func readAttributes(r io.Reader, cp *ConstantPool) ([]Attribute, error) {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, err
	}
	out := make([]Attribute, count)
	for i := range out {
		var nameIdx uint16
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &nameIdx); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out[i] = Attribute{Name: cp.UTF8At(nameIdx), Info: buf}
	}
	return out, nil
}

// IsEnum reports whether this class file declares an enum.
func (c *ClassFile) IsEnum() bool { return c.AccessFlags.Has(AccEnum) }

// IsInterface reports whether this class file declares an interface.
func (c *ClassFile) IsInterface() bool { return c.AccessFlags.Has(AccInterface) }

// Annotations returns the parsed RuntimeVisibleAnnotations and
// RuntimeInvisibleAnnotations for the class.
func (c *ClassFile) Annotations() []Annotation {
	return annotationsFromAttributes(c.Attributes, c.ConstantPool)
}

// Annotations returns the parsed RuntimeVisibleAnnotations and
// RuntimeInvisibleAnnotations for a method.
func (m *MethodInfo) Annotations(cp *ConstantPool) []Annotation {
	return annotationsFromAttributes(m.Attributes, cp)
}

// Annotations returns the parsed RuntimeVisibleAnnotations and
// RuntimeInvisibleAnnotations for a field.
func (f *FieldInfo) Annotations(cp *ConstantPool) []Annotation {
	return annotationsFromAttributes(f.Attributes, cp)
}
