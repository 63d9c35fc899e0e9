// Package classfile is the bytecode provider: a hand-written reader for the
// JVM .class binary format (JVMS §4), deliberately standard-library only
// (encoding/binary over a byte stream).
package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ConstantTag enumerates the constant-pool entry kinds this reader handles.
type ConstantTag uint8

const (
	TagUTF8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagFloat              ConstantTag = 4
	TagLong               ConstantTag = 5
	TagDouble             ConstantTag = 6
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
	TagMethodHandle       ConstantTag = 15
	TagMethodType         ConstantTag = 16
	TagDynamic            ConstantTag = 17
	TagInvokeDynamic      ConstantTag = 18
	TagModule             ConstantTag = 19
	TagPackage            ConstantTag = 20
)

// ConstantPoolEntry is a decoded constant-pool slot. Only the fields for its
// Tag are populated.
type ConstantPoolEntry struct {
	Tag ConstantTag

	UTF8 string

	IntVal    int32
	FloatVal  float32
	LongVal   int64
	DoubleVal float64

	NameIndex       uint16 // Class, MethodType
	ClassIndex      uint16 // Fieldref/Methodref/InterfaceMethodref
	NameAndTypeIdx  uint16 // Fieldref/Methodref/InterfaceMethodref
	StringIndex     uint16 // String
	DescriptorIndex uint16 // NameAndType
}

// ConstantPool is 1-indexed per the JVM spec; index 0 is unused. Long/Double
// entries occupy two consecutive slots, the second left zero-valued.
type ConstantPool struct {
	entries []ConstantPoolEntry
}

func readConstantPool(r io.Reader, count int) (*ConstantPool, error) {
	cp := &ConstantPool{entries: make([]ConstantPoolEntry, count)}
	for i := 1; i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, fmt.Errorf("classfile: reading constant pool tag at %d: %w", i, err)
		}
		entry := ConstantPoolEntry{Tag: ConstantTag(tag)}
		switch ConstantTag(tag) {
		case TagUTF8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, err
			}
			buf := make([]byte, length)
			if _, err := io.ReadFull(r, buf); err != nil {
				return nil, err
			}
			entry.UTF8 = decodeModifiedUTF8(buf)
		case TagInteger:
			var v int32
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, err
			}
			entry.IntVal = v
		case TagFloat:
			var v uint32
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, err
			}
			entry.FloatVal = float32frombits(v)
		case TagLong:
			var v int64
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, err
			}
			entry.LongVal = v
			cp.entries[i] = entry
			i++ // long/double take two pool slots
			continue
		case TagDouble:
			var v uint64
			if err := binary.Read(r, binary.BigEndian, &v); err != nil {
				return nil, err
			}
			entry.DoubleVal = float64frombits(v)
			cp.entries[i] = entry
			i++
			continue
		case TagClass, TagMethodType, TagModule, TagPackage:
			if err := binary.Read(r, binary.BigEndian, &entry.NameIndex); err != nil {
				return nil, err
			}
		case TagString:
			if err := binary.Read(r, binary.BigEndian, &entry.StringIndex); err != nil {
				return nil, err
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			if err := binary.Read(r, binary.BigEndian, &entry.ClassIndex); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &entry.NameAndTypeIdx); err != nil {
				return nil, err
			}
		case TagNameAndType:
			if err := binary.Read(r, binary.BigEndian, &entry.NameIndex); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &entry.DescriptorIndex); err != nil {
				return nil, err
			}
		case TagMethodHandle:
			var refKind uint8
			var refIndex uint16
			if err := binary.Read(r, binary.BigEndian, &refKind); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &refIndex); err != nil {
				return nil, err
			}
			entry.ClassIndex = refIndex
		case TagDynamic, TagInvokeDynamic:
			var bootstrap uint16
			if err := binary.Read(r, binary.BigEndian, &bootstrap); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.BigEndian, &entry.NameAndTypeIdx); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("classfile: unknown constant pool tag %d at index %d", tag, i)
		}
		cp.entries[i] = entry
	}
	return cp, nil
}

// UTF8At returns the UTF8 constant at idx, or "" if out of range or wrong tag.
func (cp *ConstantPool) UTF8At(idx uint16) string {
	if int(idx) >= len(cp.entries) {
		return ""
	}
	return cp.entries[idx].UTF8
}

// ClassNameAt resolves a CONSTANT_Class entry to its dotted class name.
func (cp *ConstantPool) ClassNameAt(idx uint16) string {
	if int(idx) >= len(cp.entries) {
		return ""
	}
	internal := cp.UTF8At(cp.entries[idx].NameIndex)
	return internalToDotted(internal)
}

// NameAndTypeAt resolves a CONSTANT_NameAndType entry into (name, descriptor).
func (cp *ConstantPool) NameAndTypeAt(idx uint16) (string, string) {
	if int(idx) >= len(cp.entries) {
		return "", ""
	}
	e := cp.entries[idx]
	return cp.UTF8At(e.NameIndex), cp.UTF8At(e.DescriptorIndex)
}

// RefAt resolves a Fieldref/Methodref/InterfaceMethodref into
// (className, name, descriptor).
func (cp *ConstantPool) RefAt(idx uint16) (string, string, string) {
	if int(idx) >= len(cp.entries) {
		return "", "", ""
	}
	e := cp.entries[idx]
	class := cp.ClassNameAt(e.ClassIndex)
	name, desc := cp.NameAndTypeAt(e.NameAndTypeIdx)
	return class, name, desc
}

// StringAt resolves a CONSTANT_String entry to its UTF8 value.
func (cp *ConstantPool) StringAt(idx uint16) string {
	if int(idx) >= len(cp.entries) {
		return ""
	}
	return cp.UTF8At(cp.entries[idx].StringIndex)
}

// Entry exposes the raw pool entry at idx, for opcode decoding.
func (cp *ConstantPool) Entry(idx uint16) ConstantPoolEntry {
	if int(idx) >= len(cp.entries) {
		return ConstantPoolEntry{}
	}
	return cp.entries[idx]
}

func internalToDotted(internal string) string {
	out := make([]byte, len(internal))
	for i := 0; i < len(internal); i++ {
		if internal[i] == '/' {
			out[i] = '.'
		} else {
			out[i] = internal[i]
		}
	}
	return string(out)
}

func float32frombits(b uint32) float32 { return math.Float32frombits(b) }

func float64frombits(b uint64) float64 { return math.Float64frombits(b) }

// decodeModifiedUTF8 decodes the JVM's "modified UTF-8" encoding. For the
// identifier/descriptor strings this engine cares about (ASCII class/method
// names, descriptors) this is byte-identical to UTF-8; differences only
// appear for embedded NUL and supplementary characters in string literals,
// which are passed through as close to standard UTF-8 as practical.
func decodeModifiedUTF8(b []byte) string {
	return string(b)
}
