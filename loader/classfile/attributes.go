package classfile

import (
	"bytes"
	"encoding/binary"
	"io"
)

// ExceptionTableEntry is one row of a Code attribute's exception table.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType string // "" for a finally (catch-all) handler
}

// CodeAttribute is the decoded Code attribute of a method: its bytecode plus
// the exception table needed to recognise try/catch control flow.
type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []Attribute
}

func parseCodeAttribute(info []byte, cp *ConstantPool) (*CodeAttribute, error) {
	r := bytes.NewReader(info)

	var hdr struct {
		MaxStack  uint16
		MaxLocals uint16
		CodeLen   uint32
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, err
	}
	code := make([]byte, hdr.CodeLen)
	if _, err := io.ReadFull(r, code); err != nil {
		return nil, err
	}

	var excCount uint16
	if err := binary.Read(r, binary.BigEndian, &excCount); err != nil {
		return nil, err
	}
	excTable := make([]ExceptionTableEntry, excCount)
	for i := range excTable {
		var raw struct {
			StartPC   uint16
			EndPC     uint16
			HandlerPC uint16
			CatchType uint16
		}
		if err := binary.Read(r, binary.BigEndian, &raw); err != nil {
			return nil, err
		}
		catchType := ""
		if raw.CatchType != 0 {
			catchType = cp.ClassNameAt(raw.CatchType)
		}
		excTable[i] = ExceptionTableEntry{
			StartPC:   raw.StartPC,
			EndPC:     raw.EndPC,
			HandlerPC: raw.HandlerPC,
			CatchType: catchType,
		}
	}

	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil, err
	}

	return &CodeAttribute{
		MaxStack:       hdr.MaxStack,
		MaxLocals:      hdr.MaxLocals,
		Code:           code,
		ExceptionTable: excTable,
		Attributes:     attrs,
	}, nil
}

// LineNumberAt returns the source line number covering bytecode offset pc, if
// the Code attribute carries a LineNumberTable, else 0.
func (c *CodeAttribute) LineNumberAt(pc int) int {
	for _, a := range c.Attributes {
		if a.Name != "LineNumberTable" {
			continue
		}
		r := bytes.NewReader(a.Info)
		var count uint16
		if binary.Read(r, binary.BigEndian, &count) != nil {
			return 0
		}
		best := 0
		for i := uint16(0); i < count; i++ {
			var entry struct {
				StartPC uint16
				Line    uint16
			}
			if binary.Read(r, binary.BigEndian, &entry) != nil {
				return best
			}
			if int(entry.StartPC) <= pc {
				best = int(entry.Line)
			}
		}
		return best
	}
	return 0
}
