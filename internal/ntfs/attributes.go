package ntfs

import (
	"encoding/binary"
	"unicode/utf16"
)

// Attribute type codes, per the on-disk contract.
const (
	AttrStandardInformation uint32 = 0x10
	AttrFileName            uint32 = 0x30
	AttrData                uint32 = 0x80
	AttrIndexRoot           uint32 = 0x90
	AttrIndexAllocation     uint32 = 0xA0
)

const (
	attrHeaderTypeOffset      = 0x00
	attrHeaderLengthOffset    = 0x04
	attrHeaderResidentOffset  = 0x08
	attrHeaderNameLenOffset   = 0x09
	attrHeaderNameOffOffset   = 0x0A

	residentValueLenOffset = 0x10
	residentValueOffOffset = 0x14

	nonResidentRunOffOffset    = 0x20
	nonResidentAllocSizeOffset = 0x28
	nonResidentRealSizeOffset  = 0x30

	fileNameParentRefOffset = 0x00
	fileNameFlagsOffset     = 0x38
	fileNameLenOffset       = 0x40
	fileNameNamespaceOffset = 0x41
	fileNameStringOffset    = 0x42

	nameNamespacePosix   = 0x00
	nameNamespaceWin32   = 0x01
	nameNamespaceDOS     = 0x02
	nameNamespaceWin32AndDOS = 0x03
)

// Attribute is a decoded attribute header plus its resident value bytes or
// non-resident data-run list, whichever applies.
type Attribute struct {
	Type     uint32
	Name     string
	Resident bool

	// Resident attributes carry Value directly.
	Value []byte

	// Non-resident attributes describe their extents as data runs plus
	// the real (pre-sparse-padding) size of the attribute's data.
	DataRuns []DataRun
	RealSize uint64
}

// FileNameAttr is the decoded form of an $FILE_NAME attribute value.
type FileNameAttr struct {
	ParentRef uint64
	Name      string
	Namespace byte
	IsDir     bool
}

// parseAttributes walks the attribute list starting at offset within buf,
// stopping at the 0xFFFFFFFF end marker or once the walk would cross
// usedSize.
func parseAttributes(buf []byte, offset, usedSize int) ([]Attribute, error) {
	var attrs []Attribute

	for {
		if offset+4 > usedSize {
			return nil, newError(InvalidMft, "attribute list runs past used_size")
		}
		attrType := binary.LittleEndian.Uint32(buf[offset : offset+4])
		if attrType == attributeEndMarker {
			break
		}

		if offset+attrHeaderLengthOffset+4 > len(buf) {
			return nil, newError(InvalidMft, "attribute header truncated")
		}
		length := binary.LittleEndian.Uint32(buf[offset+attrHeaderLengthOffset : offset+attrHeaderLengthOffset+4])
		if length == 0 || offset+int(length) > usedSize {
			return nil, newError(InvalidMft, "attribute length %d invalid at offset %d", length, offset)
		}

		attr, err := parseAttribute(buf[offset:offset+int(length)], attrType)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, attr)

		offset += int(length)
	}

	return attrs, nil
}

func parseAttribute(raw []byte, attrType uint32) (Attribute, error) {
	if len(raw) < residentValueLenOffset {
		return Attribute{}, newError(InvalidMft, "attribute header shorter than fixed fields")
	}

	name, err := parseAttributeName(raw)
	if err != nil {
		return Attribute{}, err
	}

	nonResident := raw[attrHeaderResidentOffset] != 0

	if !nonResident {
		if len(raw) < residentValueOffOffset+2 {
			return Attribute{}, newError(InvalidMft, "resident attribute header truncated")
		}
		valueLen := binary.LittleEndian.Uint32(raw[residentValueLenOffset : residentValueLenOffset+4])
		valueOff := binary.LittleEndian.Uint16(raw[residentValueOffOffset : residentValueOffOffset+2])
		if int(valueOff)+int(valueLen) > len(raw) {
			return Attribute{}, newError(InvalidMft, "resident attribute value out of bounds")
		}
		value := make([]byte, valueLen)
		copy(value, raw[valueOff:int(valueOff)+int(valueLen)])
		return Attribute{Type: attrType, Name: name, Resident: true, Value: value}, nil
	}

	if len(raw) < nonResidentRealSizeOffset+8 {
		return Attribute{}, newError(InvalidMft, "non-resident attribute header truncated")
	}
	runOffset := binary.LittleEndian.Uint16(raw[nonResidentRunOffOffset : nonResidentRunOffOffset+2])
	realSize := binary.LittleEndian.Uint64(raw[nonResidentRealSizeOffset : nonResidentRealSizeOffset+8])
	if int(runOffset) > len(raw) {
		return Attribute{}, newError(InvalidMft, "non-resident data-run offset out of bounds")
	}

	runs, err := parseDataRuns(raw[runOffset:])
	if err != nil {
		return Attribute{}, err
	}

	return Attribute{Type: attrType, Name: name, Resident: false, DataRuns: runs, RealSize: realSize}, nil
}

// parseAttributeName decodes the attribute's name (name_length @0x09,
// name_offset @0x0A), returning "" for the common unnamed case.
func parseAttributeName(raw []byte) (string, error) {
	if len(raw) < attrHeaderNameOffOffset+2 {
		return "", newError(InvalidMft, "attribute header truncated before name fields")
	}
	nameLenChars := int(raw[attrHeaderNameLenOffset])
	if nameLenChars == 0 {
		return "", nil
	}
	nameOffset := binary.LittleEndian.Uint16(raw[attrHeaderNameOffOffset : attrHeaderNameOffOffset+2])
	nameBytes := nameLenChars * 2
	if int(nameOffset)+nameBytes > len(raw) {
		return "", newError(InvalidMft, "attribute name runs past attribute header")
	}
	return decodeUTF16(raw[nameOffset : int(nameOffset)+nameBytes]), nil
}

// parseFileName decodes a resident $FILE_NAME attribute value.
func parseFileName(value []byte) (*FileNameAttr, error) {
	if len(value) < fileNameStringOffset {
		return nil, newError(InvalidMft, "$FILE_NAME value truncated")
	}

	parentRef := binary.LittleEndian.Uint64(value[fileNameParentRefOffset : fileNameParentRefOffset+8])
	flags := binary.LittleEndian.Uint32(value[fileNameFlagsOffset : fileNameFlagsOffset+4])
	nameLenChars := int(value[fileNameLenOffset])
	namespace := value[fileNameNamespaceOffset]

	nameBytes := nameLenChars * 2
	if fileNameStringOffset+nameBytes > len(value) {
		return nil, newError(InvalidMft, "$FILE_NAME string runs past attribute value")
	}

	name := decodeUTF16(value[fileNameStringOffset : fileNameStringOffset+nameBytes])

	return &FileNameAttr{
		ParentRef: parentRef & 0x0000FFFFFFFFFFFF,
		Name:      name,
		Namespace: namespace,
		IsDir:     flags&flagIsDirectory != 0,
	}, nil
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2 : i*2+2])
	}
	return string(utf16.Decode(units))
}
