package ntfs

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

func TestDecodeUTF16(t *testing.T) {
	want := "hello.txt"
	units := utf16.Encode([]rune(want))
	buf := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	if got := decodeUTF16(buf); got != want {
		t.Errorf("decodeUTF16 = %q, want %q", got, want)
	}
}

func buildFileNameValue(name string, parentRef uint64, namespace byte, isDir bool) []byte {
	units := utf16.Encode([]rune(name))
	value := make([]byte, fileNameStringOffset+len(units)*2)
	binary.LittleEndian.PutUint64(value[fileNameParentRefOffset:], parentRef)
	var flags uint32
	if isDir {
		flags = flagIsDirectory
	}
	binary.LittleEndian.PutUint32(value[fileNameFlagsOffset:], flags)
	value[fileNameLenOffset] = byte(len(units))
	value[fileNameNamespaceOffset] = namespace
	for i, u := range units {
		binary.LittleEndian.PutUint16(value[fileNameStringOffset+i*2:], u)
	}
	return value
}

func TestParseFileName(t *testing.T) {
	value := buildFileNameValue("report.docx", 5, nameNamespaceWin32, false)
	fn, err := parseFileName(value)
	if err != nil {
		t.Fatalf("parseFileName: %v", err)
	}
	if fn.Name != "report.docx" {
		t.Errorf("Name = %q, want %q", fn.Name, "report.docx")
	}
	if fn.ParentRef != 5 {
		t.Errorf("ParentRef = %d, want 5", fn.ParentRef)
	}
	if fn.Namespace != nameNamespaceWin32 {
		t.Errorf("Namespace = %d, want %d", fn.Namespace, nameNamespaceWin32)
	}
	if fn.IsDir {
		t.Error("expected IsDir false")
	}
}

func buildResidentAttrHeader(attrType uint32, value []byte) []byte {
	headerLen := 0x18
	total := headerLen + len(value)
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[attrHeaderTypeOffset:], attrType)
	binary.LittleEndian.PutUint32(buf[attrHeaderLengthOffset:], uint32(total))
	buf[attrHeaderResidentOffset] = 0
	binary.LittleEndian.PutUint32(buf[residentValueLenOffset:], uint32(len(value)))
	binary.LittleEndian.PutUint16(buf[residentValueOffOffset:], uint16(headerLen))
	copy(buf[headerLen:], value)
	return buf
}

func TestParseAttributesResident(t *testing.T) {
	fnValue := buildFileNameValue("hello.txt", 5, nameNamespaceWin32, false)
	attrBuf := buildResidentAttrHeader(AttrFileName, fnValue)

	endMarker := make([]byte, 8)
	binary.LittleEndian.PutUint32(endMarker, attributeEndMarker)

	buf := append(append([]byte{}, attrBuf...), endMarker...)

	attrs, err := parseAttributes(buf, 0, len(buf))
	if err != nil {
		t.Fatalf("parseAttributes: %v", err)
	}
	if len(attrs) != 1 {
		t.Fatalf("expected 1 attribute, got %d", len(attrs))
	}
	if attrs[0].Type != AttrFileName {
		t.Errorf("Type = %#x, want %#x", attrs[0].Type, AttrFileName)
	}
	fn, err := parseFileName(attrs[0].Value)
	if err != nil {
		t.Fatalf("parseFileName: %v", err)
	}
	if fn.Name != "hello.txt" {
		t.Errorf("Name = %q, want %q", fn.Name, "hello.txt")
	}
}

func TestParseAttributesRejectsTruncatedLength(t *testing.T) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[attrHeaderTypeOffset:], AttrData)
	binary.LittleEndian.PutUint32(buf[attrHeaderLengthOffset:], 0xFFFF)
	if _, err := parseAttributes(buf, 0, len(buf)); err == nil {
		t.Fatal("expected error for attribute length past used_size")
	}
}

// buildNamedResidentAttrHeader builds a resident attribute carrying a name
// (an alternate data stream, in the $DATA case), placed after the fixed
// header fields and before the value, matching the on-disk layout.
func buildNamedResidentAttrHeader(attrType uint32, name string, value []byte) []byte {
	nameUnits := utf16.Encode([]rune(name))
	nameOffset := 0x18
	nameBytes := len(nameUnits) * 2
	valueOffset := nameOffset + nameBytes

	total := valueOffset + len(value)
	buf := make([]byte, total)
	binary.LittleEndian.PutUint32(buf[attrHeaderTypeOffset:], attrType)
	binary.LittleEndian.PutUint32(buf[attrHeaderLengthOffset:], uint32(total))
	buf[attrHeaderResidentOffset] = 0
	buf[attrHeaderNameLenOffset] = byte(len(nameUnits))
	binary.LittleEndian.PutUint16(buf[attrHeaderNameOffOffset:], uint16(nameOffset))
	for i, u := range nameUnits {
		binary.LittleEndian.PutUint16(buf[nameOffset+i*2:], u)
	}
	binary.LittleEndian.PutUint32(buf[residentValueLenOffset:], uint32(len(value)))
	binary.LittleEndian.PutUint16(buf[residentValueOffOffset:], uint16(valueOffset))
	copy(buf[valueOffset:], value)
	return buf
}

func TestParseAttributeDecodesName(t *testing.T) {
	attrBuf := buildNamedResidentAttrHeader(AttrData, "Zone.Identifier", []byte("ads content"))
	attr, err := parseAttribute(attrBuf, AttrData)
	if err != nil {
		t.Fatalf("parseAttribute: %v", err)
	}
	if attr.Name != "Zone.Identifier" {
		t.Errorf("Name = %q, want %q", attr.Name, "Zone.Identifier")
	}
}

func TestFindUnnamedAttributeSkipsNamedStreams(t *testing.T) {
	named := buildNamedResidentAttrHeader(AttrData, "Zone.Identifier", []byte("ads content"))
	namedAttr, err := parseAttribute(named, AttrData)
	if err != nil {
		t.Fatalf("parseAttribute(named): %v", err)
	}

	unnamed := buildResidentAttrHeader(AttrData, []byte("canonical content"))
	unnamedAttr, err := parseAttribute(unnamed, AttrData)
	if err != nil {
		t.Fatalf("parseAttribute(unnamed): %v", err)
	}

	record := &MFTRecord{Attributes: []Attribute{namedAttr, unnamedAttr}}

	found, ok := findUnnamedAttribute(record, AttrData)
	if !ok {
		t.Fatal("expected to find the unnamed $DATA attribute")
	}
	if string(found.Value) != "canonical content" {
		t.Errorf("picked %q, want the unnamed stream's value", found.Value)
	}

	if first, _ := findAttribute(record, AttrData); string(first.Value) != "ads content" {
		t.Errorf("sanity check: findAttribute should still return the first $DATA regardless of name")
	}
}
