package ntfs

import "encoding/binary"

const (
	mftSignature = "FILE"

	mftSignatureOffset  = 0x00
	mftUSAOffsetOffset  = 0x04
	mftUSACountOffset   = 0x06
	mftFlagsOffset      = 0x16
	mftUsedSizeOffset   = 0x18
	mftAllocSizeOffset  = 0x1C
	mftRecordNumOffset  = 0x2C
	mftFirstAttrOffset  = 0x14

	attributeEndMarker = 0xFFFFFFFF

	// flagInUse marks the record as currently allocated. Its absence
	// together with a still-present $FILE_NAME is this decoder's
	// signal for a recoverable deleted entry.
	flagInUse       = 0x0001
	flagIsDirectory = 0x0002
)

// MFTRecord is a decoded $MFT entry: its header fields plus every
// attribute found before the 0xFFFFFFFF end marker or used_size boundary.
type MFTRecord struct {
	Index      uint64
	InUse      bool
	IsDir      bool
	UsedSize   uint32
	AllocSize  uint32
	Attributes []Attribute
}

// readRecord reads, fixes up, and decodes the MFT record at index. Records
// are served from the volume's bounded cache after first decode.
func (v *Volume) readRecord(index uint64) (*MFTRecord, error) {
	if err := v.requireMounted(); err != nil {
		return nil, err
	}

	if cached, ok := v.cache.get(index); ok {
		return cached, nil
	}

	recordBytes := v.geometry.MFTRecordBytes
	mftByteOffset := v.geometry.PartitionOffset + int64(v.geometry.MFTLCN)*int64(v.geometry.ClusterBytes)
	offset := mftByteOffset + int64(index)*int64(recordBytes)

	buf := make([]byte, recordBytes)
	if _, err := v.readAbsolute(buf, offset); err != nil {
		return nil, wrapError(IoError, err, "failed to read MFT record %d", index)
	}

	if string(buf[mftSignatureOffset:mftSignatureOffset+4]) != mftSignature {
		return nil, newError(InvalidMft, "MFT record %d missing FILE signature", index)
	}

	if err := applyFixup(buf, v.geometry.BytesPerSector); err != nil {
		return nil, wrapError(InvalidMft, err, "MFT record %d fix-up failed", index)
	}

	record, err := decodeRecord(buf, index)
	if err != nil {
		return nil, err
	}

	v.cache.put(index, record)
	return record, nil
}

// applyFixup validates and applies the Update Sequence Array in place. The
// last two bytes of every sector-sized chunk of buf must equal the USA
// signature word; a mismatch indicates a torn write or corrupt record and
// is treated as fatal rather than silently accepted.
func applyFixup(buf []byte, bytesPerSector uint16) error {
	usaOffset := binary.LittleEndian.Uint16(buf[mftUSAOffsetOffset : mftUSAOffsetOffset+2])
	usaCount := binary.LittleEndian.Uint16(buf[mftUSACountOffset : mftUSACountOffset+2])
	if usaCount == 0 {
		return newError(InvalidMft, "update sequence array is empty")
	}

	usaEnd := int(usaOffset) + int(usaCount)*2
	if int(usaOffset) < 0 || usaEnd > len(buf) {
		return newError(InvalidMft, "update sequence array out of bounds")
	}

	signature := buf[usaOffset : usaOffset+2]
	sectors := int(usaCount) - 1

	for i := 0; i < sectors; i++ {
		sectorEnd := (i+1)*int(bytesPerSector) - 2
		if sectorEnd+2 > len(buf) {
			return newError(InvalidMft, "record shorter than declared sector count")
		}

		check := buf[sectorEnd : sectorEnd+2]
		if check[0] != signature[0] || check[1] != signature[1] {
			return newError(InvalidMft, "sector %d fix-up signature mismatch", i)
		}

		replacement := buf[int(usaOffset)+2+i*2 : int(usaOffset)+2+i*2+2]
		copy(check, replacement)
	}
	return nil
}

func decodeRecord(buf []byte, index uint64) (*MFTRecord, error) {
	flags := binary.LittleEndian.Uint16(buf[mftFlagsOffset : mftFlagsOffset+2])
	usedSize := binary.LittleEndian.Uint32(buf[mftUsedSizeOffset : mftUsedSizeOffset+4])
	allocSize := binary.LittleEndian.Uint32(buf[mftAllocSizeOffset : mftAllocSizeOffset+4])
	firstAttr := binary.LittleEndian.Uint16(buf[mftFirstAttrOffset : mftFirstAttrOffset+2])

	if usedSize == 0 || int(usedSize) > len(buf) {
		return nil, newError(InvalidMft, "record %d used_size %d out of bounds", index, usedSize)
	}
	if usedSize > allocSize || int(allocSize) > len(buf) {
		return nil, newError(InvalidMft, "record %d violates used_size %d <= allocated_size %d <= %d", index, usedSize, allocSize, len(buf))
	}

	attrs, err := parseAttributes(buf, int(firstAttr), int(usedSize))
	if err != nil {
		return nil, wrapError(InvalidMft, err, "record %d attribute parse failed", index)
	}

	return &MFTRecord{
		Index:      index,
		InUse:      flags&flagInUse != 0,
		IsDir:      flags&flagIsDirectory != 0,
		UsedSize:   usedSize,
		AllocSize:  allocSize,
		Attributes: attrs,
	}, nil
}
