package ntfs

import "encoding/binary"

const (
	indxSignature = "INDX"

	indexRootHeaderSize = 0x10
	indexRootSizeOffset = 0x08

	// indexHeader fields, relative to wherever the index header begins
	// (offset 0x10 within $INDEX_ROOT's value, offset 0x18 within an
	// INDX record).
	idxHeaderEntriesOffOffset   = 0x00
	idxHeaderEntriesTotalOffset = 0x04

	idxEntryFileRefOffset   = 0x00
	idxEntryLengthOffset    = 0x08
	idxEntryStreamLenOffset = 0x0A
	idxEntryFlagsOffset     = 0x0C
	idxEntryHeaderSize      = 0x10

	idxEntryFlagSubNode = 0x01
	idxEntryFlagLast    = 0x02

	indxUSAOffsetOffset = 0x04
	indxUSACountOffset  = 0x06
	indxHeaderStart     = 0x18
)

// IndexEntry is one decoded directory entry: the referenced MFT record
// and its $FILE_NAME content.
type IndexEntry struct {
	FileRef  uint64
	FileName *FileNameAttr
}

// parseIndexEntries walks index entries starting at headerStart within
// buf, where headerStart points at a 16-byte index header (offset to
// first entry, total entry bytes). It stops at the entry carrying the
// end-of-node flag, at a zero-length entry, or at an entry that would run
// past buf.
func parseIndexEntries(buf []byte, headerStart int) ([]IndexEntry, error) {
	if headerStart+8 > len(buf) {
		return nil, newError(InvalidMft, "index header truncated")
	}

	entriesOff := binary.LittleEndian.Uint32(buf[headerStart+idxHeaderEntriesOffOffset : headerStart+idxHeaderEntriesOffOffset+4])
	entriesTotal := binary.LittleEndian.Uint32(buf[headerStart+idxHeaderEntriesTotalOffset : headerStart+idxHeaderEntriesTotalOffset+4])

	start := headerStart + int(entriesOff)
	end := headerStart + int(entriesTotal)
	if start < 0 || end > len(buf) || start > end {
		return nil, newError(InvalidMft, "index entries region out of bounds")
	}

	var entries []IndexEntry
	offset := start

	for offset < end {
		if offset+idxEntryHeaderSize > len(buf) {
			break
		}

		entryLen := binary.LittleEndian.Uint16(buf[offset+idxEntryLengthOffset : offset+idxEntryLengthOffset+2])
		flags := binary.LittleEndian.Uint32(buf[offset+idxEntryFlagsOffset : offset+idxEntryFlagsOffset+4])

		if entryLen == 0 || offset+int(entryLen) > len(buf) {
			break
		}

		if flags&idxEntryFlagLast == 0 {
			streamLen := binary.LittleEndian.Uint16(buf[offset+idxEntryStreamLenOffset : offset+idxEntryStreamLenOffset+2])
			streamStart := offset + idxEntryHeaderSize
			if streamStart+int(streamLen) > len(buf) {
				return nil, newError(InvalidMft, "index entry stream out of bounds")
			}

			fileRef := binary.LittleEndian.Uint64(buf[offset+idxEntryFileRefOffset : offset+idxEntryFileRefOffset+8])
			fn, err := parseFileName(buf[streamStart : streamStart+int(streamLen)])
			if err != nil {
				return nil, err
			}
			entries = append(entries, IndexEntry{FileRef: fileRef & 0x0000FFFFFFFFFFFF, FileName: fn})
		}

		offset += int(entryLen)
		if flags&idxEntryFlagLast != 0 {
			break
		}
	}

	return entries, nil
}

// decodeIndexRoot decodes a resident $INDEX_ROOT attribute value.
func decodeIndexRoot(value []byte) ([]IndexEntry, error) {
	if len(value) < indexRootHeaderSize {
		return nil, newError(InvalidMft, "$INDEX_ROOT value truncated")
	}
	return parseIndexEntries(value, indexRootHeaderSize)
}

// indexAllocationRecordSize reads the index-record size declared by the
// directory's sibling $INDEX_ROOT (at offset 0x08 of its value), which is
// the unit $INDEX_ALLOCATION's INDX blocks are sliced into. It is not
// necessarily the volume's cluster size.
func indexAllocationRecordSize(record *MFTRecord) (int, error) {
	root, ok := findAttribute(record, AttrIndexRoot)
	if !ok {
		return 0, newError(InvalidMft, "$INDEX_ALLOCATION present without a sibling $INDEX_ROOT")
	}
	if len(root.Value) < indexRootSizeOffset+4 {
		return 0, newError(InvalidMft, "$INDEX_ROOT value truncated before index record size field")
	}
	size := binary.LittleEndian.Uint32(root.Value[indexRootSizeOffset : indexRootSizeOffset+4])
	if size == 0 {
		return 0, newError(InvalidMft, "$INDEX_ROOT declares a zero index record size")
	}
	return int(size), nil
}

// decodeIndexAllocationBlock decodes one fixed-up INDX record read from an
// $INDEX_ALLOCATION attribute's data runs.
func decodeIndexAllocationBlock(buf []byte, bytesPerSector uint16) ([]IndexEntry, error) {
	if len(buf) < indxHeaderStart || string(buf[0:4]) != indxSignature {
		return nil, newError(InvalidMft, "INDX record missing signature")
	}
	if err := applyFixup(buf, bytesPerSector); err != nil {
		return nil, wrapError(InvalidMft, err, "INDX record fix-up failed")
	}
	return parseIndexEntries(buf, indxHeaderStart)
}

// listDirectory returns every directory entry for record, combining its
// resident $INDEX_ROOT entries with any $INDEX_ALLOCATION index-buffer
// entries, deduplicated by namespace (preferring WIN32/POSIX names over
// their DOS 8.3 counterpart for the same file reference).
func (v *Volume) listDirectory(record *MFTRecord) ([]IndexEntry, error) {
	var all []IndexEntry

	if root, ok := findAttribute(record, AttrIndexRoot); ok {
		entries, err := decodeIndexRoot(root.Value)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}

	if alloc, ok := findAttribute(record, AttrIndexAllocation); ok {
		indexRecordSize, err := indexAllocationRecordSize(record)
		if err != nil {
			return nil, err
		}
		data, err := v.readAttributeData(*alloc)
		if err != nil {
			return nil, err
		}
		for off := 0; off+indxHeaderStart <= len(data); off += indexRecordSize {
			blockEnd := off + indexRecordSize
			if blockEnd > len(data) {
				blockEnd = len(data)
			}
			block := data[off:blockEnd]
			if len(block) < 4 || string(block[0:4]) != indxSignature {
				continue
			}
			entries, err := decodeIndexAllocationBlock(block, v.geometry.BytesPerSector)
			if err != nil {
				return nil, err
			}
			all = append(all, entries...)
		}
	}

	return dedupeNamespace(all), nil
}

// dedupeNamespace collapses duplicate entries for the same file reference
// that arise from Windows recording both a WIN32 long name and a DOS 8.3
// short name: the long (WIN32, POSIX, or combined WIN32-and-DOS) name
// wins and the plain DOS alias is dropped.
func dedupeNamespace(entries []IndexEntry) []IndexEntry {
	best := make(map[uint64]IndexEntry)
	var order []uint64

	for _, e := range entries {
		existing, ok := best[e.FileRef]
		if !ok {
			best[e.FileRef] = e
			order = append(order, e.FileRef)
			continue
		}
		if preferredNamespace(e.FileName.Namespace, existing.FileName.Namespace) {
			best[e.FileRef] = e
		}
	}

	out := make([]IndexEntry, 0, len(order))
	for _, ref := range order {
		out = append(out, best[ref])
	}
	return out
}

func preferredNamespace(candidate, current byte) bool {
	if current != nameNamespaceDOS {
		return false
	}
	return candidate != nameNamespaceDOS
}

// isSystemEntry reports whether a directory entry refers to a reserved
// metadata file: MFT record indices 0-11 whose name additionally starts
// with '$', matching NTFS's own metadata-file naming convention.
func isSystemEntry(e IndexEntry) bool {
	return e.FileRef <= 11 && len(e.FileName.Name) > 0 && e.FileName.Name[0] == '$'
}
