package ntfs

// DataRun is one decoded extent of a non-resident attribute: Length
// clusters starting at LCN, or a sparse run (LCN == -1) standing in for
// Length clusters of zero bytes.
type DataRun struct {
	LCN    int64
	Length uint64
}

// parseDataRuns decodes the variable-length data-run stream found after a
// non-resident attribute header. The stream ends at a zero header byte.
// Each run's header byte packs the byte-width of the length field in its
// low nibble and the byte-width of the signed LCN delta in its high
// nibble; a zero offset width marks a sparse run, and the real LCN is
// otherwise the previous run's LCN plus the decoded signed delta.
func parseDataRuns(buf []byte) ([]DataRun, error) {
	var runs []DataRun
	var lcn int64
	offset := 0

	for offset < len(buf) {
		header := buf[offset]
		if header == 0 {
			break
		}
		offset++

		lengthSize := int(header & 0x0F)
		offsetSize := int(header >> 4)

		if offset+lengthSize > len(buf) {
			return nil, newError(InvalidMft, "data run length field truncated")
		}
		length := decodeUnsigned(buf[offset : offset+lengthSize])
		offset += lengthSize

		if length == 0 {
			return nil, newError(InvalidMft, "data run declares zero length")
		}

		if offsetSize == 0 {
			// Sparse run: no LCN field, cumulative LCN is unchanged.
			runs = append(runs, DataRun{LCN: -1, Length: length})
			continue
		}

		if offset+offsetSize > len(buf) {
			return nil, newError(InvalidMft, "data run offset field truncated")
		}
		delta := decodeSigned(buf[offset : offset+offsetSize])
		offset += offsetSize

		lcn += delta
		if lcn < 0 {
			return nil, newError(InvalidMft, "data run cumulative LCN went negative")
		}
		runs = append(runs, DataRun{LCN: lcn, Length: length})
	}

	return runs, nil
}

func decodeUnsigned(b []byte) uint64 {
	var v uint64
	for i, c := range b {
		v |= uint64(c) << (8 * uint(i))
	}
	return v
}

// decodeSigned interprets b as a little-endian two's-complement integer
// whose width is len(b) bytes, sign-extending from the top bit of the
// last byte.
func decodeSigned(b []byte) int64 {
	var v int64
	for i, c := range b {
		v |= int64(c) << (8 * uint(i))
	}
	if len(b) > 0 && b[len(b)-1]&0x80 != 0 {
		v -= 1 << (8 * uint(len(b)))
	}
	return v
}
