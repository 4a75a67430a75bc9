package ntfs

import (
	"encoding/binary"
	"time"
)

const (
	siCreatedOffset  = 0x00
	siModifiedOffset = 0x08
	siAccessedOffset = 0x10
	siChangedOffset  = 0x18

	// windowsEpochOffsetSeconds is the number of seconds between the
	// Windows FILETIME epoch (1601-01-01) and the Unix epoch.
	windowsEpochOffsetSeconds = 11644473600
)

// FileView is the externally visible summary of one MFT record: its
// resolved name, size, directory/deletion state, and standard timestamps.
type FileView struct {
	RecordIndex uint64
	Name        string
	Size        uint64
	IsDirectory bool
	IsDeleted   bool
	Created     time.Time
	Modified    time.Time
	Accessed    time.Time
	MFTChanged  time.Time
}

func filetimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	seconds := int64(ft/10000000) - windowsEpochOffsetSeconds
	nanos := int64(ft%10000000) * 100
	return time.Unix(seconds, nanos).UTC()
}

func parseStandardInformation(value []byte) (created, modified, accessed, changed time.Time, err error) {
	if len(value) < siChangedOffset+8 {
		return time.Time{}, time.Time{}, time.Time{}, time.Time{}, newError(InvalidMft, "$STANDARD_INFORMATION value truncated")
	}
	created = filetimeToTime(binary.LittleEndian.Uint64(value[siCreatedOffset : siCreatedOffset+8]))
	modified = filetimeToTime(binary.LittleEndian.Uint64(value[siModifiedOffset : siModifiedOffset+8]))
	accessed = filetimeToTime(binary.LittleEndian.Uint64(value[siAccessedOffset : siAccessedOffset+8]))
	changed = filetimeToTime(binary.LittleEndian.Uint64(value[siChangedOffset : siChangedOffset+8]))
	return created, modified, accessed, changed, nil
}

// bestFileName picks the preferred $FILE_NAME attribute among possibly
// several (WIN32/POSIX preferred over a DOS 8.3 alias).
func bestFileName(record *MFTRecord) (*FileNameAttr, error) {
	var best *FileNameAttr
	for _, attr := range findAllAttributes(record, AttrFileName) {
		fn, err := parseFileName(attr.Value)
		if err != nil {
			continue
		}
		if best == nil || preferredNamespace(fn.Namespace, best.Namespace) {
			best = fn
		}
	}
	if best == nil {
		return nil, newError(CorruptVolume, "record %d has no $FILE_NAME attribute", record.Index)
	}
	return best, nil
}

// newFileView builds a FileView from a decoded MFT record.
func newFileView(record *MFTRecord) (*FileView, error) {
	fn, err := bestFileName(record)
	if err != nil {
		return nil, err
	}

	view := &FileView{
		RecordIndex: record.Index,
		Name:        fn.Name,
		IsDirectory: record.IsDir,
		IsDeleted:   !record.InUse,
	}

	if si, ok := findAttribute(record, AttrStandardInformation); ok {
		created, modified, accessed, changed, err := parseStandardInformation(si.Value)
		if err == nil {
			view.Created, view.Modified, view.Accessed, view.MFTChanged = created, modified, accessed, changed
		}
	}

	if data, ok := findUnnamedAttribute(record, AttrData); ok && !record.IsDir {
		if data.Resident {
			view.Size = uint64(len(data.Value))
		} else {
			view.Size = data.RealSize
		}
	}

	return view, nil
}

// ReadData returns the unnamed $DATA attribute's full logical content, or
// an empty slice if the record has no unnamed $DATA attribute.
func (v *Volume) ReadData(record *MFTRecord) ([]byte, error) {
	data, ok := findUnnamedAttribute(record, AttrData)
	if !ok {
		return []byte{}, nil
	}
	return v.readAttributeData(*data)
}

// ReadDeletedData behaves like ReadData but tolerates individual cluster
// reads failing (because the space has since been reallocated): a run that
// cannot be read contributes no bytes, and the reconstruction continues
// with the next run rather than aborting.
func (v *Volume) ReadDeletedData(record *MFTRecord) ([]byte, error) {
	data, ok := findUnnamedAttribute(record, AttrData)
	if !ok {
		return []byte{}, nil
	}
	if data.Resident {
		return append([]byte{}, data.Value...), nil
	}

	out := make([]byte, 0, data.RealSize)
	for _, run := range data.DataRuns {
		chunk, err := v.readClusters(run.LCN, run.Length)
		if err != nil {
			continue
		}
		out = append(out, chunk...)
	}

	if uint64(len(out)) > data.RealSize {
		out = out[:data.RealSize]
	}
	return out, nil
}
