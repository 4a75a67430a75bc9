package ntfs

import (
	"strings"

	"github.com/shubham030/ntfsrecover/internal/progress"
)

// maxScannedRecords backstops a full-volume scan against a corrupt
// $MFT whose declared size would otherwise send the scan past any
// reasonable record count.
const maxScannedRecords = 10_000_000

// mftRecordCount derives how many MFT records the volume declares, from
// the $MFT file's own $DATA attribute.
func (v *Volume) mftRecordCount() (uint64, error) {
	mftRecord, err := v.readRecord(0)
	if err != nil {
		return 0, err
	}
	data, ok := findUnnamedAttribute(mftRecord, AttrData)
	if !ok {
		return 0, newError(CorruptVolume, "$MFT record has no $DATA attribute")
	}

	size := data.RealSize
	if data.Resident {
		size = uint64(len(data.Value))
	}

	count := size / uint64(v.geometry.MFTRecordBytes)
	if count > maxScannedRecords {
		count = maxScannedRecords
	}
	return count, nil
}

// ListFiles lists the entries of the directory at dirPath ("" or "/" for
// the volume root), excluding reserved system metadata files.
func (v *Volume) ListFiles(dirPath string) ([]*FileView, error) {
	dir, err := v.resolvePath(dirPath)
	if err != nil {
		return nil, err
	}
	if !dir.IsDir {
		return nil, newError(InvalidParameter, "%q is not a directory", dirPath)
	}

	entries, err := v.listDirectory(dir)
	if err != nil {
		return nil, err
	}

	var views []*FileView
	for _, e := range entries {
		if isSystemEntry(e) {
			continue
		}
		record, err := v.readRecord(e.FileRef)
		if err != nil {
			return nil, err
		}
		view, err := newFileView(record)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// ExtractFile resolves path and returns its $DATA content.
func (v *Volume) ExtractFile(path string) ([]byte, error) {
	record, err := v.resolvePath(path)
	if err != nil {
		return nil, err
	}
	return v.ReadData(record)
}

// ExtractAllFiles walks dirPath and every subdirectory using an explicit
// work queue, invoking visit for each regular file encountered.
func (v *Volume) ExtractAllFiles(dirPath string, visit func(path string, data []byte) error) error {
	type queued struct {
		record *MFTRecord
		path   string
	}

	root, err := v.resolvePath(dirPath)
	if err != nil {
		return err
	}
	if !root.IsDir {
		return newError(InvalidParameter, "%q is not a directory", dirPath)
	}

	queue := []queued{{record: root, path: strings.TrimRight(dirPath, "/")}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		entries, err := v.listDirectory(item.record)
		if err != nil {
			return err
		}

		for _, e := range entries {
			if isSystemEntry(e) {
				continue
			}
			childPath := item.path + "/" + e.FileName.Name

			record, err := v.readRecord(e.FileRef)
			if err != nil {
				return err
			}

			if record.IsDir {
				queue = append(queue, queued{record: record, path: childPath})
				continue
			}

			data, err := v.ReadData(record)
			if err != nil {
				return err
			}
			if err := visit(childPath, data); err != nil {
				return err
			}
		}
	}

	return nil
}

// ListDeletedFiles scans every MFT record bounded by the volume's own
// declared record count and returns a FileView for each record that is
// unallocated but still carries a recoverable $FILE_NAME attribute.
func (v *Volume) ListDeletedFiles(reporter *progress.Reporter) ([]*FileView, error) {
	count, err := v.mftRecordCount()
	if err != nil {
		return nil, err
	}

	var deleted []*FileView
	var i uint64
	for i = 0; i < count; i++ {
		record, err := v.readRecord(i)
		reporter.Report(progress.Update{Processed: int64(i), Total: int64(count), Found: len(deleted)})
		if err != nil {
			continue
		}
		if record.InUse {
			continue
		}
		if _, ok := findAttribute(record, AttrFileName); !ok {
			continue
		}
		view, err := newFileView(record)
		if err != nil {
			continue
		}
		if i <= 11 && strings.HasPrefix(view.Name, "$") {
			continue
		}
		deleted = append(deleted, view)
	}
	reporter.Done(progress.Update{Processed: int64(count), Total: int64(count), Found: len(deleted)})

	return deleted, nil
}

// ExtractDeletedFiles recovers the $DATA content for every deleted file
// found by ListDeletedFiles, on a best-effort basis.
func (v *Volume) ExtractDeletedFiles(reporter *progress.Reporter) (map[string][]byte, error) {
	deleted, err := v.ListDeletedFiles(reporter)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(deleted))
	for _, view := range deleted {
		record, err := v.readRecord(view.RecordIndex)
		if err != nil {
			continue
		}
		data, err := v.ReadDeletedData(record)
		if err != nil {
			continue
		}
		out[view.Name] = data
	}
	return out, nil
}

// SearchFiles scans every MFT record (allocated or deleted) for a name
// containing substr, case-insensitively.
func (v *Volume) SearchFiles(substr string, reporter *progress.Reporter) ([]*FileView, error) {
	count, err := v.mftRecordCount()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(substr)
	var matches []*FileView
	var i uint64
	for i = 0; i < count; i++ {
		record, err := v.readRecord(i)
		reporter.Report(progress.Update{Processed: int64(i), Total: int64(count), Found: len(matches)})
		if err != nil {
			continue
		}
		view, err := newFileView(record)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(view.Name), needle) {
			matches = append(matches, view)
		}
	}
	reporter.Done(progress.Update{Processed: int64(count), Total: int64(count), Found: len(matches)})

	return matches, nil
}
