package ntfs

import "strings"

// rootRecordIndex is the well-known MFT index of the volume's root
// directory.
const rootRecordIndex = 5

// resolvePath walks path components from the root directory, matching
// each component case-insensitively, and returns the MFT record of the
// final component.
func (v *Volume) resolvePath(path string) (*MFTRecord, error) {
	record, err := v.readRecord(rootRecordIndex)
	if err != nil {
		return nil, err
	}

	components := splitPath(path)
	for _, component := range components {
		entries, err := v.listDirectory(record)
		if err != nil {
			return nil, err
		}

		var match *IndexEntry
		for i := range entries {
			if strings.EqualFold(entries[i].FileName.Name, component) {
				match = &entries[i]
				break
			}
		}
		if match == nil {
			return nil, newError(NotFound, "path component %q not found", component)
		}

		record, err = v.readRecord(match.FileRef)
		if err != nil {
			return nil, err
		}
	}

	return record, nil
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/\\")
	if path == "" || path == "." {
		return nil
	}
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })
}
