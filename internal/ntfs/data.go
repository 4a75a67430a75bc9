package ntfs

// readAttributeData returns the full logical data of attr: a copy of its
// resident value, or every data run read and concatenated and truncated to
// RealSize for non-resident attributes.
func (v *Volume) readAttributeData(attr Attribute) ([]byte, error) {
	if attr.Resident {
		return append([]byte{}, attr.Value...), nil
	}

	out := make([]byte, 0, attr.RealSize)
	for _, run := range attr.DataRuns {
		chunk, err := v.readClusters(run.LCN, run.Length)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}

	if uint64(len(out)) > attr.RealSize {
		out = out[:attr.RealSize]
	}
	return out, nil
}

func findAttribute(record *MFTRecord, attrType uint32) (*Attribute, bool) {
	for i := range record.Attributes {
		if record.Attributes[i].Type == attrType {
			return &record.Attributes[i], true
		}
	}
	return nil, false
}

// findUnnamedAttribute finds the first attribute of attrType carrying an
// empty name. The unnamed $DATA stream is the file's canonical content;
// named $DATA streams (alternate data streams) are exposed as attributes
// but must never be picked for the File View size/read contract.
func findUnnamedAttribute(record *MFTRecord, attrType uint32) (*Attribute, bool) {
	for i := range record.Attributes {
		if record.Attributes[i].Type == attrType && record.Attributes[i].Name == "" {
			return &record.Attributes[i], true
		}
	}
	return nil, false
}

func findAllAttributes(record *MFTRecord, attrType uint32) []*Attribute {
	var out []*Attribute
	for i := range record.Attributes {
		if record.Attributes[i].Type == attrType {
			out = append(out, &record.Attributes[i])
		}
	}
	return out
}
