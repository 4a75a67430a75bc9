package ntfs

import "encoding/binary"

const (
	sectorSize          = 512
	mbrPartitionTable   = 0x1BE
	mbrPartitionEntries = 4
	mbrPartitionSize    = 16
	mbrTypeOffset       = 4
	mbrLBAOffset        = 8
	mbrTypeNTFS         = 0x07

	bootTagOffset             = 3
	bytesPerSectorOffset      = 0x0B
	sectorsPerClusterOffset   = 0x0D
	totalSectorsOffset        = 0x28
	mftLCNOffset              = 0x30
	mftMirrLCNOffset          = 0x38
	clustersPerMFTRecordOffset = 0x40

	ntfsMFTRecordBytes = 1024
)

// Geometry holds the immutable per-volume parameters captured at mount.
type Geometry struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ClusterBytes      uint32
	TotalSectors      uint64
	MFTLCN            uint64
	MFTMirrLCN        uint64
	MFTRecordBytes    uint32
	PartitionOffset   int64
}

// findPartitionOffset scans the MBR at the start of the image for the
// first primary partition of type 0x07 (NTFS/exFAT/HPFS) and returns its
// byte offset. If no such entry is found, ok is false and the caller should
// fall back to treating the image itself as a bare NTFS partition.
func findPartitionOffset(mbr []byte) (offset int64, ok bool) {
	if len(mbr) < sectorSize {
		return 0, false
	}
	for i := 0; i < mbrPartitionEntries; i++ {
		entry := mbr[mbrPartitionTable+i*mbrPartitionSize:]
		partType := entry[mbrTypeOffset]
		if partType != mbrTypeNTFS {
			continue
		}
		firstLBA := binary.LittleEndian.Uint32(entry[mbrLBAOffset : mbrLBAOffset+4])
		return int64(firstLBA) * sectorSize, true
	}
	return 0, false
}

// isNTFSBootSector reports whether the 512 bytes at boot carry the "NTFS"
// tag at the documented offset.
func isNTFSBootSector(boot []byte) bool {
	return len(boot) >= sectorSize && string(boot[bootTagOffset:bootTagOffset+4]) == "NTFS"
}

// parseGeometry decodes boot-sector geometry fields. partitionOffset is
// the absolute byte offset at which boot was read, so it can be recorded
// alongside the decoded fields.
func parseGeometry(boot []byte, partitionOffset int64) (*Geometry, error) {
	if !isNTFSBootSector(boot) {
		return nil, newError(InvalidBootSector, "missing NTFS signature at offset %d", partitionOffset+bootTagOffset)
	}

	g := &Geometry{
		BytesPerSector:    binary.LittleEndian.Uint16(boot[bytesPerSectorOffset : bytesPerSectorOffset+2]),
		SectorsPerCluster: boot[sectorsPerClusterOffset],
		TotalSectors:      binary.LittleEndian.Uint64(boot[totalSectorsOffset : totalSectorsOffset+8]),
		MFTLCN:            binary.LittleEndian.Uint64(boot[mftLCNOffset : mftLCNOffset+8]),
		MFTMirrLCN:        binary.LittleEndian.Uint64(boot[mftMirrLCNOffset : mftMirrLCNOffset+8]),
		PartitionOffset:   partitionOffset,
	}

	g.ClusterBytes = uint32(g.BytesPerSector) * uint32(g.SectorsPerCluster)

	clustersPerMFTRecord := int8(boot[clustersPerMFTRecordOffset])
	if clustersPerMFTRecord < 0 {
		g.MFTRecordBytes = 1 << uint(-clustersPerMFTRecord)
	} else {
		g.MFTRecordBytes = uint32(clustersPerMFTRecord) * g.ClusterBytes
	}

	if err := validateGeometry(g); err != nil {
		return nil, err
	}
	return g, nil
}

// validateGeometry enforces I1 and this core's fixed 1024-byte MFT record
// size assumption.
func validateGeometry(g *Geometry) error {
	if !isPowerOfTwo(uint64(g.BytesPerSector)) || g.BytesPerSector < 256 || g.BytesPerSector > 4096 {
		return newError(InvalidBootSector, "unsupported bytes-per-sector %d", g.BytesPerSector)
	}
	if !isPowerOfTwo(uint64(g.SectorsPerCluster)) {
		return newError(InvalidBootSector, "sectors-per-cluster %d is not a power of two", g.SectorsPerCluster)
	}
	if g.ClusterBytes == 0 || g.ClusterBytes > 64*1024 {
		return newError(InvalidBootSector, "cluster size %d bytes out of range", g.ClusterBytes)
	}
	if g.MFTRecordBytes != ntfsMFTRecordBytes {
		return newError(InvalidBootSector, "unsupported MFT record size %d (only 1024 is decoded)", g.MFTRecordBytes)
	}
	return nil
}

func isPowerOfTwo(n uint64) bool {
	return n != 0 && n&(n-1) == 0
}
