// Package ntfs implements a read-only forensic decoder for NTFS volumes:
// boot sector and MBR interpretation, MFT record and attribute decoding,
// data-run extents, $INDEX_ROOT/$INDEX_ALLOCATION directory walking, path
// resolution, and deleted-entry recovery. It never writes to the image it
// reads.
package ntfs

import (
	"sync"

	"github.com/shubham030/ntfsrecover/internal/segment"
)

type volumeState int

const (
	stateUnmounted volumeState = iota
	stateMounted
	stateClosed
)

// Volume is a mounted NTFS volume. It owns the underlying segment.Reader
// and exposes every public operation in this package. A Volume is safe for
// concurrent read-only use: the MFT cache is internally synchronized, and
// every read through the segment reader is serialized by a mutex.
type Volume struct {
	mu    sync.Mutex
	image *segment.Reader

	state    volumeState
	geometry *Geometry
	cache    *mftCache
}

// Mount opens path (see segment.Open for the split-image naming
// convention) and mounts the NTFS volume found inside it.
func Mount(path string) (*Volume, error) {
	img, err := segment.Open(path)
	if err != nil {
		return nil, wrapError(IoError, err, "failed to open image %q", path)
	}

	v := &Volume{image: img, cache: newMFTCache(defaultCacheCapacity)}
	if err := v.mount(); err != nil {
		img.Close()
		return nil, err
	}
	return v, nil
}

func (v *Volume) mount() error {
	mbr := make([]byte, sectorSize)
	if _, err := v.readAbsolute(mbr, 0); err != nil {
		return wrapError(IoError, err, "failed to read MBR")
	}

	partitionOffset, found := findPartitionOffset(mbr)

	boot := make([]byte, sectorSize)
	if found {
		if _, err := v.readAbsolute(boot, partitionOffset); err != nil {
			return wrapError(IoError, err, "failed to read boot sector at %d", partitionOffset)
		}
		if !isNTFSBootSector(boot) {
			found = false
		}
	}

	if !found {
		// No MBR partition of type 0x07 found (or it didn't carry an NTFS
		// tag): fall back to treating the image itself as a bare NTFS
		// partition, common for single-partition forensic captures.
		partitionOffset = 0
		copy(boot, mbr)
		if !isNTFSBootSector(boot) {
			return newError(InvalidBootSector, "no NTFS partition found in MBR and image is not a bare NTFS partition")
		}
	}

	geometry, err := parseGeometry(boot, partitionOffset)
	if err != nil {
		return err
	}

	v.geometry = geometry
	v.state = stateMounted
	return nil
}

// readAbsolute reads length(buf) bytes at an absolute image offset,
// serializing access to the underlying stateful file handles.
func (v *Volume) readAbsolute(buf []byte, offset int64) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.image.ReadAt(buf, offset)
}

func (v *Volume) requireMounted() error {
	switch v.state {
	case stateUnmounted:
		return newError(InvalidParameter, "volume is not mounted")
	case stateClosed:
		return newError(InvalidParameter, "volume is closed")
	default:
		return nil
	}
}

// VolumeInfo is the externally visible summary of a mounted volume's
// geometry.
type VolumeInfo struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ClusterBytes      uint32
	TotalSectors      uint64
	MFTLCN            uint64
	PartitionOffset   int64
}

// GetVolumeInfo returns the geometry captured at mount.
func (v *Volume) GetVolumeInfo() (*VolumeInfo, error) {
	if err := v.requireMounted(); err != nil {
		return nil, err
	}
	return &VolumeInfo{
		BytesPerSector:    v.geometry.BytesPerSector,
		SectorsPerCluster: v.geometry.SectorsPerCluster,
		ClusterBytes:      v.geometry.ClusterBytes,
		TotalSectors:      v.geometry.TotalSectors,
		MFTLCN:            v.geometry.MFTLCN,
		PartitionOffset:   v.geometry.PartitionOffset,
	}, nil
}

// readClusters reads count clusters starting at lcn and returns exactly
// count*ClusterBytes bytes. lcn == -1 is the sparse sentinel and produces
// zero-filled output without touching the image.
func (v *Volume) readClusters(lcn int64, count uint64) ([]byte, error) {
	size := count * uint64(v.geometry.ClusterBytes)
	if lcn == -1 {
		return make([]byte, size), nil
	}
	if lcn < 0 {
		return nil, newError(CorruptVolume, "negative non-sparse LCN %d", lcn)
	}

	absolute := v.geometry.PartitionOffset + lcn*int64(v.geometry.ClusterBytes)
	maxOffset := v.geometry.PartitionOffset + int64(v.geometry.TotalSectors)*int64(v.geometry.BytesPerSector)
	if absolute < 0 || absolute+int64(size) > maxOffset {
		return nil, newError(CorruptVolume, "cluster run at LCN %d length %d exceeds volume bounds", lcn, count)
	}

	buf := make([]byte, size)
	if _, err := v.readAbsolute(buf, absolute); err != nil {
		return nil, wrapError(IoError, err, "failed to read %d cluster(s) at LCN %d", count, lcn)
	}
	return buf, nil
}

// Close releases the underlying image. All File Views and further reads
// become invalid afterward.
func (v *Volume) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state == stateClosed {
		return nil
	}
	v.state = stateClosed
	return v.image.Close()
}
