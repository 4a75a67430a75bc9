// Package segment presents a possibly split raw disk image as one
// contiguous, byte-addressable stream.
package segment

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// Reader is a segment-aware reader over a raw image. The image may be a
// single file, or a sequence of numbered segments (<base>.001, <base>.002,
// ...) produced by imaging tools that split large acquisitions.
type Reader struct {
	files    []*os.File
	sizes    []int64
	cumSizes []int64 // cumSizes[i] = total bytes in files[0..i]
	total    int64
}

// Open opens path as a segmented image. If path already names an existing
// file, it is treated as the sole segment unless a sibling ".001" file also
// exists, in which case the numbered series wins. Otherwise path is treated
// as a base name and ".001", ".002", ... are probed in order until one is
// missing.
func Open(path string) (*Reader, error) {
	base := stripSegmentSuffix(path)

	var paths []string
	for i := 1; ; i++ {
		p := fmt.Sprintf("%s.%03d", base, i)
		if _, err := os.Stat(p); err != nil {
			break
		}
		paths = append(paths, p)
	}

	if len(paths) == 0 {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("segment: cannot open image %q: %w", path, err)
		}
		paths = []string{path}
	}

	r := &Reader{}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("segment: failed to open %q: %w", p, err)
		}

		size, err := segmentSize(f)
		if err != nil {
			f.Close()
			r.Close()
			return nil, fmt.Errorf("segment: failed to stat %q: %w", p, err)
		}

		r.files = append(r.files, f)
		r.sizes = append(r.sizes, size)
		r.total += size
		r.cumSizes = append(r.cumSizes, r.total)
	}

	return r, nil
}

// segmentSize returns a file's size, falling back to seeking to the end for
// block devices that report a zero-length stat.
func segmentSize(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Size() > 0 {
		return fi.Size(), nil
	}

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	return size, nil
}

// stripSegmentSuffix removes a trailing ".NNN" numeric extension, if
// present, so that mounting ".../image.002" and ".../image.001" both
// resolve to the same segment series.
func stripSegmentSuffix(path string) string {
	n := len(path)
	if n < 4 || path[n-4] != '.' {
		return path
	}
	for _, c := range path[n-3:] {
		if c < '0' || c > '9' {
			return path
		}
	}
	return path[:n-4]
}

// Size returns the total addressable length of the image, across every
// segment.
func (r *Reader) Size() int64 {
	return r.total
}

// ReadAt reads len(buf) bytes starting at the given absolute offset,
// crossing segment boundaries transparently. It returns fewer bytes than
// requested, with io.EOF, only when the image ends; any other failure to
// satisfy the full read is reported as a non-EOF error.
func (r *Reader) ReadAt(buf []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, fmt.Errorf("segment: negative offset %d", offset)
	}
	if offset >= r.total {
		return 0, io.EOF
	}

	idx := r.segmentFor(offset)
	base := int64(0)
	if idx > 0 {
		base = r.cumSizes[idx-1]
	}

	read := 0
	for read < len(buf) && idx < len(r.files) {
		localOffset := offset + int64(read) - base
		n, err := r.files[idx].ReadAt(buf[read:], localOffset)
		read += n
		if err != nil && err != io.EOF {
			return read, fmt.Errorf("segment: read failed at offset %d: %w", offset+int64(read), err)
		}
		if read >= len(buf) {
			break
		}
		// Short read within this segment: advance to the next one.
		idx++
		if idx < len(r.files) {
			base = r.cumSizes[idx-1]
		}
	}

	if read < len(buf) {
		return read, io.EOF
	}
	return read, nil
}

// segmentFor returns the index of the segment containing the given
// absolute offset, using a binary search over the cumulative-offset table
// rather than dividing by a fixed segment size — the final segment is
// typically shorter than the rest.
func (r *Reader) segmentFor(offset int64) int {
	return sort.Search(len(r.cumSizes), func(i int) bool {
		return r.cumSizes[i] > offset
	})
}

// Close closes every open segment. If more than one segment fails to
// close, the first error encountered is returned, but every segment is
// still given a chance to close.
func (r *Reader) Close() error {
	var firstErr error
	for _, f := range r.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
