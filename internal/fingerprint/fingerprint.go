// Package fingerprint computes the streaming content fingerprints the
// scanner uses to detect whether a file has changed since the last scan.
package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash/crc32"
	"io"
	"os"
)

const (
	// crc32ChunkSize matches the Python original's 64 KiB streaming chunk.
	crc32ChunkSize = 64 * 1024

	// anchorSampleSize is the size of each of the three anchored regions
	// sampled for files larger than fullHashThreshold.
	anchorSampleSize = 16 * 1024

	// fullHashThreshold is the size below which the full file is hashed
	// instead of an anchored sample.
	fullHashThreshold = 128 * 1024

	// middleAlignment is the byte alignment the middle anchor's start is
	// rounded down to.
	middleAlignment = 4 * 1024
)

// CRC32Hex streams the file at path through CRC32 (IEEE polynomial) in
// 64 KiB chunks and returns the result as an 8-character lowercase hex
// string. The CRC of an empty file is "00000000".
func CRC32Hex(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	crc := crc32.NewIEEE()
	buf := make([]byte, crc32ChunkSize)
	if _, err := io.CopyBuffer(crc, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(crc.Sum(nil)), nil
}

// ContentFingerprint computes the anchored-sample SHA-256 content
// fingerprint described in spec §4.3: files at or below fullHashThreshold
// are hashed in full, followed by the file size as a big-endian uint64;
// larger files are hashed as the concatenation of the
// first 16 KiB, a 16 KiB window centered on size/2 (aligned down to 4 KiB),
// the last 16 KiB, and the file size as a fixed-width big-endian uint64.
// Identical files always produce identical fingerprints; a change to any
// anchored region or to the file length changes the result.
func ContentFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	size := info.Size()

	h := sha256.New()
	if size <= fullHashThreshold {
		if _, err := io.Copy(h, f); err != nil {
			return "", err
		}
		writeSize(h, size)
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	if err := hashRegion(h, f, 0, anchorSampleSize); err != nil {
		return "", err
	}

	middleStart := (size/2 - anchorSampleSize/2) / middleAlignment * middleAlignment
	if middleStart < 0 {
		middleStart = 0
	}
	if middleStart+anchorSampleSize > size {
		middleStart = size - anchorSampleSize
	}
	if err := hashRegion(h, f, middleStart, anchorSampleSize); err != nil {
		return "", err
	}

	if err := hashRegion(h, f, size-anchorSampleSize, anchorSampleSize); err != nil {
		return "", err
	}

	writeSize(h, size)

	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashRegion(h io.Writer, f *os.File, offset, length int64) error {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	_, err := io.CopyN(h, f, length)
	return err
}

func writeSize(h io.Writer, size int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(size))
	h.Write(buf[:])
}

// SidecarFingerprint computes the full-file SHA-256 hex digest of a JSON
// sidecar. Sidecars are small, so no anchored sampling is applied.
func SidecarFingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// EmptyCRC32Hex is the well-known CRC32 of a zero-length input.
const EmptyCRC32Hex = "00000000"
