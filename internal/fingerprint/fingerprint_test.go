package fingerprint

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.bin")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestCRC32HexEmptyFile(t *testing.T) {
	path := writeTemp(t, nil)
	got, err := CRC32Hex(path)
	require.NoError(t, err)
	assert.Equal(t, EmptyCRC32Hex, got)
}

func TestContentFingerprintEmptyFile(t *testing.T) {
	path := writeTemp(t, nil)
	got, err := ContentFingerprint(path)
	require.NoError(t, err)

	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], 0)
	h.Write(buf[:])
	want := hex.EncodeToString(h.Sum(nil))

	assert.Equal(t, want, got)
}

func TestFingerprintIdenticalFilesMatch(t *testing.T) {
	content := []byte("identical byte-for-byte content")
	p1 := writeTemp(t, content)
	p2 := filepath.Join(t.TempDir(), "copy.bin")
	require.NoError(t, os.WriteFile(p2, content, 0o644))

	crc1, err := CRC32Hex(p1)
	require.NoError(t, err)
	crc2, err := CRC32Hex(p2)
	require.NoError(t, err)
	assert.Equal(t, crc1, crc2)

	fp1, err := ContentFingerprint(p1)
	require.NoError(t, err)
	fp2, err := ContentFingerprint(p2)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func makeLarge(t *testing.T, size int, fill byte) string {
	t.Helper()
	data := make([]byte, size)
	for i := range data {
		data[i] = fill
	}
	return writeTemp(t, data)
}

func TestFingerprintChangesWithAnchoredRegionEdits(t *testing.T) {
	const size = 1024 * 1024 // 1 MiB, well above the 128 KiB threshold
	base := makeLarge(t, size, 0xAB)
	baseline, err := ContentFingerprint(base)
	require.NoError(t, err)

	mutate := func(offset int) string {
		data, err := os.ReadFile(base)
		require.NoError(t, err)
		data[offset] ^= 0xFF
		p := filepath.Join(t.TempDir(), "mutated.bin")
		require.NoError(t, os.WriteFile(p, data, 0o644))
		return p
	}

	first := mutate(10) // inside first 16 KiB anchor
	fp, err := ContentFingerprint(first)
	require.NoError(t, err)
	assert.NotEqual(t, baseline, fp, "editing the first anchor must change the fingerprint")

	mid := mutate(size / 2)
	fp, err = ContentFingerprint(mid)
	require.NoError(t, err)
	assert.NotEqual(t, baseline, fp, "editing the middle anchor must change the fingerprint")

	last := mutate(size - 10)
	fp, err = ContentFingerprint(last)
	require.NoError(t, err)
	assert.NotEqual(t, baseline, fp, "editing the last anchor must change the fingerprint")
}

func TestFingerprintChangesWithLength(t *testing.T) {
	a := makeLarge(t, 1024*1024, 0x11)
	b := makeLarge(t, 1024*1024+1, 0x11)

	// pad the shorter with a trailing byte so the anchored first/mid/last
	// regions are unaffected except via the encoded length.
	data, err := os.ReadFile(a)
	require.NoError(t, err)
	data = append(data, 0x11)
	require.NoError(t, os.WriteFile(b, data, 0o644))

	fa, err := ContentFingerprint(a)
	require.NoError(t, err)
	fb, err := ContentFingerprint(b)
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}

func TestSidecarFingerprintFullFile(t *testing.T) {
	content := []byte(`{"title":"x"}`)
	path := writeTemp(t, content)
	got, err := SidecarFingerprint(path)
	require.NoError(t, err)

	h := sha256.New()
	h.Write(content)
	want := hex.EncodeToString(h.Sum(nil))
	assert.Equal(t, want, got)
}

func TestCRC32HexMissingFile(t *testing.T) {
	_, err := CRC32Hex(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}
