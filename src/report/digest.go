package report

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// A DigestReader wraps a reader, hashing everything read through it.
type DigestReader struct {
	r      io.Reader
	hasher *blake3.Hasher
	size   int64
}

// NewDigestReader returns a new DigestReader reading from the given reader.
func NewDigestReader(r io.Reader) *DigestReader {
	return &DigestReader{r: r, hasher: blake3.New()}
}

// Read implements the io.Reader interface.
func (d *DigestReader) Read(b []byte) (int, error) {
	n, err := d.r.Read(b)
	d.hasher.Write(b[:n])
	d.size += int64(n)
	return n, err
}

// Size returns the number of bytes read so far.
func (d *DigestReader) Size() int64 {
	return d.size
}

// Digest returns the hex-encoded blake3 digest of everything read so far.
func (d *DigestReader) Digest() string {
	return hex.EncodeToString(d.hasher.Sum(nil))
}
