package parser

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/thought-machine/analysis/src/fs"
)

// Open opens the given input file, transparently decompressing .gz and .xz files.
// The special name "-" is stdin.
func Open(filename string) (io.ReadCloser, error) {
	if filename == fs.Stdin {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(filename, ".gz"):
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &decompressor{Reader: r, closers: []io.Closer{r, f}}, nil
	case strings.HasSuffix(filename, ".xz"):
		r, err := xz.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, err
		}
		return &decompressor{Reader: r, closers: []io.Closer{f}}, nil
	}
	return f, nil
}

// A decompressor wraps a decompressing reader and closes everything underneath it.
type decompressor struct {
	io.Reader
	closers []io.Closer
}

func (d *decompressor) Close() error {
	var firstErr error
	for _, c := range d.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
