// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package kar

import (
	"bytes"
	"io"
	"sync"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

// NewBuilder creates a new Builder. Do not fill the Index in
// the header, it will be overwritten anyway.
func NewBuilder(header Header) *Builder {
	header.Index = nil
	return &Builder{header: header}
}

type entry struct {
	name string
	size int64
	data []byte
}

// Builder is the high level builder for the archive format.
// Archives are versioned and cannot be appended to, this Builder
// is the way to create one. Files are compressed as they are added
// and bundled together by WriteTo.
type Builder struct {
	header Header

	mutex   sync.Mutex
	entries []entry
}

// Add compresses everything read from r and stores it under name.
// Will block until lz4 finishes compression. Is safe
// to use concurrently in different goroutines.
func (b *Builder) Add(name string, r io.Reader) error {
	var compressed bytes.Buffer
	writer := lz4.NewWriter(&compressed)
	written, err := io.Copy(writer, r)
	if err != nil {
		return errors.Wrapf(err, "compressing %s", name)
	}
	if err := writer.Close(); err != nil {
		return errors.Wrapf(err, "compressing %s", name)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.entries {
		if e.name == name {
			return errors.Wrap(ErrDuplicate, name)
		}
	}
	b.entries = append(b.entries, entry{
		name: name,
		size: written,
		data: compressed.Bytes(),
	})
	return nil
}

// Len returns the number of files added so far
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.entries)
}

// WriteTo bundles and writes all of the files added to the Builder
// into a kar archive that is ready to use.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := b.header
	header.Index = make([]IndexEntry, 0, len(b.entries))
	var offset int64
	for _, e := range b.entries {
		header.Index = append(header.Index, IndexEntry{
			Name:           e.name,
			Offset:         offset,
			Size:           e.size,
			CompressedSize: int64(len(e.data)),
		})
		offset += int64(len(e.data))
	}

	rawHeader, err := gobEncode(header)
	if err != nil {
		return 0, errors.Wrap(err, "encoding header")
	}

	chunks := [][]byte{magic[:], int64ToBinary(int64(len(rawHeader))), rawHeader}
	for _, e := range b.entries {
		chunks = append(chunks, e.data)
	}

	var total int64
	for _, c := range chunks {
		n, err := w.Write(c)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
