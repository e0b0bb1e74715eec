// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package assets finds the binary resources the renderer needs,
// compiled shaders mostly, in a directory, in a kar archive or
// in the resources bundled into the binary with packr.
package assets

//go:generate glslangValidator -V ../resources/shaders/hard_coded_triangle.vert -o ../resources/shaders/hard_coded_triangle_vert.spv
//go:generate glslangValidator -V ../resources/shaders/hard_coded_triangle.frag -o ../resources/shaders/hard_coded_triangle_frag.spv

import (
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/devblok/trigon/utility/kar"
	"github.com/gobuffalo/packr"
	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"
)

// ErrNotFound is returned when no loader has the requested resource
var ErrNotFound = errors.New("resource not found")

// resourcePrefix is stripped from names before looking into a box,
// which is rooted at the resources directory itself
const resourcePrefix = "resources/"

// Loader loads resources by their slash separated name,
// for example resources/shaders/hard_coded_triangle_vert.spv
type Loader interface {
	Load(name string) ([]byte, error)
}

// FileLoader loads resources from the file system, relative to Root
type FileLoader struct {
	Root string
}

// Load implements interface
func (l FileLoader) Load(name string) ([]byte, error) {
	data, err := ioutil.ReadFile(filepath.Join(l.Root, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", name)
	}
	return data, nil
}

// ArchiveLoader loads resources out of a kar archive
type ArchiveLoader struct {
	archive *kar.Archive
	file    io.Closer
}

// NewArchiveLoader wraps an already opened archive
func NewArchiveLoader(archive *kar.Archive) *ArchiveLoader {
	return &ArchiveLoader{archive: archive}
}

// OpenArchive maps the kar archive at file into memory,
// Close has to be called when done
func OpenArchive(file string) (*ArchiveLoader, error) {
	f, err := mmap.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", file)
	}
	archive, err := kar.Open(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	return &ArchiveLoader{archive: archive, file: f}, nil
}

// Load implements interface
func (l *ArchiveLoader) Load(name string) ([]byte, error) {
	data, err := l.archive.ReadAll(name)
	if errors.Cause(err) == kar.ErrNotFound {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	return data, err
}

// Close closes the underlying file, if there is one
func (l *ArchiveLoader) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

type finder interface {
	Find(name string) ([]byte, error)
	Has(name string) bool
}

// BoxLoader loads resources embedded into the binary
type BoxLoader struct {
	box finder
}

// NewBoxLoader returns a loader for the resources directory. Packr will
// look at the directory itself when the binary was not built with packr.
func NewBoxLoader() *BoxLoader {
	return &BoxLoader{box: packr.NewBox("../resources")}
}

// Load implements interface
func (l *BoxLoader) Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(path.Clean(name), resourcePrefix)
	if !l.box.Has(name) {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	data, err := l.box.Find(name)
	if err != nil {
		return nil, errors.Wrapf(err, "box %s", name)
	}
	return data, nil
}

// Chain tries each loader in turn until one has the resource
type Chain []Loader

// Load implements interface
func (c Chain) Load(name string) ([]byte, error) {
	for _, l := range c {
		data, err := l.Load(name)
		if errors.Cause(err) == ErrNotFound {
			continue
		}
		return data, err
	}
	return nil, errors.Wrap(ErrNotFound, name)
}

// Open returns the Loader for a configured source. An empty source looks
// in the working directory first and in the bundled resources second, a
// directory is read from directly and a .kar file is opened as an archive.
// The returned closer must be called when the loader is no longer needed.
func Open(source string) (Loader, func() error, error) {
	noop := func() error { return nil }
	if source == "" {
		return Chain{FileLoader{Root: "."}, NewBoxLoader()}, noop, nil
	}

	info, err := os.Stat(source)
	if err != nil {
		return nil, noop, errors.Wrapf(err, "shader source %s", source)
	}
	if info.IsDir() {
		return FileLoader{Root: source}, noop, nil
	}
	if filepath.Ext(source) == ".kar" {
		l, err := OpenArchive(source)
		if err != nil {
			return nil, noop, err
		}
		return l, l.Close, nil
	}
	return nil, noop, errors.Errorf("shader source %s: not a directory or a .kar archive", source)
}
