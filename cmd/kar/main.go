// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"os/user"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/devblok/trigon/utility/kar"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

func init() {
	currentUserName = "unknown"
	if u, err := user.Current(); err == nil && u.Name != "" {
		currentUserName = u.Name
	}
}

var (
	currentUserName string
	author          = flag.String("author", "", "Set the author of the package when compressing, the current user by default")
	version         = flag.Int64("version", 1, "Archive version number to create it with")
	extract         = flag.String("e", "", "Extract the archive given")
	compress        = flag.String("c", "", "Compress the given file/folder")
	list            = flag.String("l", "", "List the contents of the archive given")
	dstFile         = flag.String("f", "out.kar", "Destination file when compressing, destination directory when extracting")
	silent          = flag.Bool("s", false, "Silent")
)

// errOneOperation is returned when more than one of -c, -e and -l is given
var errOneOperation = errors.New("only one operation at a time")

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *silent {
		log.SetLevel(log.WarnLevel)
	}

	ops := 0
	for _, op := range []string{*extract, *compress, *list} {
		if op != "" {
			ops++
		}
	}
	if ops > 1 {
		log.Fatal(errOneOperation)
	}

	var err error
	switch {
	case *compress != "":
		name := *author
		if name == "" {
			name = currentUserName
		}
		err = compressFiles(*compress, *dstFile, kar.Header{
			Author:      name,
			DateCreated: time.Now().Unix(),
			Version:     *version,
		}, log.StandardLogger())
	case *extract != "":
		dir := *dstFile
		if !isFlagSet("f") {
			dir = "."
		}
		err = extractFiles(*extract, dir, log.StandardLogger())
	case *list != "":
		err = listFiles(*list, os.Stdout)
	default:
		flag.PrintDefaults()
	}
	if err != nil {
		log.WithError(err).Fatal("kar failed")
	}
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// compressFiles packs src, a file or a directory walked recursively, into
// a new archive at dst. Entries are named by their slash separated path
// as given on the command line.
func compressFiles(src, dst string, header kar.Header, logger log.FieldLogger) error {
	if _, err := os.Stat(dst); err == nil {
		return errors.Errorf("destination file %s exists, will not overwrite", dst)
	}

	var filesToCompress []string
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		filesToCompress = append(filesToCompress, path)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "walking %s", src)
	}

	builder := kar.NewBuilder(header)
	for _, ftc := range filesToCompress {
		if err := addFile(builder, ftc); err != nil {
			return err
		}
		logger.WithField("file", ftc).Debug("Added")
	}

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	written, err := builder.WriteTo(f)
	if err != nil {
		f.Close()
		os.Remove(dst)
		return errors.Wrapf(err, "writing %s", dst)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.WithFields(log.Fields{
		"archive": dst,
		"files":   builder.Len(),
		"bytes":   written,
	}).Info("Archive created")
	return nil
}

func addFile(builder *kar.Builder, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()
	return builder.Add(filepath.ToSlash(filepath.Clean(name)), f)
}

func openArchive(file string) (*kar.Archive, io.Closer, error) {
	f, err := mmap.Open(file)
	if err != nil {
		return nil, nil, err
	}
	archive, err := kar.Open(f)
	if err != nil {
		f.Close()
		return nil, nil, errors.Wrapf(err, "reading %s", file)
	}
	return archive, f, nil
}

// extractFiles writes every entry of the archive file into dir,
// creating the directories the entry names need.
func extractFiles(file, dir string, logger log.FieldLogger) error {
	archive, closer, err := openArchive(file)
	if err != nil {
		return err
	}
	defer closer.Close()

	for _, name := range archive.Names() {
		clean := path.Clean(name)
		if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			return errors.Errorf("entry %s points outside the destination", name)
		}
		data, err := archive.ReadAll(name)
		if err != nil {
			return err
		}
		target := filepath.Join(dir, filepath.FromSlash(clean))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := ioutil.WriteFile(target, data, 0644); err != nil {
			return err
		}
		logger.WithField("file", target).Debug("Extracted")
	}
	logger.WithFields(log.Fields{
		"archive": file,
		"files":   len(archive.Names()),
	}).Info("Archive extracted")
	return nil
}

// listFiles prints the header and the index of the archive file
func listFiles(file string, w io.Writer) error {
	archive, closer, err := openArchive(file)
	if err != nil {
		return err
	}
	defer closer.Close()

	header := archive.Header()
	fmt.Fprintf(w, "author: %s\nversion: %d\ncreated: %s\n\n",
		header.Author, header.Version, time.Unix(header.DateCreated, 0).UTC().Format(time.RFC3339))

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tCOMPRESSED")
	for _, e := range header.Index {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", e.Name, e.Size, e.CompressedSize)
	}
	return tw.Flush()
}
