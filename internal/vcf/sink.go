package vcf

import (
	"crypto/rand"
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"runtime"
)

// ErrNoWriter is returned by WriterSink.Acquire when no writer was supplied.
var ErrNoWriter = stderrors.New("no output writer")

// Sink is where an export is written. It is acquired once per export.
type Sink interface {
	Acquire() (Destination, error)
}

// Destination is an acquired sink. Exactly one of Commit or Abort is called,
// after which the destination must not be used.
type Destination interface {
	io.Writer

	// Commit makes everything written durable and releases the destination.
	Commit() error

	// Abort discards anything written and releases the destination.
	Abort() error
}

// FileSink writes to a temp file next to Path and renames it into place on
// commit, so an existing file at Path is preserved on any failure.
//
// Path must not be a symlink or anything other than a regular file; this is
// checked on Acquire and again just before the rename. The temp file is
// created with O_EXCL, which never follows a symlink at the temp path.
type FileSink struct {
	Path string

	// Perm defaults to 0600.
	Perm os.FileMode
}

// Acquire creates the temp file.
func (s *FileSink) Acquire() (Destination, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("export path is empty")
	}

	if err := checkTarget(s.Path); err != nil {
		return nil, err
	}

	perm := s.Perm
	if perm == 0 {
		perm = 0600
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, fmt.Errorf("failed to generate temp file name: %w", err)
	}
	tempPath := s.Path + "." + hex.EncodeToString(randBytes) + ".tmp"

	file, err := os.OpenFile(tempPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return nil, fmt.Errorf("failed to create export file: %w", err)
	}

	return &fileDestination{file: file, tempPath: tempPath, finalPath: s.Path}, nil
}

type fileDestination struct {
	file      *os.File
	tempPath  string
	finalPath string
}

func (d *fileDestination) Write(p []byte) (int, error) {
	return d.file.Write(p)
}

func (d *fileDestination) Commit() (err error) {
	defer func() {
		if err != nil {
			os.Remove(d.tempPath)
		}
	}()

	if err := d.file.Sync(); err != nil {
		d.file.Close()
		return err
	}

	// Close before rename (required on Windows; fine elsewhere).
	if err := d.file.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}

	if err := checkTarget(d.finalPath); err != nil {
		return err
	}

	// On Windows, os.Rename fails if the destination exists. The existing file
	// is kept rather than doing a non-atomic delete+rename.
	if err := os.Rename(d.tempPath, d.finalPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(d.finalPath); statErr == nil {
				return fmt.Errorf("export destination already exists; overwriting is not supported on Windows")
			}
		}
		return fmt.Errorf("failed to finalize export: %w", err)
	}
	return nil
}

// checkTarget accepts a missing file or a regular one.
func checkTarget(path string) error {
	info, err := os.Lstat(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return fmt.Errorf("failed to stat export path: %w", err)
	case info.Mode()&os.ModeSymlink != 0:
		return fmt.Errorf("export path is a symlink")
	case !info.Mode().IsRegular():
		return fmt.Errorf("export path is not a regular file")
	}
	return nil
}

func (d *fileDestination) Abort() error {
	closeErr := d.file.Close()
	if err := os.Remove(d.tempPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return closeErr
}

// WriterSink writes to an already-open writer such as stdout or an HTTP
// response. Commit flushes the writer when it supports it; the writer itself
// is never closed.
type WriterSink struct {
	W io.Writer
}

// Acquire returns a destination wrapping the writer.
func (s WriterSink) Acquire() (Destination, error) {
	if s.W == nil {
		return nil, ErrNoWriter
	}
	return &writerDestination{w: s.W}, nil
}

type writerDestination struct {
	w io.Writer
}

func (d *writerDestination) Write(p []byte) (int, error) {
	return d.w.Write(p)
}

func (d *writerDestination) Commit() error {
	switch f := d.w.(type) {
	case interface{ Flush() error }:
		return f.Flush()
	case interface{ Flush() }:
		f.Flush()
	}
	return nil
}

func (d *writerDestination) Abort() error {
	return nil
}
