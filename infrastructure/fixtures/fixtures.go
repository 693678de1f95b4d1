// Package fixtures creates upload files of an exact type and byte size.
package fixtures

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Kind is the file type of a fixture
type Kind string

const (
	PNG  Kind = "png"
	JPEG Kind = "jpg"
	PDF  Kind = "pdf"
)

// Spec describes one fixture. Size 0 keeps the natural encoded size.
type Spec struct {
	Name string
	Kind Kind
	Size int64
}

// ErrTooSmall is returned when the requested size is below the smallest
// valid encoding of the kind
var ErrTooSmall = errors.New("requested size is below the minimum for the file type")

// Set owns a temp directory of fixtures and removes it on Cleanup
type Set struct {
	dir    string
	logger logrus.FieldLogger

	mu    sync.Mutex
	files []string
}

// NewSet - creates an empty fixture directory
func NewSet(logger logrus.FieldLogger) (*Set, error) {
	dir, err := os.MkdirTemp("", "portal-fixtures-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create fixture dir: %w", err)
	}
	return &Set{dir: dir, logger: logger}, nil
}

// Dir returns the directory fixtures are written to
func (s *Set) Dir() string {
	return s.dir
}

// Create writes one fixture and returns its path
func (s *Set) Create(spec Spec) (string, error) {
	data, err := Encode(spec.Kind, spec.Size)
	if err != nil {
		return "", fmt.Errorf("fixture %s: %w", spec.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("fixture-%d", len(s.files)+1)
	}
	path := filepath.Join(s.dir, name+"."+string(spec.Kind))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write fixture %s: %w", path, err)
	}
	s.files = append(s.files, path)

	s.logger.WithFields(logrus.Fields{"path": path, "bytes": len(data)}).Debug("Fixture created")
	return path, nil
}

// CreateAll writes every spec, stopping at the first failure
func (s *Set) CreateAll(specs ...Spec) ([]string, error) {
	paths := make([]string, 0, len(specs))
	for _, spec := range specs {
		path, err := s.Create(spec)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Cleanup removes every fixture and the directory
func (s *Set) Cleanup() error {
	s.mu.Lock()
	files := s.files
	s.files = nil
	s.mu.Unlock()

	var err error
	for _, f := range files {
		if rmErr := os.Remove(f); rmErr != nil && !os.IsNotExist(rmErr) {
			err = multierr.Append(err, rmErr)
		}
	}
	return multierr.Append(err, os.RemoveAll(s.dir))
}

// Encode renders a valid file of the kind, padded to exactly size bytes
func Encode(kind Kind, size int64) ([]byte, error) {
	switch kind {
	case PNG:
		return encodePNG(size)
	case JPEG:
		return encodeJPEG(size)
	case PDF:
		return encodePDF(size)
	}
	return nil, fmt.Errorf("unknown fixture kind %q", kind)
}

func sampleImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
		}
	}
	return img
}

// PNG padding goes into a private ancillary chunk before IEND
const pngChunkOverhead = 12

func encodePNG(size int64) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, sampleImage()); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if size == 0 || size == int64(len(data)) {
		return data, nil
	}
	pad := size - int64(len(data)) - pngChunkOverhead
	if pad < 0 {
		return nil, fmt.Errorf("%w: png needs at least %d bytes", ErrTooSmall, len(data)+pngChunkOverhead)
	}

	iend := len(data) - pngChunkOverhead
	chunk := make([]byte, pngChunkOverhead+pad)
	binary.BigEndian.PutUint32(chunk[0:4], uint32(pad))
	copy(chunk[4:8], "paDd")
	crc := crc32.NewIEEE()
	crc.Write(chunk[4 : 8+pad])
	binary.BigEndian.PutUint32(chunk[8+pad:], crc.Sum32())

	out := make([]byte, 0, size)
	out = append(out, data[:iend]...)
	out = append(out, chunk...)
	out = append(out, data[iend:]...)
	return out, nil
}

// JPEG padding goes into COM segments right after SOI
const (
	jpegSegmentOverhead = 4
	jpegMaxSegment      = 65533
)

func encodeJPEG(size int64) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, sampleImage(), &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	data := buf.Bytes()
	if size == 0 || size == int64(len(data)) {
		return data, nil
	}
	remaining := size - int64(len(data))
	if remaining < jpegSegmentOverhead {
		return nil, fmt.Errorf("%w: jpeg needs at least %d bytes", ErrTooSmall, len(data)+jpegSegmentOverhead)
	}

	out := make([]byte, 0, size)
	out = append(out, data[:2]...)
	for remaining > 0 {
		payload := remaining - jpegSegmentOverhead
		if payload > jpegMaxSegment {
			payload = jpegMaxSegment
			// never leave a tail too short for its own segment header
			if rest := remaining - payload - jpegSegmentOverhead; rest > 0 && rest < jpegSegmentOverhead {
				payload -= jpegSegmentOverhead
			}
		}
		out = append(out, 0xFF, 0xFE)
		out = binary.BigEndian.AppendUint16(out, uint16(payload+2))
		out = append(out, bytes.Repeat([]byte{' '}, int(payload))...)
		remaining -= payload + jpegSegmentOverhead
	}
	out = append(out, data[2:]...)
	return out, nil
}

func encodePDF(size int64) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	pdf.SetTitle("Upload fixture", false)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(40, 10, "Service request attachment")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}
	data := buf.Bytes()
	if size == 0 || size == int64(len(data)) {
		return data, nil
	}
	// a trailing comment line after %%EOF: "%" + filler + "\n"
	pad := size - int64(len(data))
	if pad < 2 {
		return nil, fmt.Errorf("%w: pdf needs at least %d bytes", ErrTooSmall, len(data)+2)
	}
	out := make([]byte, 0, size)
	out = append(out, data...)
	out = append(out, '%')
	out = append(out, bytes.Repeat([]byte{'0'}, int(pad-2))...)
	out = append(out, '\n')
	return out, nil
}
