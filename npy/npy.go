// Package npy reads and writes dense float arrays in the NumPy .npy format.
//
// Files are written as version 1.0, little-endian float64, C order, with
// the header padded so the data starts on a 64-byte boundary. Reading goes
// through npyio and accepts versions 1.0 and 2.0 holding float32 or float64
// in either byte order.
package npy

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	npyio "github.com/sbinet/npyio/npy"
)

var (
	ErrBadMagic         = errors.New("not an npy file")
	ErrUnsupportedDType = errors.New("unsupported npy dtype")
	ErrBadHeader        = errors.New("malformed npy header")
)

const (
	magic        = "\x93NUMPY"
	alignment    = 64
	maxHeaderLen = 1 << 20
)

// MaxElements bounds the element count of a decoded array.
const MaxElements = 1 << 28

// Array is an n-dimensional float64 array in C order.
type Array struct {
	Shape []int
	Data  []float64
}

// Write encodes a to w.
func Write(w io.Writer, a Array) error {
	size, err := Size(a.Shape)
	if err != nil {
		return err
	}
	if size != len(a.Data) {
		return fmt.Errorf("%w: shape %v holds %d values, got %d", ErrBadHeader, a.Shape, size, len(a.Data))
	}

	header := headerDict("<f8", a.Shape)
	// magic(6) + version(2) + length(2) + header + '\n'
	total := len(magic) + 2 + 2 + len(header) + 1
	if pad := (alignment - total%alignment) % alignment; pad > 0 {
		header += strings.Repeat(" ", pad)
	}
	header += "\n"
	if len(header) > math.MaxUint16 {
		return fmt.Errorf("%w: header of %d bytes", ErrBadHeader, len(header))
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(magic)
	bw.Write([]byte{1, 0})
	if err := binary.Write(bw, binary.LittleEndian, uint16(len(header))); err != nil {
		return err
	}
	bw.WriteString(header)

	buf := make([]byte, 8)
	for _, v := range a.Data {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func headerDict(descr string, shape []int) string {
	dims := make([]string, len(shape))
	for i, s := range shape {
		dims[i] = strconv.Itoa(s)
	}
	tuple := "(" + strings.Join(dims, ", ")
	if len(shape) == 1 {
		tuple += ","
	}
	tuple += ")"
	return fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': %s, }", descr, tuple)
}

// preamble is the magic, the version and the header length field.
func preamble(r io.Reader) ([]byte, error) {
	pre := make([]byte, len(magic)+2, len(magic)+6)
	if _, err := io.ReadFull(r, pre); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMagic, err)
	}
	if !bytes.Equal(pre[:len(magic)], []byte(magic)) {
		return nil, ErrBadMagic
	}

	var headerLen int
	switch major := pre[len(magic)]; major {
	case 1:
		pre = pre[:len(pre)+2]
		if _, err := io.ReadFull(r, pre[len(pre)-2:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
		headerLen = int(binary.LittleEndian.Uint16(pre[len(pre)-2:]))
	case 2:
		pre = pre[:len(pre)+4]
		if _, err := io.ReadFull(r, pre[len(pre)-4:]); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
		}
		headerLen = int(binary.LittleEndian.Uint32(pre[len(pre)-4:]))
	default:
		return nil, fmt.Errorf("%w: version %d", ErrBadHeader, major)
	}
	if headerLen > maxHeaderLen {
		return nil, fmt.Errorf("%w: header of %d bytes", ErrBadHeader, headerLen)
	}
	return pre, nil
}

// newReader parses the header of r. The data section is left unread on r.
func newReader(r io.Reader) (rd *npyio.Reader, err error) {
	pre, err := preamble(r)
	if err != nil {
		return nil, err
	}

	// npyio slices the header dict by key offsets and panics on some
	// malformed layouts.
	defer func() {
		if p := recover(); p != nil {
			rd, err = nil, fmt.Errorf("%w: %v", ErrBadHeader, p)
		}
	}()
	rd, err = npyio.NewReader(io.MultiReader(bytes.NewReader(pre), r))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, err)
	}
	return rd, nil
}

// Size is the element count of shape. It fails with ErrBadHeader on
// negative dimensions and on counts above MaxElements.
func Size(shape []int) (int, error) {
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in shape %v", ErrBadHeader, shape)
		}
		if d == 0 {
			return 0, nil
		}
	}
	n := 1
	for _, d := range shape {
		if n > MaxElements/d {
			return 0, fmt.Errorf("%w: shape %v exceeds %d elements", ErrBadHeader, shape, MaxElements)
		}
		n *= d
	}
	return n, nil
}

// decode reads the data section. avail is the number of bytes left in
// the source, or -1 when unknown.
func decode(rd *npyio.Reader, avail int64) (Array, error) {
	descr := rd.Header.Descr
	if descr.Fortran {
		return Array{}, fmt.Errorf("%w: only C order arrays are supported", ErrBadHeader)
	}

	var width int64
	switch npyio.TypeFrom(descr.Type) {
	case float64Type:
		width = 8
	case float32Type:
		width = 4
	default:
		return Array{}, fmt.Errorf("%w: %s", ErrUnsupportedDType, descr.Type)
	}

	size, err := Size(descr.Shape)
	if err != nil {
		return Array{}, err
	}
	if avail >= 0 && int64(size)*width > avail {
		return Array{}, fmt.Errorf("%w: shape %v needs %d bytes, %d left", ErrBadHeader, descr.Shape, int64(size)*width, avail)
	}

	a := Array{Shape: slices.Clone(descr.Shape), Data: make([]float64, size)}
	if a.Shape == nil {
		a.Shape = []int{}
	}
	if size == 0 {
		return a, nil
	}

	if width == 8 {
		if err := rd.Read(&a.Data); err != nil {
			return Array{}, fmt.Errorf("read values: %w", err)
		}
		return a, nil
	}

	f32 := make([]float32, size)
	if err := rd.Read(&f32); err != nil {
		return Array{}, fmt.Errorf("read values: %w", err)
	}
	for i, v := range f32 {
		a.Data[i] = float64(v)
	}
	return a, nil
}

var (
	float64Type = reflect.TypeFor[float64]()
	float32Type = reflect.TypeFor[float32]()
)

// Read decodes an array from r. Readers that report their remaining
// length, such as bytes.Reader, have the declared shape checked against it.
func Read(r io.Reader) (Array, error) {
	rd, err := newReader(r)
	if err != nil {
		return Array{}, err
	}
	avail := int64(-1)
	if l, ok := r.(interface{ Len() int }); ok {
		avail = int64(l.Len())
	}
	return decode(rd, avail)
}

// Save writes a to path, replacing any existing file.
func Save(path string, a Array) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, a); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads the array stored at path.
func Load(path string) (Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return Array{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Array{}, err
	}
	rd, err := newReader(f)
	if err != nil {
		return Array{}, fmt.Errorf("%s: %w", path, err)
	}
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return Array{}, err
	}
	a, err := decode(rd, info.Size()-pos)
	if err != nil {
		return Array{}, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// WithExt appends ".npy" unless path already ends in it.
func WithExt(path string) string {
	if strings.HasSuffix(path, ".npy") {
		return path
	}
	return path + ".npy"
}
