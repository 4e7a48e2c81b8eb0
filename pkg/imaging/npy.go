package imaging

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// npyMagic is the NumPy array serialization magic string (format
// version 1.0 and 2.0 share it).
var npyMagic = []byte("\x93NUMPY")

// ReadNPY reads a NumPy .npy file as an imaging stack. The array must
// be 3-dimensional (frame, row, col), C-ordered, with one of the dtypes
// commonly produced by acquisition tooling: uint8, uint16, float32 or
// float64 (little-endian). Anything else is rejected.
func ReadNPY(path string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading npy file: %w", err)
	}

	if len(data) < 10 || !bytes.Equal(data[:6], npyMagic) {
		return nil, fmt.Errorf("not an npy file: %s", path)
	}
	major := data[6]

	var headerLen, headerStart int
	switch major {
	case 1:
		headerLen = int(binary.LittleEndian.Uint16(data[8:10]))
		headerStart = 10
	case 2:
		if len(data) < 12 {
			return nil, fmt.Errorf("truncated npy header: %s", path)
		}
		headerLen = int(binary.LittleEndian.Uint32(data[8:12]))
		headerStart = 12
	default:
		return nil, fmt.Errorf("unsupported npy version %d: %s", major, path)
	}
	if headerStart+headerLen > len(data) {
		return nil, fmt.Errorf("truncated npy header: %s", path)
	}

	header := string(data[headerStart : headerStart+headerLen])
	descr, fortran, shape, err := parseNPYHeader(header)
	if err != nil {
		return nil, fmt.Errorf("parsing npy header of %s: %w", path, err)
	}
	if fortran {
		return nil, fmt.Errorf("fortran-ordered npy arrays are not supported: %s", path)
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("%w: npy array has %d dimensions, want 3", ErrInvalidStackShape, len(shape))
	}

	stack, err := NewStack(shape[0], shape[1], shape[2])
	if err != nil {
		return nil, err
	}

	payload := data[headerStart+headerLen:]
	n := len(stack.Data)

	switch descr {
	case "|u1", "<u1":
		if len(payload) < n {
			return nil, fmt.Errorf("npy payload too short: %s", path)
		}
		for i := 0; i < n; i++ {
			stack.Data[i] = float64(payload[i])
		}
	case "<u2":
		if len(payload) < 2*n {
			return nil, fmt.Errorf("npy payload too short: %s", path)
		}
		for i := 0; i < n; i++ {
			stack.Data[i] = float64(binary.LittleEndian.Uint16(payload[2*i:]))
		}
	case "<f4":
		if len(payload) < 4*n {
			return nil, fmt.Errorf("npy payload too short: %s", path)
		}
		for i := 0; i < n; i++ {
			stack.Data[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[4*i:])))
		}
	case "<f8":
		if len(payload) < 8*n {
			return nil, fmt.Errorf("npy payload too short: %s", path)
		}
		for i := 0; i < n; i++ {
			stack.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[8*i:]))
		}
	default:
		return nil, fmt.Errorf("unsupported npy dtype %q: %s", descr, path)
	}

	return stack, nil
}

// WriteNPY writes a stack as a version 1.0 .npy file with dtype <f8.
func WriteNPY(path string, s *Stack) error {
	if s == nil || s.Frames <= 0 || s.Height <= 0 || s.Width <= 0 {
		return fmt.Errorf("%w: cannot write empty stack", ErrInvalidStackShape)
	}

	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': False, 'shape': (%d, %d, %d), }",
		s.Frames, s.Height, s.Width)
	// Pad so that magic + version + length field + header is a
	// multiple of 64 bytes, ending with a newline, per the npy spec.
	total := 10 + len(header) + 1
	if pad := total % 64; pad != 0 {
		header += strings.Repeat(" ", 64-pad)
	}
	header += "\n"

	buf := &bytes.Buffer{}
	buf.Write(npyMagic)
	buf.WriteByte(1)
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, uint16(len(header)))
	buf.WriteString(header)
	for _, v := range s.Data {
		binary.Write(buf, binary.LittleEndian, math.Float64bits(v))
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing npy file: %w", err)
	}
	return nil
}

// parseNPYHeader extracts the dtype descriptor, memory order flag and
// shape tuple from an npy header dictionary. The header is a literal
// Python dict with a fixed, documented layout, so plain string
// scanning is sufficient.
func parseNPYHeader(header string) (descr string, fortran bool, shape []int, err error) {
	descr, err = npyHeaderString(header, "descr")
	if err != nil {
		return "", false, nil, err
	}

	switch {
	case strings.Contains(header, "'fortran_order': False"):
		fortran = false
	case strings.Contains(header, "'fortran_order': True"):
		fortran = true
	default:
		return "", false, nil, fmt.Errorf("missing fortran_order field")
	}

	start := strings.Index(header, "'shape':")
	if start < 0 {
		return "", false, nil, fmt.Errorf("missing shape field")
	}
	open := strings.Index(header[start:], "(")
	end := strings.Index(header[start:], ")")
	if open < 0 || end < 0 || end < open {
		return "", false, nil, fmt.Errorf("malformed shape tuple")
	}
	tuple := header[start+open+1 : start+end]
	for _, part := range strings.Split(tuple, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		dim, convErr := strconv.Atoi(part)
		if convErr != nil {
			return "", false, nil, fmt.Errorf("malformed shape dimension %q", part)
		}
		shape = append(shape, dim)
	}

	return descr, fortran, shape, nil
}

// npyHeaderString extracts a single-quoted string value for the given
// key from an npy header dict.
func npyHeaderString(header, key string) (string, error) {
	marker := "'" + key + "':"
	start := strings.Index(header, marker)
	if start < 0 {
		return "", fmt.Errorf("missing %s field", key)
	}
	rest := header[start+len(marker):]
	open := strings.Index(rest, "'")
	if open < 0 {
		return "", fmt.Errorf("malformed %s field", key)
	}
	end := strings.Index(rest[open+1:], "'")
	if end < 0 {
		return "", fmt.Errorf("malformed %s field", key)
	}
	return rest[open+1 : open+1+end], nil
}
