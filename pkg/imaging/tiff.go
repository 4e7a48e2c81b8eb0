package imaging

import (
	"encoding/binary"
	"fmt"
	"os"
)

// TIFF tag ids used by the baseline grayscale reader.
const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
)

// tiffField is one decoded IFD entry.
type tiffField struct {
	typ    uint16
	values []uint64
}

// ReadTIFF reads a multi-page grayscale TIFF as an imaging stack, one
// frame per IFD. Only the subset of baseline TIFF that acquisition
// software writes for raw calcium movies is handled: uncompressed,
// single-sample, 8 or 16 bits per pixel, strip-based layout. Every
// page must share the same width and height or the file is rejected
// with ErrInvalidStackShape.
func ReadTIFF(path string) (*Stack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tiff file: %w", err)
	}
	if len(data) < 8 {
		return nil, fmt.Errorf("not a tiff file: %s", path)
	}

	var order binary.ByteOrder
	switch {
	case data[0] == 'I' && data[1] == 'I':
		order = binary.LittleEndian
	case data[0] == 'M' && data[1] == 'M':
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a tiff file: %s", path)
	}
	if order.Uint16(data[2:4]) != 42 {
		return nil, fmt.Errorf("not a tiff file: %s", path)
	}

	type page struct {
		width, height, bits int
		offsets, counts     []uint64
	}
	var pages []page

	ifdOffset := uint64(order.Uint32(data[4:8]))
	for ifdOffset != 0 {
		fields, next, err := readIFD(data, order, ifdOffset)
		if err != nil {
			return nil, fmt.Errorf("parsing tiff %s: %w", path, err)
		}

		width := int(firstValue(fields, tagImageWidth, 0))
		height := int(firstValue(fields, tagImageLength, 0))
		bits := int(firstValue(fields, tagBitsPerSample, 1))
		compression := firstValue(fields, tagCompression, 1)
		samples := firstValue(fields, tagSamplesPerPixel, 1)

		if compression != 1 {
			return nil, fmt.Errorf("unsupported tiff compression %d in %s", compression, path)
		}
		if samples != 1 {
			return nil, fmt.Errorf("unsupported tiff sample count %d in %s", samples, path)
		}
		if bits != 8 && bits != 16 {
			return nil, fmt.Errorf("unsupported tiff bit depth %d in %s", bits, path)
		}
		if width <= 0 || height <= 0 {
			return nil, fmt.Errorf("%w: tiff page with %dx%d extent", ErrInvalidStackShape, height, width)
		}

		offsets := fields[tagStripOffsets]
		counts := fields[tagStripByteCounts]
		if offsets == nil || counts == nil || len(offsets.values) != len(counts.values) {
			return nil, fmt.Errorf("malformed tiff strip layout in %s", path)
		}

		pages = append(pages, page{
			width: width, height: height, bits: bits,
			offsets: offsets.values, counts: counts.values,
		})
		ifdOffset = next
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: tiff file %s has no pages", ErrInvalidStackShape, path)
	}
	for _, pg := range pages {
		if pg.width != pages[0].width || pg.height != pages[0].height {
			return nil, fmt.Errorf("%w: tiff pages have mixed extents in %s", ErrInvalidStackShape, path)
		}
	}

	stack, err := NewStack(len(pages), pages[0].height, pages[0].width)
	if err != nil {
		return nil, err
	}

	for f, pg := range pages {
		dst := stack.Frame(f)
		pixel := 0
		bytesPerPixel := pg.bits / 8
		for s := range pg.offsets {
			off := int(pg.offsets[s])
			count := int(pg.counts[s])
			if off+count > len(data) {
				return nil, fmt.Errorf("tiff strip out of bounds in %s", path)
			}
			strip := data[off : off+count]
			for i := 0; i+bytesPerPixel <= len(strip) && pixel < len(dst); i += bytesPerPixel {
				if pg.bits == 8 {
					dst[pixel] = float64(strip[i])
				} else {
					dst[pixel] = float64(order.Uint16(strip[i:]))
				}
				pixel++
			}
		}
		if pixel != len(dst) {
			return nil, fmt.Errorf("tiff page %d has %d pixels, want %d in %s", f, pixel, len(dst), path)
		}
	}

	return stack, nil
}

// readIFD decodes the IFD at the given offset and returns its fields
// keyed by tag id plus the offset of the next IFD (0 when this is the
// last one).
func readIFD(data []byte, order binary.ByteOrder, offset uint64) (map[uint16]*tiffField, uint64, error) {
	if offset+2 > uint64(len(data)) {
		return nil, 0, fmt.Errorf("ifd offset out of bounds")
	}
	count := int(order.Uint16(data[offset:]))
	entriesEnd := offset + 2 + uint64(count)*12
	if entriesEnd+4 > uint64(len(data)) {
		return nil, 0, fmt.Errorf("truncated ifd")
	}

	fields := make(map[uint16]*tiffField, count)
	for i := 0; i < count; i++ {
		entry := data[offset+2+uint64(i)*12:]
		tag := order.Uint16(entry[0:2])
		typ := order.Uint16(entry[2:4])
		n := order.Uint32(entry[4:8])

		size, ok := tiffTypeSize(typ)
		if !ok {
			// Unknown field types are skipped; the reader only needs
			// the baseline tags.
			continue
		}

		var raw []byte
		total := uint64(size) * uint64(n)
		if total <= 4 {
			raw = entry[8 : 8+total]
		} else {
			valueOffset := uint64(order.Uint32(entry[8:12]))
			if valueOffset+total > uint64(len(data)) {
				return nil, 0, fmt.Errorf("tag %d value out of bounds", tag)
			}
			raw = data[valueOffset : valueOffset+total]
		}

		values := make([]uint64, n)
		for v := uint32(0); v < n; v++ {
			switch size {
			case 1:
				values[v] = uint64(raw[v])
			case 2:
				values[v] = uint64(order.Uint16(raw[2*v:]))
			case 4:
				values[v] = uint64(order.Uint32(raw[4*v:]))
			}
		}
		fields[tag] = &tiffField{typ: typ, values: values}
	}

	next := uint64(order.Uint32(data[entriesEnd : entriesEnd+4]))
	return fields, next, nil
}

// tiffTypeSize returns the byte size of a TIFF field type, or false for
// types the reader does not interpret.
func tiffTypeSize(typ uint16) (int, bool) {
	switch typ {
	case 1, 2, 6, 7: // BYTE, ASCII, SBYTE, UNDEFINED
		return 1, true
	case 3, 8: // SHORT, SSHORT
		return 2, true
	case 4, 9: // LONG, SLONG
		return 4, true
	default:
		return 0, false
	}
}

// firstValue returns the first value of a tag, or the fallback when the
// tag is absent.
func firstValue(fields map[uint16]*tiffField, tag uint16, fallback uint64) uint64 {
	f := fields[tag]
	if f == nil || len(f.values) == 0 {
		return fallback
	}
	return f.values[0]
}
