// ABOUTME: Ogg page reader over an in-memory buffer
// ABOUTME: Verifies page checksums and reassembles packets of the first logical stream
package decode

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	oggHeaderSize = 27

	oggContinued = 0x01
	oggBOS       = 0x02
	oggEOS       = 0x04
)

// oggCRCTable is the Ogg CRC-32 table (polynomial 0x04C11DB7, unreflected)
var oggCRCTable = func() (t [256]uint32) {
	for i := range t {
		r := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if r&0x80000000 != 0 {
				r = r<<1 ^ 0x04C11DB7
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}()

// oggChecksum computes the page CRC with the checksum field taken as zero
func oggChecksum(page []byte) uint32 {
	var crc uint32
	for i, b := range page {
		if i >= 22 && i < 26 {
			b = 0
		}
		crc = crc<<8 ^ oggCRCTable[byte(crc>>24)^b]
	}
	return crc
}

// oggPage is one parsed Ogg page
type oggPage struct {
	headerType byte
	granule    int64
	serial     uint32
	sequence   uint32
	segments   []byte
	body       []byte
}

// parseOggPage parses the page at the start of data and returns it with
// its total size in bytes.
func parseOggPage(data []byte) (*oggPage, int, error) {
	if len(data) < oggHeaderSize {
		return nil, 0, fmt.Errorf("%w: ogg: truncated page header", ErrCorrupt)
	}
	if string(data[0:4]) != "OggS" {
		return nil, 0, fmt.Errorf("%w: ogg: invalid capture pattern", ErrCorrupt)
	}
	if data[4] != 0 {
		return nil, 0, fmt.Errorf("%w: ogg: unsupported version %d", ErrCorrupt, data[4])
	}

	nseg := int(data[26])
	if len(data) < oggHeaderSize+nseg {
		return nil, 0, fmt.Errorf("%w: ogg: truncated segment table", ErrCorrupt)
	}
	segments := data[oggHeaderSize : oggHeaderSize+nseg]

	bodySize := 0
	for _, lace := range segments {
		bodySize += int(lace)
	}
	size := oggHeaderSize + nseg + bodySize
	if len(data) < size {
		return nil, 0, fmt.Errorf("%w: ogg: truncated page body", ErrCorrupt)
	}

	want := binary.LittleEndian.Uint32(data[22:26])
	if got := oggChecksum(data[:size]); got != want {
		return nil, 0, fmt.Errorf("%w: ogg: checksum mismatch (got %08x, want %08x)", ErrCorrupt, got, want)
	}

	return &oggPage{
		headerType: data[5],
		granule:    int64(binary.LittleEndian.Uint64(data[6:14])),
		serial:     binary.LittleEndian.Uint32(data[14:18]),
		sequence:   binary.LittleEndian.Uint32(data[18:22]),
		segments:   segments,
		body:       data[oggHeaderSize+nseg : size],
	}, size, nil
}

// firstOggPacket returns the start of the first packet without checking
// the page checksum. Used only for sniffing.
func firstOggPacket(data []byte) []byte {
	if len(data) < oggHeaderSize {
		return nil
	}
	start := oggHeaderSize + int(data[26])
	if len(data) < start {
		return nil
	}
	return data[start:]
}

// oggReader yields the packets of the first logical bitstream in data.
// Pages of other streams are skipped.
type oggReader struct {
	data       []byte
	pos        int
	serial     uint32
	haveSerial bool

	packets [][]byte
	partial []byte
	eos     bool
}

func newOggReader(data []byte) *oggReader {
	return &oggReader{data: data}
}

// nextPage returns the next page of the selected stream
func (r *oggReader) nextPage() (*oggPage, error) {
	for {
		if r.eos || r.pos >= len(r.data) {
			return nil, io.EOF
		}
		page, size, err := parseOggPage(r.data[r.pos:])
		if err != nil {
			return nil, err
		}
		r.pos += size

		if !r.haveSerial {
			if page.headerType&oggBOS == 0 {
				return nil, fmt.Errorf("%w: ogg: first page is not a stream start", ErrCorrupt)
			}
			r.serial = page.serial
			r.haveSerial = true
		}
		if page.serial != r.serial {
			continue
		}
		if page.headerType&oggEOS != 0 {
			r.eos = true
		}
		return page, nil
	}
}

// nextPacket returns the next complete packet. Packets spanning pages are
// joined. io.EOF is returned after the last packet.
func (r *oggReader) nextPacket() ([]byte, error) {
	for len(r.packets) == 0 {
		page, err := r.nextPage()
		if err != nil {
			return nil, err
		}

		if page.headerType&oggContinued == 0 {
			r.partial = nil
		}

		off := 0
		for _, lace := range page.segments {
			r.partial = append(r.partial, page.body[off:off+int(lace)]...)
			off += int(lace)
			if lace < 255 {
				r.packets = append(r.packets, r.partial)
				r.partial = nil
			}
		}
	}

	pkt := r.packets[0]
	r.packets = r.packets[1:]
	return pkt, nil
}

// lastGranule scans the stream and returns the granule position of its
// end-of-stream page, or -1 if no such page is reachable.
func lastGranule(data []byte) int64 {
	r := newOggReader(data)
	granule := int64(-1)
	for {
		page, err := r.nextPage()
		if err != nil {
			return -1
		}
		if page.headerType&oggEOS != 0 {
			if page.granule >= 0 {
				granule = page.granule
			}
			return granule
		}
	}
}
