// Package wire frames change notifications for transports that carry raw
// bytes (Redis pub/sub).
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version byte = 1
	kindSet byte = 1
	kindDel byte = 2
)

var (
	ErrCorrupt   = errors.New("kvcell: corrupt change frame")
	ErrKeyLength = errors.New("kvcell: invalid key length in change frame")
	ErrOrigin    = errors.New("kvcell: origin too long for change frame")
	magic4       = [...]byte{'K', 'V', 'C', 'N'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Frame is one change: a new stored value for Key, or its deletion.
type Frame struct {
	Key     string
	Origin  string
	Rev     uint64
	Deleted bool
	Value   []byte
}

// Change frame:
//
//	magic(4) | ver(1) | kind(1=set,2=del) | rev(u64 be)
//	originLen(u16 be) | origin | keyLen(u16 be) | key | vlen(u32 be) | value(vlen)
//
// Deletions carry vlen=0.
func EncodeChange(f Frame) ([]byte, error) {
	if l := len(f.Key); l == 0 || l > 0xFFFF {
		return nil, ErrKeyLength
	}
	if len(f.Origin) > 0xFFFF {
		return nil, ErrOrigin
	}
	value := f.Value
	kind := kindSet
	if f.Deleted {
		kind, value = kindDel, nil
	}

	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 2 + len(f.Origin) + 2 + len(f.Key) + 4 + len(value))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)

	var u8 [8]byte
	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint64(u8[:], f.Rev)
	buf.Write(u8[:])

	binary.BigEndian.PutUint16(u2[:], uint16(len(f.Origin)))
	buf.Write(u2[:])
	buf.WriteString(f.Origin)

	binary.BigEndian.PutUint16(u2[:], uint16(len(f.Key)))
	buf.Write(u2[:])
	buf.WriteString(f.Key)

	binary.BigEndian.PutUint32(u4[:], uint32(len(value)))
	buf.Write(u4[:])
	buf.Write(value)

	return buf.Bytes(), nil
}

// DecodeChange parses a frame. Value aliases b.
func DecodeChange(b []byte) (Frame, error) {
	const hdr = 4 + 1 + 1 + 8
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return Frame{}, ErrCorrupt
	}
	kind := b[5]
	if kind != kindSet && kind != kindDel {
		return Frame{}, ErrCorrupt
	}

	off := 6
	f := Frame{Deleted: kind == kindDel}

	f.Rev = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	// origin
	if off+2 > len(b) {
		return Frame{}, ErrCorrupt
	}
	olen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if olen > len(b)-off {
		return Frame{}, ErrCorrupt
	}
	f.Origin = string(b[off : off+olen])
	off += olen

	// key
	if off+2 > len(b) {
		return Frame{}, ErrCorrupt
	}
	klen := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if klen == 0 || klen > len(b)-off {
		return Frame{}, ErrCorrupt
	}
	f.Key = string(b[off : off+klen])
	off += klen

	// value
	if off+4 > len(b) {
		return Frame{}, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen > len(b)-off { // overflow-safe bound check
		return Frame{}, ErrCorrupt
	}
	if f.Deleted && vlen != 0 {
		return Frame{}, ErrCorrupt
	}
	if !f.Deleted {
		f.Value = b[off : off+vlen]
	}
	off += vlen

	if off != len(b) {
		return Frame{}, ErrCorrupt
	}
	return f, nil
}
