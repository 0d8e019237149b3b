package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record layout constants. The header is a fixed 13-byte prefix; the
// payload immediately follows it in the same block.
const (
	// MetadataSize is the serialized size of the record header:
	// Valid(1) + WriteCount(4) + PayloadLen(8).
	MetadataSize = 13

	validMarker   = 0x01
	invalidMarker = 0x00
)

// ErrMalformedRecord indicates a buffer too short or internally
// inconsistent to hold a record.
var ErrMalformedRecord = errors.New("malformed record")

// Record is the logical unit stored in one flash block: a validity
// flag, a per-block write cycle counter, and a variable-length
// payload. Payload is always owned by the Record; decoding copies it
// out of the source buffer since that buffer may be a read-only
// flash-mapped window.
type Record struct {
	Valid      bool   // true once a successful write completes
	WriteCount uint32 // write cycles for the owning block, survives erase
	PayloadLen uint64 // byte length of Payload
	Payload    []byte // payload data, len(Payload) == PayloadLen
}

// NewRecord builds a valid record around payload with the given write
// count.
func NewRecord(payload []byte, writeCount uint32) *Record {
	return &Record{
		Valid:      true,
		WriteCount: writeCount,
		PayloadLen: uint64(len(payload)),
		Payload:    payload,
	}
}

// InvalidRecord builds the header-only record a metadata-preserving
// erase programs back: valid=false, empty payload, counter carried
// forward.
func InvalidRecord(writeCount uint32) *Record {
	return &Record{WriteCount: writeCount}
}

// Size returns the total serialized size of the record.
func (r *Record) Size() int {
	return MetadataSize + len(r.Payload)
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record into its binary format
// Format: [Valid(1)][WriteCount(4)][PayloadLen(8)][Payload]
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	if r.PayloadLen != uint64(len(r.Payload)) {
		return nil, fmt.Errorf("%w: declared payload length %d, actual %d", ErrMalformedRecord, r.PayloadLen, len(r.Payload))
	}

	buf := make([]byte, r.Size())

	if r.Valid {
		buf[0] = validMarker
	} else {
		buf[0] = invalidMarker
	}
	binary.LittleEndian.PutUint32(buf[1:], r.WriteCount)
	binary.LittleEndian.PutUint64(buf[5:], r.PayloadLen)
	copy(buf[MetadataSize:], r.Payload)

	return buf, nil
}

// Decode deserializes a binary record. The payload is copied into a
// fresh allocation; the returned record never aliases data. Trailing
// bytes beyond MetadataSize+PayloadLen are ignored.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	r, err := c.DecodeHeader(data)
	if err != nil {
		return nil, err
	}

	if uint64(len(data)) < MetadataSize+r.PayloadLen {
		return nil, fmt.Errorf("%w: buffer %d bytes, record claims %d", ErrMalformedRecord, len(data), MetadataSize+r.PayloadLen)
	}

	r.Payload = make([]byte, r.PayloadLen)
	copy(r.Payload, data[MetadataSize:MetadataSize+r.PayloadLen])

	return r, nil
}

// DecodeHeader deserializes only the fixed metadata prefix, leaving
// Payload nil. Queries and erase paths use this to avoid touching
// payload bytes.
func (c *RecordCodec) DecodeHeader(data []byte) (*Record, error) {
	if len(data) < MetadataSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedRecord, len(data), MetadataSize)
	}

	r := &Record{}
	r.Valid = data[0] == validMarker
	r.WriteCount = binary.LittleEndian.Uint32(data[1:5])
	r.PayloadLen = binary.LittleEndian.Uint64(data[5:13])

	return r, nil
}

// IsUnwritten reports whether a header buffer is in the erased state,
// meaning the block has never been programmed since manufacture or a
// raw erase. Every header byte reads as the erased-cell value in that
// case.
func IsUnwritten(header []byte) bool {
	if len(header) < MetadataSize {
		return false
	}
	for _, b := range header[:MetadataSize] {
		if b != 0xFF {
			return false
		}
	}
	return true
}
