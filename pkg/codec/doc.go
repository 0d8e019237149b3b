// Package codec provides record serialization and deserialization for Muninn.
//
// The codec package implements the binary format for the
// one-record-per-block layout Muninn persists to flash. This is the
// foundation the block store and record store build on.
//
// # Record Format
//
// Records are serialized in a binary format with the following structure:
//
//	[Valid(1)][WriteCount(4)][PayloadLen(8)][Payload]
//
// Fields:
//   - Valid: 1 byte, 0x01 once a successful write completes, 0x00 after
//     a metadata-preserving erase
//   - WriteCount: 32-bit unsigned write cycle counter for the owning
//     block (little-endian), preserved across erase
//   - PayloadLen: 64-bit unsigned payload length in bytes (little-endian)
//   - Payload: Variable-length payload data
//
// The total record size is: 13 bytes (header) + PayloadLen, and must
// fit within one erasable block.
//
// # The Unwritten State
//
// A block that has never been programmed reads as all-ones (the erased
// cell value), so its header is neither valid nor a well-formed
// invalid record. IsUnwritten detects this state explicitly; callers
// treat an unwritten header as write count zero rather than trusting
// the 0xFFFFFFFF it would otherwise decode to.
//
// # Ownership
//
// Decode always copies the payload into a fresh allocation. Source
// buffers may be windows into memory-mapped flash that the next erase
// or program invalidates, so a decoded Record never aliases its input.
//
// # Usage
//
// Basic encoding and decoding:
//
//	codec := codec.NewRecordCodec()
//
//	// Encode a record
//	encoded, err := codec.Encode(codec.NewRecord(payload, writeCount))
//	if err != nil {
//	    return err
//	}
//
//	// Decode a record
//	record, err := codec.Decode(encoded)
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// All decode failures wrap ErrMalformedRecord: buffers shorter than
// the header, and buffers shorter than the declared payload length.
// Encode rejects records whose PayloadLen disagrees with the payload
// actually attached.
//
// # Thread Safety
//
// RecordCodec instances are safe for concurrent use. Record structs are
// immutable after creation and safe to share between goroutines.
package codec
