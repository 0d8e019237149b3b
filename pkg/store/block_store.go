package store

import (
	"fmt"

	"github.com/ssargent/muninn/pkg/codec"
)

// BlockStore drives the destructive erase+program sequence against a
// flash device and exposes non-destructive reads through the device's
// mapped window. It assumes its caller has already validated offsets
// and sizes; it adds the critical-section discipline and the
// metadata-preservation policy on top of the raw primitives.
type BlockStore struct {
	config BlockStoreConfig
	codec  *codec.RecordCodec
}

// NewBlockStore creates a block store over the given device.
func NewBlockStore(config BlockStoreConfig) *BlockStore {
	return &BlockStore{
		config: config,
		codec:  codec.NewRecordCodec(),
	}
}

// EraseAndProgram erases the full block containing absOffset and then
// programs buf starting at absOffset, with interrupts suspended for
// the duration of the pair.
//
// The critical section keeps other code on the core from interleaving
// with the sequence. It does not make the pair atomic across power
// loss: a failure between erase and program leaves the block fully
// erased, observed afterwards as unwritten rather than as a
// valid=false record. That durability gap is inherent to
// erase-then-program flash and is documented rather than hidden.
func (bs *BlockStore) EraseAndProgram(absOffset uint64, buf []byte) error {
	token := bs.config.Device.DisableInterrupts()
	defer bs.config.Device.RestoreInterrupts(token)

	blockStart := bs.config.Geometry.BlockStart(absOffset)
	if err := bs.config.Device.Erase(blockStart, bs.config.Geometry.BlockSize); err != nil {
		return fmt.Errorf("erase block at %#x: %w", blockStart, err)
	}

	if err := bs.config.Device.Program(absOffset, buf); err != nil {
		return fmt.Errorf("program %d bytes at %#x: %w", len(buf), absOffset, err)
	}

	return nil
}

// Read returns length bytes at absOffset through the mapped window.
// It never blocks and never touches interrupt state. The returned
// slice may alias device memory; callers copy what they keep.
func (bs *BlockStore) Read(absOffset, length uint64) ([]byte, error) {
	return bs.config.Device.ReadMapped(absOffset, length)
}

// ReadHeader reads and decodes the metadata header at the start of a
// record. An unwritten header (all erased cells) is normalized to a
// zeroed record: invalid, write count 0, no payload. Callers therefore
// never see the 0xFFFFFFFF an erased counter word would decode to.
func (bs *BlockStore) ReadHeader(absOffset uint64) (*codec.Record, error) {
	raw, err := bs.Read(absOffset, codec.MetadataSize)
	if err != nil {
		return nil, err
	}

	if codec.IsUnwritten(raw) {
		return &codec.Record{}, nil
	}

	return bs.codec.DecodeHeader(raw)
}

// PreserveMetadataAcrossErase erases the block at absOffset while
// carrying the write counter forward: the prior header is read, the
// block erased, and a valid=false, payload_len=0 header holding the
// old counter programmed back. A block being erased for the first
// time carries a counter of 0.
//
// This is the full contract of the public erase operation: payload is
// invalidated, the write counter never resets.
func (bs *BlockStore) PreserveMetadataAcrossErase(absOffset uint64) error {
	token := bs.config.Device.DisableInterrupts()
	defer bs.config.Device.RestoreInterrupts(token)

	header, err := bs.ReadHeader(absOffset)
	if err != nil {
		return fmt.Errorf("read header before erase at %#x: %w", absOffset, err)
	}

	blockStart := bs.config.Geometry.BlockStart(absOffset)
	if err := bs.config.Device.Erase(blockStart, bs.config.Geometry.BlockSize); err != nil {
		return fmt.Errorf("erase block at %#x: %w", blockStart, err)
	}

	restored, err := bs.codec.Encode(codec.InvalidRecord(header.WriteCount))
	if err != nil {
		return err
	}

	if err := bs.config.Device.Program(absOffset, restored); err != nil {
		return fmt.Errorf("restore header at %#x: %w", absOffset, err)
	}

	return nil
}
