package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ssargent/muninn/pkg/store"
)

// Server holds the API server state
type Server struct {
	store   IRecordStore
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server
func NewServer(recordStore IRecordStore, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		store:   recordStore,
		config:  config,
		metrics: metrics,
	}
}

// parseOffset extracts the block offset path parameter.
func parseOffset(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "offset"), 10, 64)
}

// statusForStoreError maps the store's error taxonomy onto HTTP
// status codes.
func statusForStoreError(err error) int {
	switch {
	case errors.Is(err, store.ErrMisalignedOffset),
		errors.Is(err, store.ErrPayloadTooLarge),
		errors.Is(err, store.ErrNullOrEmptyPayload):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrOutOfRange):
		return http.StatusRequestedRangeNotSatisfiable
	case errors.Is(err, store.ErrInvalidOrUninitialized):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleHealth reports server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleGeometry reports the device geometry the store was configured
// with, so clients can compute aligned offsets and payload limits.
func (s *Server) handleGeometry(w http.ResponseWriter, r *http.Request) {
	geom := s.store.Geometry()
	sendSuccess(w, map[string]uint64{
		"block_size":  geom.BlockSize,
		"target_base": geom.TargetBase,
		"device_size": geom.DeviceSize,
		"capacity":    s.store.Capacity(),
	})
}

// handleWriteRecord stores the request body as the record for a block.
func (s *Server) handleWriteRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	offset, err := parseOffset(r)
	if err != nil {
		sendError(w, "Offset must be an unsigned integer", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		s.metrics.RecordFlashOperation("write", false, time.Since(start))
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := s.store.Write(offset, payload); err != nil {
		s.metrics.RecordFlashOperation("write", false, time.Since(start))
		sendError(w, err.Error(), statusForStoreError(err))
		return
	}

	count := s.store.WriteCount(offset)
	s.metrics.RecordFlashOperation("write", true, time.Since(start))
	s.metrics.RecordPayloadSize(len(payload))
	s.metrics.UpdateWriteCount(offset, count)

	sendSuccess(w, RecordInfo{
		Offset:        offset,
		Valid:         true,
		WriteCount:    count,
		PayloadLength: uint64(len(payload)),
	})
}

// handleReadRecord returns the raw payload of a block.
func (s *Server) handleReadRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	offset, err := parseOffset(r)
	if err != nil {
		sendError(w, "Offset must be an unsigned integer", http.StatusBadRequest)
		return
	}

	record, err := s.store.ReadRecord(offset)
	if err != nil {
		s.metrics.RecordFlashOperation("read", false, time.Since(start))
		sendError(w, err.Error(), statusForStoreError(err))
		return
	}

	s.metrics.RecordFlashOperation("read", true, time.Since(start))

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Write-Count", strconv.FormatUint(uint64(record.WriteCount), 10))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(record.Payload)
}

// handleEraseRecord invalidates a block's record, preserving its write
// counter.
func (s *Server) handleEraseRecord(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	offset, err := parseOffset(r)
	if err != nil {
		sendError(w, "Offset must be an unsigned integer", http.StatusBadRequest)
		return
	}

	if err := s.store.Erase(offset); err != nil {
		s.metrics.RecordFlashOperation("erase", false, time.Since(start))
		sendError(w, err.Error(), statusForStoreError(err))
		return
	}

	s.metrics.RecordFlashOperation("erase", true, time.Since(start))
	s.metrics.UpdateWriteCount(offset, s.store.WriteCount(offset))

	sendSuccess(w, map[string]uint64{"offset": offset})
}

// handleRecordInfo returns the metadata view of a block without its
// payload. The zero values are ambiguous between "empty" and
// "invalid"; clients that care fetch the record itself.
func (s *Server) handleRecordInfo(w http.ResponseWriter, r *http.Request) {
	offset, err := parseOffset(r)
	if err != nil {
		sendError(w, "Offset must be an unsigned integer", http.StatusBadRequest)
		return
	}

	info := RecordInfo{
		Offset:        offset,
		WriteCount:    s.store.WriteCount(offset),
		PayloadLength: s.store.PayloadLength(offset),
	}

	if record, err := s.store.ReadRecord(offset); err == nil {
		info.Valid = record.Valid
	}

	sendSuccess(w, info)
}
