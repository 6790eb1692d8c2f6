// Package memory models the physical memory that holds frame contents.
package memory

import (
	"errors"
	"fmt"
)

// ErrFrameOutOfRange is returned when a frame beyond the capacity is
// accessed.
var ErrFrameOutOfRange = errors.New("accessing frame beyond the storage capacity")

// A Storage keeps the data of the simulated physical memory.
//
// The storage manages the data in frames. For the frames that are not
// touched by WriteFrame, no memory will be allocated and reads return zeros.
type Storage struct {
	frameSize uint64
	numFrames int
	data      map[int][]byte
}

// NewStorage creates a storage object with the specified number of frames.
func NewStorage(numFrames int, frameSize uint64) *Storage {
	storage := new(Storage)

	storage.frameSize = frameSize
	storage.numFrames = numFrames
	storage.data = make(map[int][]byte)

	return storage
}

// FrameSize returns the number of bytes in a frame.
func (s *Storage) FrameSize() uint64 {
	return s.frameSize
}

// NumFrames returns the number of frames in the storage.
func (s *Storage) NumFrames() int {
	return s.numFrames
}

// createOrGetFrame retrieves a frame if the frame has been created before.
// Otherwise it initializes the frame in the storage object.
func (s *Storage) createOrGetFrame(frame int) ([]byte, error) {
	if frame < 0 || frame >= s.numFrames {
		return nil, fmt.Errorf("%w: frame %d", ErrFrameOutOfRange, frame)
	}

	unit, ok := s.data[frame]
	if !ok {
		unit = make([]byte, s.frameSize)
		s.data[frame] = unit
	}

	return unit, nil
}

// WriteFrame replaces the content of a frame. The data must be exactly one
// frame long.
func (s *Storage) WriteFrame(frame int, data []byte) error {
	if uint64(len(data)) != s.frameSize {
		return fmt.Errorf("frame %d: writing %d bytes, frame size is %d",
			frame, len(data), s.frameSize)
	}

	unit, err := s.createOrGetFrame(frame)
	if err != nil {
		return err
	}

	copy(unit, data)

	return nil
}

// Read returns one byte of a frame.
func (s *Storage) Read(frame int, offset uint8) (byte, error) {
	unit, err := s.createOrGetFrame(frame)
	if err != nil {
		return 0, err
	}

	if uint64(offset) >= s.frameSize {
		return 0, fmt.Errorf("frame %d: offset %d beyond frame size %d",
			frame, offset, s.frameSize)
	}

	return unit[offset], nil
}

// Frame returns a copy of the content of a frame.
func (s *Storage) Frame(frame int) ([]byte, error) {
	unit, err := s.createOrGetFrame(frame)
	if err != nil {
		return nil, err
	}

	res := make([]byte, len(unit))
	copy(res, unit)

	return res, nil
}
