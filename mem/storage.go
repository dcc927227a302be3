package mem

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrOutOfCapacity is returned when an access crosses the end of a Storage.
var ErrOutOfCapacity = errors.New("access beyond storage capacity")

const defaultUnitSize = 4096

// A Storage keeps the bytes of a simulated memory.
//
// Bytes are kept in fixed-size units that are allocated on first touch, so a
// large capacity costs nothing until it is used. Untouched bytes read as 0.
type Storage struct {
	sync.Mutex

	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	s := new(Storage)
	s.unitSize = defaultUnitSize
	s.capacity = capacity
	s.data = make(map[uint64][]byte)

	return s
}

// Capacity returns the number of bytes the storage can hold.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address, length uint64) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.mustFit(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	for offset := uint64(0); offset < length; {
		unitBase, inUnit := s.split(address + offset)
		n := min(length-offset, s.unitSize-inUnit)

		if unit, ok := s.data[unitBase]; ok {
			copy(res[offset:offset+n], unit[inUnit:inUnit+n])
		}

		offset += n
	}

	return res, nil
}

// Write stores data starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	return s.WriteMasked(address, data, nil)
}

// WriteMasked stores the bytes of data whose mask entry is true. A nil mask
// writes all bytes.
func (s *Storage) WriteMasked(address uint64, data []byte, mask []bool) error {
	s.Lock()
	defer s.Unlock()

	length := uint64(len(data))
	if err := s.mustFit(address, length); err != nil {
		return err
	}

	if mask != nil && len(mask) != len(data) {
		return fmt.Errorf("mask has %d entries for %d bytes",
			len(mask), len(data))
	}

	for i := uint64(0); i < length; i++ {
		if mask != nil && !mask[i] {
			continue
		}

		unitBase, inUnit := s.split(address + i)
		s.unit(unitBase)[inUnit] = data[i]
	}

	return nil
}

// Units returns the base addresses of the allocated units in ascending order.
func (s *Storage) Units() []uint64 {
	s.Lock()
	defer s.Unlock()

	bases := make([]uint64, 0, len(s.data))
	for base := range s.data {
		bases = append(bases, base)
	}

	sort.Slice(bases, func(i, j int) bool { return bases[i] < bases[j] })

	return bases
}

func (s *Storage) mustFit(address, length uint64) error {
	if address > s.capacity || length > s.capacity-address {
		return fmt.Errorf("%w: [0x%x, 0x%x) exceeds 0x%x",
			ErrOutOfCapacity, address, address+length, s.capacity)
	}

	return nil
}

func (s *Storage) split(addr uint64) (unitBase, inUnit uint64) {
	inUnit = addr % s.unitSize
	return addr - inUnit, inUnit
}

func (s *Storage) unit(base uint64) []byte {
	unit, ok := s.data[base]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[base] = unit
	}

	return unit
}
