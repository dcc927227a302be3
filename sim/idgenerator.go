package sim

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator hands out message, event and task IDs.
type IDGenerator interface {
	Generate() string
}

var ids struct {
	sync.Mutex
	gen IDGenerator
}

// UseSequentialIDGenerator makes IDs count up from 1, so two runs of the
// same benchmark produce the same IDs. This is the default.
func UseSequentialIDGenerator() {
	setIDGenerator(new(countingIDs))
}

// UseParallelIDGenerator makes IDs globally unique, so records of several
// runs can share one database.
func UseParallelIDGenerator() {
	setIDGenerator(uniqueIDs{})
}

func setIDGenerator(g IDGenerator) {
	ids.Lock()
	defer ids.Unlock()

	if ids.gen != nil {
		log.Panic("the ID generator is already in use")
	}

	ids.gen = g
}

// GetIDGenerator returns the generator in use, choosing the sequential one
// if none was chosen yet.
func GetIDGenerator() IDGenerator {
	ids.Lock()
	defer ids.Unlock()

	if ids.gen == nil {
		ids.gen = new(countingIDs)
	}

	return ids.gen
}

type countingIDs struct {
	last atomic.Uint64
}

func (g *countingIDs) Generate() string {
	return strconv.FormatUint(g.last.Add(1), 10)
}

type uniqueIDs struct{}

func (uniqueIDs) Generate() string {
	return xid.New().String()
}
