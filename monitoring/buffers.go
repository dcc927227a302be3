package monitoring

import (
	"cmp"
	"fmt"
	"net/http"
	"reflect"
	"slices"
	"strconv"
	"unsafe"

	"github.com/sarchlab/membist/sim"
)

var bufferType = reflect.TypeFor[sim.Buffer]()

// buffersOf finds the sim.Buffer fields of a struct pointer, exported or not.
func buffersOf(owner any) []sim.Buffer {
	v := reflect.ValueOf(owner)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil
	}

	v = v.Elem()

	var found []sim.Buffer

	for i := range v.NumField() {
		f := v.Field(i)
		if f.Type() != bufferType || f.IsNil() {
			continue
		}

		readable := reflect.NewAt(bufferType, unsafe.Pointer(f.UnsafeAddr()))
		found = append(found, readable.Elem().Interface().(sim.Buffer))
	}

	return found
}

type bufferRsp struct {
	Buffer string `json:"buffer"`
	Level  int    `json:"level"`
	Cap    int    `json:"cap"`
}

func (m *Monitor) hangDetectorBuffers(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := parseBufferQuery(r)
	if err != nil {
		badRequest(w, err)
		return
	}

	selected := m.sortAndSelectBuffers(sortMethod, limit, offset)

	rsp := make([]bufferRsp, 0, len(selected))
	for _, b := range selected {
		rsp = append(rsp, bufferRsp{
			Buffer: b.Name(),
			Level:  b.Size(),
			Cap:    b.Capacity(),
		})
	}

	writeJSON(w, rsp)
}

func parseBufferQuery(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")

	switch sortMethod {
	case "":
		sortMethod = "percent"
	case "level", "percent":
	default:
		return "", 0, 0, fmt.Errorf(
			"invalid sort method %q, use level or percent", sortMethod)
	}

	if limit, err = nonNegativeParam(r, "limit"); err != nil {
		return "", 0, 0, err
	}

	if offset, err = nonNegativeParam(r, "offset"); err != nil {
		return "", 0, 0, err
	}

	return sortMethod, limit, offset, nil
}

func nonNegativeParam(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	if n < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}

	return n, nil
}

func fillRatio(b sim.Buffer) float64 {
	return float64(b.Size()) / float64(b.Capacity())
}

// sortAndSelectBuffers orders the buffers fullest first and returns the page
// starting at offset. A zero limit means no limit.
func (m *Monitor) sortAndSelectBuffers(
	sortMethod string,
	limit, offset int,
) []sim.Buffer {
	byLevel := func(a, b sim.Buffer) int {
		return cmp.Compare(b.Size(), a.Size())
	}
	byRatio := func(a, b sim.Buffer) int {
		return cmp.Compare(fillRatio(b), fillRatio(a))
	}

	primary, secondary := byRatio, byLevel
	if sortMethod == "level" {
		primary, secondary = byLevel, byRatio
	}

	sorted := slices.Clone(m.buffers)
	slices.SortStableFunc(sorted, func(a, b sim.Buffer) int {
		return cmp.Or(primary(a, b), secondary(a, b))
	})

	offset = min(offset, len(sorted))

	end := len(sorted)
	if limit > 0 {
		end = min(end, offset+limit)
	}

	return sorted[offset:end]
}
