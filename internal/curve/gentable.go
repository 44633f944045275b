package curve

import "btc_bruteforce/internal/field"

// Half is the batch half-width of GeneratorTable: each pass of
// BatchEngine amortizes one field inversion over 2*Half candidate
// points. 512 is a typical CPU-path value.
const Half = 512

// Table holds G_1..G_Half (Table.Points[i] = (i+1)*G) plus TwoG =
// 2*Half*G, precomputed once at process start and treated as read-only
// shared state thereafter.
type Table struct {
	Points []Point // Points[i] = (i+1)*G, len == Half
	TwoG   Point
}

// BuildTable constructs the generator table by repeated addition, which
// is run exactly once at startup and is not part of the hot loop.
func BuildTable() *Table {
	points := make([]Point, Half)
	cur := Generator
	points[0] = cur
	for i := 1; i < Half; i++ {
		cur = Add(cur, Generator)
		points[i] = cur
	}
	twoHalf := field.NewScalarFromUint64(uint64(2 * Half))
	return &Table{
		Points: points,
		TwoG:   ScalarMultWindowed(twoHalf, Generator),
	}
}
