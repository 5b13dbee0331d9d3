// Package grid builds the battle map and answers range and movement
// queries. The map is a fixed-size hex field addressed with odd-q offset
// coordinates (longitude = column, latitude = row); every tile has uniform
// movement cost. All computation here is pure; callers must reject
// out-of-bounds coordinates before invoking anything else.
package grid

// Point is one tile coordinate.
type Point struct {
	Longitude int `json:"longitude"`
	Latitude  int `json:"latitude"`
}

// Grid is the battle map. Zero-cost to copy; carries no per-tile state.
type Grid struct {
	Width  int
	Height int
}

// New returns a grid with the given dimensions.
func New(width, height int) Grid {
	return Grid{Width: width, Height: height}
}

// InBounds reports whether the coordinate lies on the map.
func (g Grid) InBounds(longitude, latitude int) bool {
	return longitude >= 0 && longitude < g.Width && latitude >= 0 && latitude < g.Height
}

// Tiles enumerates every tile on the map in row-major order.
func (g Grid) Tiles() []Point {
	out := make([]Point, 0, g.Width*g.Height)
	for lat := 0; lat < g.Height; lat++ {
		for lon := 0; lon < g.Width; lon++ {
			out = append(out, Point{Longitude: lon, Latitude: lat})
		}
	}
	return out
}

// cube converts odd-q offset coordinates to cube coordinates.
func cube(p Point) (x, y, z int) {
	x = p.Longitude
	z = p.Latitude - (p.Longitude-(p.Longitude&1))/2
	y = -x - z
	return
}

// Distance returns the hex distance between two tiles.
func Distance(a, b Point) int {
	ax, ay, az := cube(a)
	bx, by, bz := cube(b)
	return (abs(ax-bx) + abs(ay-by) + abs(az-bz)) / 2
}

// offsets for hex neighbours in odd-q layout, indexed by column parity.
var neighbourOffsets = [2][6][2]int{
	// even column
	{{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {0, 1}},
	// odd column
	{{1, 1}, {1, 0}, {0, -1}, {-1, 0}, {-1, 1}, {0, 1}},
}

// Neighbors returns the in-bounds tiles adjacent to p.
func (g Grid) Neighbors(p Point) []Point {
	parity := p.Longitude & 1
	out := make([]Point, 0, 6)
	for _, d := range neighbourOffsets[parity] {
		q := Point{Longitude: p.Longitude + d[0], Latitude: p.Latitude + d[1]}
		if g.InBounds(q.Longitude, q.Latitude) {
			out = append(out, q)
		}
	}
	return out
}

// NeighborToward returns the adjacent tile that most reduces the distance
// from `from` to `to`, or `from` itself when no neighbour improves it.
// Occupancy is the caller's concern; this is geometry only.
func (g Grid) NeighborToward(from, to Point) Point {
	best := from
	bestDist := Distance(from, to)
	for _, n := range g.Neighbors(from) {
		if d := Distance(n, to); d < bestDist {
			best = n
			bestDist = d
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
