package grid

import "testing"

func TestDistance_AdjacentAndSymmetry(t *testing.T) {
	g := New(13, 5)
	center := Point{Longitude: 4, Latitude: 2}
	for _, n := range g.Neighbors(center) {
		if d := Distance(center, n); d != 1 {
			t.Fatalf("neighbor (%d,%d) at distance %d, want 1", n.Longitude, n.Latitude, d)
		}
		if Distance(n, center) != Distance(center, n) {
			t.Fatalf("distance not symmetric for (%d,%d)", n.Longitude, n.Latitude)
		}
	}
	if d := Distance(center, center); d != 0 {
		t.Fatalf("self distance = %d, want 0", d)
	}
}

func TestDistance_AcrossTheField(t *testing.T) {
	a := Point{Longitude: 4, Latitude: 2}
	b := Point{Longitude: 8, Latitude: 2}
	if d := Distance(a, b); d != 4 {
		t.Fatalf("distance (4,2)-(8,2) = %d, want 4", d)
	}
}

func TestInBounds(t *testing.T) {
	g := New(13, 5)
	cases := []struct {
		lon, lat int
		want     bool
	}{
		{0, 0, true},
		{12, 4, true},
		{13, 0, false},
		{0, 5, false},
		{-1, 2, false},
		{6, -1, false},
	}
	for _, tc := range cases {
		if got := g.InBounds(tc.lon, tc.lat); got != tc.want {
			t.Fatalf("InBounds(%d,%d) = %v, want %v", tc.lon, tc.lat, got, tc.want)
		}
	}
}

func TestNeighbors_ClippedAtEdges(t *testing.T) {
	g := New(13, 5)
	corner := g.Neighbors(Point{Longitude: 0, Latitude: 0})
	if len(corner) >= 6 {
		t.Fatalf("corner tile has %d neighbors, expected fewer than 6", len(corner))
	}
	for _, n := range corner {
		if !g.InBounds(n.Longitude, n.Latitude) {
			t.Fatalf("neighbor (%d,%d) out of bounds", n.Longitude, n.Latitude)
		}
	}
	inner := g.Neighbors(Point{Longitude: 6, Latitude: 2})
	if len(inner) != 6 {
		t.Fatalf("inner tile has %d neighbors, want 6", len(inner))
	}
}

func TestNeighborToward_ReducesDistance(t *testing.T) {
	g := New(13, 5)
	from := Point{Longitude: 1, Latitude: 1}
	to := Point{Longitude: 10, Latitude: 3}
	step := g.NeighborToward(from, to)
	if Distance(step, to) >= Distance(from, to) {
		t.Fatalf("step (%d,%d) did not reduce distance", step.Longitude, step.Latitude)
	}
}

func TestNeighborToward_AtDestination(t *testing.T) {
	g := New(13, 5)
	p := Point{Longitude: 3, Latitude: 3}
	if got := g.NeighborToward(p, p); got != p {
		t.Fatalf("expected no movement at destination, got (%d,%d)", got.Longitude, got.Latitude)
	}
}

func TestTiles_CoversTheField(t *testing.T) {
	g := New(13, 5)
	tiles := g.Tiles()
	if len(tiles) != 13*5 {
		t.Fatalf("got %d tiles, want %d", len(tiles), 13*5)
	}
	seen := map[Point]bool{}
	for _, p := range tiles {
		if seen[p] {
			t.Fatalf("tile (%d,%d) enumerated twice", p.Longitude, p.Latitude)
		}
		seen[p] = true
	}
}
