package segment

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ironsheep/glyphseg-mcp/internal/unionfind"
)

func TestThreshold(t *testing.T) {
	// Two-component buffer: first byte is read, second ignored.
	pix := []byte{
		0, 255, 126, 255, 127, 0,
		200, 0, 255, 0, 10, 10,
	}
	buf, err := NewPixelBuffer(3, 2, 6, 2, pix)
	if err != nil {
		t.Fatalf("NewPixelBuffer failed: %v", err)
	}

	g := Threshold(buf)
	want := [][]bool{
		{true, true, false},
		{false, false, true},
	}
	for y := range want {
		for x := range want[y] {
			if g.Ink(x, y) != want[y][x] {
				t.Errorf("Ink(%d,%d): got %v, want %v", x, y, g.Ink(x, y), want[y][x])
			}
		}
	}
	if g.InkCount() != 3 {
		t.Errorf("InkCount: got %d, want 3", g.InkCount())
	}
}

func TestScan_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		rows  []string
		count int
	}{
		{"empty", []string{"....", "...."}, 0},
		{"single pixel", []string{"....", ".#..", "...."}, 1},
		{"diagonal is not connected", []string{"#..", ".#.", "..#"}, 3},
		{"U shape joins late", []string{"#.#", "#.#", "###"}, 1},
		{"two bars", []string{"#.#", "#.#", "#.#"}, 2},
		{"staircase", []string{"##...", ".##..", "..##.", "...##"}, 1},
		{"comb", []string{"#.#.#", "#.#.#", "#####"}, 1},
		{"ring", []string{"####", "#..#", "####"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, count := compacted(t, gridFromRows(t, tt.rows...))
			if count != tt.count {
				t.Errorf("components: got %d, want %d", count, tt.count)
			}
		})
	}
}

func TestScan_TopLabelWins(t *testing.T) {
	grid := gridFromRows(t,
		"#.#",
		"###",
	)
	labels, forest, err := Scan(grid, 0)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// (2,1) has left label 0 and top label 1; it copies the top.
	if got := labels.At(2, 1); got != 1 {
		t.Errorf("label at (2,1): got %d, want 1", got)
	}
	same, err := forest.Same(0, 1)
	if err != nil {
		t.Fatalf("Same failed: %v", err)
	}
	if !same {
		t.Error("labels 0 and 1 should have been unioned")
	}
}

func TestScan_LabelOverflow(t *testing.T) {
	grid := gridFromRows(t, "#.#.#")

	_, _, err := Scan(grid, 2)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}

	if _, _, err := Scan(grid, 3); err != nil {
		t.Errorf("three labels should fit a limit of 3: %v", err)
	}
}

func TestCompact_UnknownLabel(t *testing.T) {
	grid := gridFromRows(t, "#.#")
	labels, _, err := Scan(grid, 0)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	// A forest that never saw label 1.
	forest := unionfind.New()
	forest.Add(0)

	_, err = Compact(labels, forest)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestCompact_DenseAndOrdered(t *testing.T) {
	grid := gridFromRows(t,
		"#..#..#",
		"#..#..#",
		"#######",
		".......",
		"##...##",
	)
	labels, count := compacted(t, grid)
	if count != 3 {
		t.Fatalf("components: got %d, want 3", count)
	}

	// The comb is discovered first, then the two feet left to right.
	checks := []struct {
		x, y int
		want int32
	}{
		{0, 0, 0}, {6, 0, 0}, {3, 2, 0},
		{0, 4, 1}, {1, 4, 1},
		{5, 4, 2}, {6, 4, 2},
		{1, 0, Unlabeled},
	}
	for _, c := range checks {
		if got := labels.At(c.x, c.y); got != c.want {
			t.Errorf("label at (%d,%d): got %d, want %d", c.x, c.y, got, c.want)
		}
	}
}

func TestRegions(t *testing.T) {
	grid := gridFromRows(t,
		"......",
		".##...",
		".#...#",
		".....#",
	)
	labels, count := compacted(t, grid)
	regions := Regions(labels, count)
	if len(regions) != 2 {
		t.Fatalf("regions: got %d, want 2", len(regions))
	}

	want := []Region{
		{Label: 0, MinX: 1, MaxX: 2, MinY: 1, MaxY: 2},
		{Label: 1, MinX: 5, MaxX: 5, MinY: 2, MaxY: 3},
	}
	for i := range want {
		if regions[i] != want[i] {
			t.Errorf("region %d: got %+v, want %+v", i, regions[i], want[i])
		}
	}
	if regions[1].Width() != 0 || regions[1].Height() != 1 {
		t.Errorf("region 1 size: got %dx%d, want 0x1", regions[1].Width(), regions[1].Height())
	}
}

// floodFill labels 4-connected ink with a plain BFS.
func floodFill(g *PixelGrid) ([]int, int) {
	comp := make([]int, g.Width*g.Height)
	for i := range comp {
		comp[i] = -1
	}
	n := 0
	for start := range comp {
		if comp[start] >= 0 || !g.ink[start] {
			continue
		}
		queue := []int{start}
		comp[start] = n
		for len(queue) > 0 {
			p := queue[0]
			queue = queue[1:]
			x, y := p%g.Width, p/g.Width
			for _, d := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= g.Width || ny >= g.Height {
					continue
				}
				q := ny*g.Width + nx
				if g.ink[q] && comp[q] < 0 {
					comp[q] = n
					queue = append(queue, q)
				}
			}
		}
		n++
	}
	return comp, n
}

func TestScan_PartitionMatchesFloodFill(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 20; trial++ {
		w, h := 10+rng.Intn(30), 10+rng.Intn(30)
		g := NewPixelGrid(w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g.SetInk(x, y, rng.Float64() < 0.45)
			}
		}

		labels, count := compacted(t, g)
		comp, want := floodFill(g)
		if count != want {
			t.Fatalf("trial %d: components got %d, want %d", trial, count, want)
		}

		// Every ink pixel has exactly one label, and labels and flood-fill
		// components are in one-to-one correspondence.
		toComp := make(map[int32]int)
		toLabel := make(map[int]int32)
		for i, c := range comp {
			l := labels.cells[i]
			if c < 0 {
				if l != Unlabeled {
					t.Fatalf("trial %d: background pixel %d labelled %d", trial, i, l)
				}
				continue
			}
			if l < 0 || int(l) >= count {
				t.Fatalf("trial %d: label %d out of range [0,%d)", trial, l, count)
			}
			if prev, ok := toComp[l]; ok && prev != c {
				t.Fatalf("trial %d: label %d spans components %d and %d", trial, l, prev, c)
			}
			if prev, ok := toLabel[c]; ok && prev != l {
				t.Fatalf("trial %d: component %d split into labels %d and %d", trial, c, prev, l)
			}
			toComp[l] = c
			toLabel[c] = l
		}
	}
}
