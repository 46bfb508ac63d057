package upscale

import (
	"image"
	"testing"
)

func TestTileSizeFor(t *testing.T) {
	tests := []struct {
		maxDim int
		want   int
	}{
		{1, 1},
		{64, 64},
		{200, 200},
		{800, 200},
		{801, 200},
		{1500, 200},
		{1501, 128},
		{2500, 128},
		{2501, 100},
		{4000, 100},
		{4001, 64},
		{20000, 64},
	}

	for _, tt := range tests {
		if got := TileSizeFor(tt.maxDim); got != tt.want {
			t.Errorf("TileSizeFor(%d) = %d, erwartet %d", tt.maxDim, got, tt.want)
		}
	}
}

func TestTileSizeForIsMonotonic(t *testing.T) {
	prev := TileSizeFor(801)
	for d := 801; d <= 10000; d += 37 {
		got := TileSizeFor(d)
		if got > prev {
			t.Fatalf("TileSizeFor(%d) = %d > %d", d, got, prev)
		}
		prev = got
	}
}

func TestTilesCoverImage(t *testing.T) {
	tests := []struct {
		name       string
		w, h, size int
		wantTiles  int
	}{
		{"exakt", 200, 200, 100, 4},
		{"rest rechts und unten", 250, 130, 100, 6},
		{"ein Pixel", 1, 1, 1, 1},
		{"breiter Streifen", 1000, 3, 200, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles := Tiles(tt.w, tt.h, tt.size, PrePadding)
			if len(tiles) != tt.wantTiles {
				t.Fatalf("Anzahl Tiles = %d, erwartet %d", len(tiles), tt.wantTiles)
			}

			covered := make([]int, tt.w*tt.h)
			for i, tile := range tiles {
				if tile.Index != i {
					t.Errorf("Tile %d hat Index %d", i, tile.Index)
				}
				if tile.Padded != tile.Core.Inset(-PrePadding) {
					t.Errorf("Tile %d: Padded = %v, erwartet Core um %d erweitert", i, tile.Padded, PrePadding)
				}
				for y := tile.Core.Min.Y; y < tile.Core.Max.Y; y++ {
					for x := tile.Core.Min.X; x < tile.Core.Max.X; x++ {
						covered[y*tt.w+x]++
					}
				}
			}

			for i, n := range covered {
				if n != 1 {
					t.Fatalf("Pixel %d wird %d mal abgedeckt, erwartet genau einmal", i, n)
				}
			}
		})
	}
}

func TestTilesRowMajor(t *testing.T) {
	tiles := Tiles(300, 200, 100, 0)
	want := []image.Point{{0, 0}, {100, 0}, {200, 0}, {0, 100}, {100, 100}, {200, 100}}
	for i, p := range want {
		if tiles[i].Core.Min != p {
			t.Errorf("Tile %d beginnt bei %v, erwartet %v", i, tiles[i].Core.Min, p)
		}
	}
}

func TestTilesEmpty(t *testing.T) {
	if tiles := Tiles(0, 10, 10, 10); tiles != nil {
		t.Errorf("Tiles bei Breite 0 = %v, erwartet nil", tiles)
	}
}

func TestMirror(t *testing.T) {
	tests := []struct {
		coord, max, want int
	}{
		{0, 10, 0},
		{5, 10, 5},
		{9, 10, 9},
		{-1, 10, 1},
		{-3, 10, 3},
		{10, 10, 8},
		{12, 10, 6},
		{-10, 5, 2}, // breiter als das Bild: gefaltet
		{7, 3, 1},
		{-4, 1, 0},
		{25, 1, 0},
	}

	for _, tt := range tests {
		if got := Mirror(tt.coord, tt.max); got != tt.want {
			t.Errorf("Mirror(%d, %d) = %d, erwartet %d", tt.coord, tt.max, got, tt.want)
		}
	}
}

func TestMirrorStaysInRange(t *testing.T) {
	for _, m := range []int{1, 2, 3, 7, 64} {
		for c := -3 * m; c < 4*m; c++ {
			if got := Mirror(c, m); got < 0 || got >= m {
				t.Fatalf("Mirror(%d, %d) = %d ausserhalb [0, %d)", c, m, got, m)
			}
		}
	}
}
