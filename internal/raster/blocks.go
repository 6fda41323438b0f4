package raster

import "image"

// Connectivity selects which neighbours a flood fill may step to.
type Connectivity int

const (
	// Connectivity4 steps to the horizontal and vertical neighbours only.
	Connectivity4 Connectivity = 4
	// Connectivity8 also steps diagonally, merging strokes that touch at a corner.
	Connectivity8 Connectivity = 8
)

var (
	offsets4 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	offsets8 = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// Block is the padded bounding box of one connected component, in source
// bitmap pixel coordinates. Area is the component's pixel count.
type Block struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Area   int `json:"area"`
}

// Rect returns the block as an image rectangle.
func (b Block) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// DetectConfig controls block detection.
type DetectConfig struct {
	// Stride is the seed-scan step in pixels. Smaller strides find smaller
	// components at higher cost.
	Stride int

	// Connectivity is 4 or 8.
	Connectivity Connectivity

	// MinArea is the smallest component pixel count that produces a block.
	MinArea int

	// Padding is added on every side of the component's bounding box.
	Padding int

	// MinWidth and MinHeight drop blocks whose padded size does not exceed them.
	// Zero keeps every block that passes MinArea.
	MinWidth  int
	MinHeight int
}

// DefaultDetectConfig returns the page-level detection settings: no size floor.
func DefaultDetectConfig() DetectConfig {
	return DetectConfig{
		Stride:       5,
		Connectivity: Connectivity8,
		MinArea:      50,
		Padding:      5,
	}
}

// Detector finds content blocks in a bitmap.
type Detector struct {
	cfg DetectConfig
}

// NewDetector creates a detector, filling unset fields from DefaultDetectConfig.
func NewDetector(cfg DetectConfig) *Detector {
	def := DefaultDetectConfig()
	if cfg.Stride <= 0 {
		cfg.Stride = def.Stride
	}
	if cfg.Connectivity != Connectivity4 && cfg.Connectivity != Connectivity8 {
		cfg.Connectivity = def.Connectivity
	}
	if cfg.MinArea <= 0 {
		cfg.MinArea = def.MinArea
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	return &Detector{cfg: cfg}
}

// Config returns the effective configuration.
func (d *Detector) Config() DetectConfig {
	return d.cfg
}

// Detect scans img on the stride grid in row-major order and flood-fills
// every unvisited content seed. Blocks come back in seed discovery order.
func (d *Detector) Detect(img *image.NRGBA) []Block {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if img.Rect.Min != (image.Point{}) {
		img = FromImage(img)
	}

	visited := make([]bool, w*h)
	var blocks []Block
	for y := 0; y < h; y += d.cfg.Stride {
		for x := 0; x < w; x += d.cfg.Stride {
			if visited[y*w+x] {
				continue
			}
			r, g, b, _ := pixel(img, x, y)
			if IsBackground(r, g, b) {
				continue
			}
			blk, ok := d.fill(img, x, y, visited)
			if !ok {
				continue
			}
			if blk.Width <= d.cfg.MinWidth || blk.Height <= d.cfg.MinHeight {
				continue
			}
			blocks = append(blocks, blk)
		}
	}
	return blocks
}

// fill visits the component containing (sx,sy) with an explicit stack.
// Pixels are marked visited when pushed, so each is handled at most once.
func (d *Detector) fill(img *image.NRGBA, sx, sy int, visited []bool) (Block, bool) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	offsets := offsets8
	if d.cfg.Connectivity == Connectivity4 {
		offsets = offsets4
	}

	stack := []image.Point{{X: sx, Y: sy}}
	visited[sy*w+sx] = true
	minX, maxX, minY, maxY := sx, sx, sy, sy
	area := 0

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		area++
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for _, o := range offsets {
			nx, ny := p.X+o[0], p.Y+o[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			i := ny*w + nx
			if visited[i] {
				continue
			}
			r, g, b, _ := pixel(img, nx, ny)
			if IsBackground(r, g, b) {
				continue
			}
			visited[i] = true
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}

	if area < d.cfg.MinArea {
		return Block{}, false
	}

	pad := d.cfg.Padding
	x0, y0 := max(0, minX-pad), max(0, minY-pad)
	x1, y1 := min(w, maxX+pad+1), min(h, maxY+pad+1)
	return Block{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0, Area: area}, true
}
