package knnreader

import (
	"image"
)

// moore lists the 8 neighbor offsets clockwise (in image coordinates, y down)
// starting from west.
var moore = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func mooreIndex(d image.Point) int {
	for i, m := range moore {
		if m == d {
			return i
		}
	}
	return -1
}

// DetectBlobs finds the outer contour of every external 8-connected
// foreground region of a binarized image. Regions nested inside a hole of
// another region are not reported. Blobs come out in raster order of their
// top-left-most pixel.
func DetectBlobs(binary *image.Gray) []Blob {
	bounds := binary.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	isInk := func(x, y int) bool {
		return binary.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y == foreground
	}

	outside := markOutside(width, height, isInk)

	labels := make([]int32, width*height)
	var blobs []Blob
	var next int32

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if labels[y*width+x] != 0 || !isInk(x, y) {
				continue
			}
			next++
			external := floodFillRegion(labels, width, height, x, y, next, isInk, outside)
			if !external {
				continue
			}

			contour := traceBoundary(labels, width, height, image.Pt(x, y), next)
			contour = simplifyContour(contour)
			for i := range contour {
				contour[i] = contour[i].Add(bounds.Min)
			}
			blobs = append(blobs, NewBlob(contour))
		}
	}

	return blobs
}

// markOutside flood fills the background reachable from the image border.
// Background is 4-connected, the dual of 8-connected ink.
func markOutside(width, height int, isInk func(x, y int) bool) []bool {
	outside := make([]bool, width*height)
	var stack []image.Point

	push := func(x, y int) {
		if x < 0 || x >= width || y < 0 || y >= height {
			return
		}
		if outside[y*width+x] || isInk(x, y) {
			return
		}
		outside[y*width+x] = true
		stack = append(stack, image.Pt(x, y))
	}

	for x := 0; x < width; x++ {
		push(x, 0)
		push(x, height-1)
	}
	for y := 0; y < height; y++ {
		push(0, y)
		push(width-1, y)
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		push(p.X+1, p.Y)
		push(p.X-1, p.Y)
		push(p.X, p.Y+1)
		push(p.X, p.Y-1)
	}
	return outside
}

// floodFillRegion labels the 8-connected region containing (startX, startY)
// and reports whether it touches the image border or outside background.
func floodFillRegion(labels []int32, width, height, startX, startY int, label int32, isInk func(x, y int) bool, outside []bool) bool {
	external := false
	stack := []image.Point{{startX, startY}}
	labels[startY*width+startX] = label

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i, d := range moore {
			n := p.Add(d)
			if n.X < 0 || n.X >= width || n.Y < 0 || n.Y >= height {
				external = true
				continue
			}
			idx := n.Y*width + n.X
			if !isInk(n.X, n.Y) {
				// only edge neighbors can see outside background
				if i%2 == 0 && outside[idx] {
					external = true
				}
				continue
			}
			if labels[idx] != 0 {
				continue
			}
			labels[idx] = label
			stack = append(stack, n)
		}
	}

	return external
}

// traceBoundary walks the outer boundary of a labeled region clockwise with
// Moore-neighbor tracing. start must be the region's first pixel in raster
// order, so its west neighbor is not part of the region. Tracing stops when
// the walk is back at start and about to repeat its first step.
func traceBoundary(labels []int32, width, height int, start image.Point, label int32) []image.Point {
	in := func(p image.Point) bool {
		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			return false
		}
		return labels[p.Y*width+p.X] == label
	}

	contour := []image.Point{start}
	cur := start
	back := 0 // direction from cur to the last background pixel checked
	var second image.Point

	limit := 4*width*height + 8
	for steps := 0; steps < limit; steps++ {
		found := -1
		for i := 1; i <= 8; i++ {
			d := (back + i) % 8
			if in(cur.Add(moore[d])) {
				found = d
				break
			}
		}
		if found < 0 {
			// isolated pixel
			return contour
		}

		next := cur.Add(moore[found])
		if cur == start {
			if steps > 0 && next == second {
				return contour[:len(contour)-1]
			}
			if steps == 0 {
				second = next
			}
		}

		prev := cur.Add(moore[(found+7)%8])
		back = mooreIndex(prev.Sub(next))
		cur = next
		contour = append(contour, cur)
	}
	return contour
}

// simplifyContour keeps only the points where the walking direction changes.
func simplifyContour(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return pts
	}
	n := len(pts)
	out := make([]image.Point, 0, n)
	for i := range pts {
		prev := pts[(i+n-1)%n]
		next := pts[(i+1)%n]
		if pts[i].Sub(prev) != next.Sub(pts[i]) {
			out = append(out, pts[i])
		}
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}
