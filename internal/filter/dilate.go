package filter

import (
	"image"
	"math"
)

// Dilate returns a copy of src where every pixel is the maximum of src over
// a disc of the given radius. It turns glyph coverage into the coverage of
// a stroke of width 2*radius centered on the glyph outline.
func Dilate(src *image.Alpha, radius float64) *image.Alpha {
	dst := image.NewAlpha(src.Rect)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[y*src.Stride:y*src.Stride+w])
	}
	if radius <= 0 || w == 0 || h == 0 {
		return dst
	}

	r := int(math.Ceil(radius))
	rowMax := make([]uint8, w)
	deque := make([]int, 0, w)
	for dy := -r; dy <= r; dy++ {
		rem := radius*radius - float64(dy*dy)
		if rem < 0 {
			continue
		}
		hw := int(math.Sqrt(rem))
		for y := 0; y < h; y++ {
			sy := y + dy
			if sy < 0 || sy >= h {
				continue
			}
			slidingMax(src.Pix[sy*src.Stride:sy*src.Stride+w], hw, rowMax, deque)
			drow := dst.Pix[y*dst.Stride : y*dst.Stride+w]
			for x, v := range rowMax {
				if v > drow[x] {
					drow[x] = v
				}
			}
		}
	}
	return dst
}

// slidingMax writes to out the maximum of row over [x-hw, x+hw] for every x,
// using a monotonic index deque.
func slidingMax(row []uint8, hw int, out []uint8, deque []int) {
	n := len(row)
	deque = deque[:0]
	next := 0
	for x := 0; x < n; x++ {
		for ; next <= min(x+hw, n-1); next++ {
			for len(deque) > 0 && row[deque[len(deque)-1]] <= row[next] {
				deque = deque[:len(deque)-1]
			}
			deque = append(deque, next)
		}
		for deque[0] < x-hw {
			deque = deque[1:]
		}
		out[x] = row[deque[0]]
	}
}
