package filter

import (
	"image"
	"sync"
)

// maxExactRadius is the largest radius blurred with an exact Gaussian
// kernel. Larger radii use three box passes, which cost O(1) per pixel
// regardless of radius.
const maxExactRadius = 4.0

// Blur is a separable Gaussian blur with a radius (standard deviation) in
// target pixels. Pixels outside the image repeat the nearest edge pixel.
type Blur struct {
	Radius float64
}

// Apply implements Filter.
func (b Blur) Apply(img *image.RGBA) {
	if img == nil {
		return
	}
	blurPlanes(img.Pix, img.Rect.Dx(), img.Rect.Dy(), img.Stride, 4, b.Radius)
}

// BlurAlpha blurs an alpha plane in place.
func BlurAlpha(a *image.Alpha, radius float64) {
	if a == nil {
		return
	}
	blurPlanes(a.Pix, a.Rect.Dx(), a.Rect.Dy(), a.Stride, 1, radius)
}

// blurPlanes blurs an interleaved 8-bit buffer of ch channels in place.
func blurPlanes(pix []uint8, w, h, stride, ch int, radius float64) {
	if radius <= 0 || w == 0 || h == 0 {
		return
	}
	n := w * h * ch
	src := getBuffer(n)
	defer putBuffer(src)
	tmp := getBuffer(n)
	defer putBuffer(tmp)

	rowLen := w * ch
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+rowLen]
		buf := src[y*rowLen : (y+1)*rowLen]
		for i, v := range row {
			buf[i] = float32(v)
		}
	}

	if radius <= maxExactRadius {
		kernel := CachedGaussianKernel(radius)
		convolveRows(src, tmp, w, h, ch, kernel)
		convolveCols(tmp, src, w, h, ch, kernel)
	} else {
		for _, r := range BoxRadii(radius, 3) {
			boxRows(src, tmp, w, h, ch, r)
			boxCols(tmp, src, w, h, ch, r)
		}
	}

	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+rowLen]
		buf := src[y*rowLen : (y+1)*rowLen]
		for i, v := range buf {
			row[i] = clampUint8(v)
		}
	}
}

func convolveRows(src, dst []float32, w, h, ch int, kernel []float32) {
	half := len(kernel) / 2
	for y := 0; y < h; y++ {
		base := y * w * ch
		for x := 0; x < w; x++ {
			for c := 0; c < ch; c++ {
				var sum float32
				for k, weight := range kernel {
					kx := min(max(x+k-half, 0), w-1)
					sum += src[base+kx*ch+c] * weight
				}
				dst[base+x*ch+c] = sum
			}
		}
	}
}

func convolveCols(src, dst []float32, w, h, ch int, kernel []float32) {
	half := len(kernel) / 2
	rowLen := w * ch
	for y := 0; y < h; y++ {
		for i := 0; i < rowLen; i++ {
			var sum float32
			for k, weight := range kernel {
				ky := min(max(y+k-half, 0), h-1)
				sum += src[ky*rowLen+i] * weight
			}
			dst[y*rowLen+i] = sum
		}
	}
}

// boxRows applies a sliding-window box blur of radius r along rows.
func boxRows(src, dst []float32, w, h, ch, r int) {
	if r <= 0 {
		copy(dst, src)
		return
	}
	inv := 1 / float32(2*r+1)
	for y := 0; y < h; y++ {
		base := y * w * ch
		for c := 0; c < ch; c++ {
			at := func(x int) float32 {
				return src[base+min(max(x, 0), w-1)*ch+c]
			}
			var acc float32
			for i := -r; i <= r; i++ {
				acc += at(i)
			}
			for x := 0; x < w; x++ {
				dst[base+x*ch+c] = acc * inv
				acc += at(x+r+1) - at(x-r)
			}
		}
	}
}

// boxCols applies a sliding-window box blur of radius r along columns.
func boxCols(src, dst []float32, w, h, ch, r int) {
	if r <= 0 {
		copy(dst, src)
		return
	}
	inv := 1 / float32(2*r+1)
	rowLen := w * ch
	for i := 0; i < rowLen; i++ {
		at := func(y int) float32 {
			return src[min(max(y, 0), h-1)*rowLen+i]
		}
		var acc float32
		for k := -r; k <= r; k++ {
			acc += at(k)
		}
		for y := 0; y < h; y++ {
			dst[y*rowLen+i] = acc * inv
			acc += at(y+r+1) - at(y-r)
		}
	}
}

// floatBuffer wraps a slice for sync.Pool to avoid allocation warnings.
type floatBuffer struct {
	data []float32
}

var bufferPool = sync.Pool{
	New: func() any { return &floatBuffer{} },
}

// getBuffer returns a zeroed buffer of n elements.
func getBuffer(n int) []float32 {
	fb := bufferPool.Get().(*floatBuffer)
	if cap(fb.data) < n {
		bufferPool.Put(fb)
		return make([]float32, n)
	}
	buf := fb.data[:n]
	clear(buf)
	return buf
}

// putBuffer returns a buffer to the pool. Buffers above 64 MiB are
// dropped.
func putBuffer(buf []float32) {
	if cap(buf) <= 16*1024*1024 {
		bufferPool.Put(&floatBuffer{data: buf[:cap(buf)]})
	}
}
