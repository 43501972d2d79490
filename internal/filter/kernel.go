package filter

import (
	"math"
	"sync"
)

// GaussianKernel generates a normalized 1D Gaussian kernel whose standard
// deviation is radius, matching the CSS blur() radius.
//
// The kernel size is 2*ceil(3*radius)+1, which covers 99.7% of the
// distribution. For radius <= 0 it returns the identity kernel [1].
func GaussianKernel(radius float64) []float32 {
	if radius <= 0 {
		return []float32{1.0}
	}

	half := int(math.Ceil(radius * 3))
	size := half*2 + 1
	kernel := make([]float32, size)

	twoSigmaSq := 2 * radius * radius
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		v := math.Exp(-(x * x) / twoSigmaSq)
		kernel[i] = float32(v)
		sum += v
	}

	inv := float32(1 / sum)
	for i := range kernel {
		kernel[i] *= inv
	}
	return kernel
}

// BoxRadii returns the radii of n successive box blurs whose combination
// approximates a Gaussian of standard deviation sigma.
func BoxRadii(sigma float64, n int) []int {
	wIdeal := math.Sqrt(12*sigma*sigma/float64(n) + 1)
	wl := int(math.Floor(wIdeal))
	if wl%2 == 0 {
		wl--
	}
	wu := wl + 2

	fn := float64(n)
	fl := float64(wl)
	mIdeal := (12*sigma*sigma - fn*fl*fl - 4*fn*fl - 3*fn) / (-4*fl - 4)
	m := int(math.Round(mIdeal))

	radii := make([]int, n)
	for i := range radii {
		w := wu
		if i < m {
			w = wl
		}
		radii[i] = max((w-1)/2, 0)
	}
	return radii
}

// kernelCache holds Gaussian kernels keyed by radius in hundredths.
type kernelCache struct {
	mu     sync.RWMutex
	cache  map[int][]float32
	maxLen int
}

var defaultKernelCache = newKernelCache(64)

func newKernelCache(maxLen int) *kernelCache {
	return &kernelCache{
		cache:  make(map[int][]float32),
		maxLen: maxLen,
	}
}

func (c *kernelCache) get(radius float64) []float32 {
	key := int(math.Round(radius * 100))

	c.mu.RLock()
	kernel, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return kernel
	}

	kernel = GaussianKernel(float64(key) / 100)

	c.mu.Lock()
	if len(c.cache) >= c.maxLen {
		clear(c.cache)
	}
	c.cache[key] = kernel
	c.mu.Unlock()
	return kernel
}

// CachedGaussianKernel returns a shared Gaussian kernel for radius,
// quantized to 0.01 pixel. The returned slice must not be modified.
func CachedGaussianKernel(radius float64) []float32 {
	return defaultKernelCache.get(radius)
}
