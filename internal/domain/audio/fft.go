package audio

import (
	"math"
	"math/cmplx"
)

// fft computes the discrete Fourier transform of a real signal using the
// radix-2 Cooley-Tukey algorithm. The input length must be a power of two.
func fft(input []float64) []complex128 {
	buf := make([]complex128, len(input))
	for i, v := range input {
		buf[i] = complex(v, 0)
	}
	return recursiveFFT(buf)
}

func recursiveFFT(x []complex128) []complex128 {
	n := len(x)
	if n <= 1 {
		return x
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = x[2*i]
		odd[i] = x[2*i+1]
	}
	even = recursiveFFT(even)
	odd = recursiveFFT(odd)

	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		t := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		out[k] = even[k] + t*odd[k]
		out[k+n/2] = even[k] - t*odd[k]
	}
	return out
}

// hannWindow applies a Hann window in place to reduce spectral leakage.
func hannWindow(frame []float64) {
	n := len(frame)
	if n < 2 {
		return
	}
	for i := range frame {
		frame[i] *= 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
}
