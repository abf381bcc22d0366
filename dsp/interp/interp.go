package interp

// Lerp interpolates linearly from a (t=0) to b (t=1).
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// LerpInto writes the element-wise blend of a and b at t into dst.
// dst, a and b must have the same length; dst may alias a or b.
func LerpInto(dst, a, b []float64, t float64) {
	_ = dst[len(a)-1] // bounds check hint
	_ = b[len(a)-1]
	for i := range a {
		dst[i] = a[i] + t*(b[i]-a[i])
	}
}

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}
