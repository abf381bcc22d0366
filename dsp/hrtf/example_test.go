package hrtf_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-binaural/dsp/hrtf"
	"github.com/cwbudde/algo-binaural/dsp/rotation"
)

func ExampleSpatializer_RenderFrame() {
	s, err := hrtf.NewSpatializer(44100, 2)
	if err != nil {
		panic(err)
	}

	// Source on the listener's right.
	p := rotation.Position{X: 1, Z: 0}
	out := make([]float64, s.Channels())

	var left, right float64
	for i := 0; i < 4096; i++ {
		x := 0.0
		if i%64 == 0 {
			x = 0.5
		}
		s.RenderFrame(x, p, out)
		left += out[0] * out[0]
		right += out[1] * out[1]
	}

	fmt.Println(len(out), right > left)
	// Output: 2 true
}

func ExampleSet_Analyze() {
	head, err := hrtf.NewSphericalHead(hrtf.WithAzimuthStep(90))
	if err != nil {
		panic(err)
	}
	set, err := head.HRIRSet(44100)
	if err != nil {
		panic(err)
	}

	cues, err := set.Analyze(256)
	if err != nil {
		panic(err)
	}
	for _, c := range cues {
		lead := "none"
		switch {
		case c.ITD < -1e-9:
			lead = "right"
		case c.ITD > 1e-9:
			lead = "left"
		}
		fmt.Printf("%3.0f° %.2f ms %s\n", c.Azimuth*180/math.Pi, math.Abs(c.ITD)*1000, lead)
	}

	// Output:
	//   0° 0.00 ms none
	//  90° 0.66 ms right
	// 180° 0.00 ms none
	// 270° 0.66 ms left
}
