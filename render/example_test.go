package render_test

import (
	"fmt"
	"time"

	"github.com/cwbudde/algo-binaural/host"
	"github.com/cwbudde/algo-binaural/render"
)

func ExampleRenderer_Render() {
	r, err := render.New(render.DefaultConfig(), render.WithSeed(1))
	if err != nil {
		panic(err)
	}
	buf := make([]float64, 512)

	for _, t := range []time.Duration{3 * time.Second, 4 * time.Second} {
		now := host.InstantAt(t)
		frames := r.Render(buf, host.OutputCallbackInfo{Callback: now, Playback: now})
		p := r.Position()
		fmt.Printf("%d frames, %v, elapsed %v, x=%.2f\n", frames, r.State(), r.Elapsed(), p.X)
	}
	// Output:
	// 256 frames, running, elapsed 0s, x=1.00
	// 256 frames, running, elapsed 1s, x=-1.00
}
