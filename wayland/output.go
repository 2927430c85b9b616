package wayland

import "github.com/rajveermalviya/go-wayland/wayland/client"

// output tracks one wl_output: current mode dimensions and scale.
type output struct {
	proxy *client.Output

	w, h  int
	scale int
	done  bool
}

func newOutput(proxy *client.Output) *output {
	o := &output{proxy: proxy, scale: 1}
	proxy.SetModeHandler(func(e client.OutputModeEvent) {
		if uint32(e.Flags)&uint32(client.OutputModeCurrent) == 0 {
			return
		}
		o.w = int(e.Width)
		o.h = int(e.Height)
	})
	proxy.SetScaleHandler(func(e client.OutputScaleEvent) {
		o.scale = int(e.Factor)
	})
	proxy.SetDoneHandler(func(client.OutputDoneEvent) {
		o.done = true
		slogger().Debug("output ready", "w", o.w, "h", o.h, "scale", o.scale)
	})
	return o
}

// outputSize returns the dimensions of the first output with a known
// current mode, or a 1920x1080 fallback when none reported yet.
func outputSize(outputs []*output) (int, int) {
	for _, o := range outputs {
		if o.w > 0 && o.h > 0 {
			return o.w, o.h
		}
	}
	return 1920, 1080
}
