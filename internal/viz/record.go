package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/musclemesh/internal/dynamo"
)

// Recorder collects canvas snapshots into an animated GIF.
type Recorder struct {
	// Delay between frames in 100ths of a second.
	Delay  int
	Limit  int
	frames []*image.Paletted
}

func NewRecorder(fps int) *Recorder {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	return &Recorder{Delay: delay, Limit: 1800}
}

// Capture appends the current canvas. Frames past Limit are dropped.
func (r *Recorder) Capture(c *Canvas) {
	if r.Limit > 0 && len(r.frames) >= r.Limit {
		return
	}
	r.frames = append(r.frames, c.Image(8, 16, color.White, color.Black))
}

func (r *Recorder) Len() int { return len(r.frames) }

func (r *Recorder) Reset() { r.frames = r.frames[:0] }

func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded: %w", dynamo.ErrEmptyRun)
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.Delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
