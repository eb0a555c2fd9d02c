package wizard

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/vchilikov/mediasort/internal/organizer"
)

// newProgress returns a progress callback drawing a bar on out, and a func to
// finish the bar once the run is over.
func newProgress(out io.Writer, total int) (func(organizer.ProgressEvent), func()) {
	if total <= 0 {
		return nil, func() {}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("Organizing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(out, "\n") }),
	)
	onProgress := func(e organizer.ProgressEvent) {
		_ = bar.Set(e.Processed)
	}
	return onProgress, func() { _ = bar.Finish() }
}
