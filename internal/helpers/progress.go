package helpers

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

type ProgressBar struct {
	Set   func(int)
	Add   func(int)
	Close func()
}

func CreateProgressBar(w io.Writer, total int, label string) ProgressBar {
	p := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionThrottle(200*time.Millisecond),
	)
	return ProgressBar{
		func(i int) {
			_ = p.Set(i)
		},
		func(i int) {
			_ = p.Add(i)
		},
		func() {
			_ = p.Finish()
		},
	}
}
