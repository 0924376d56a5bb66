package main

import (
	"io"
	"sync"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/ZaguanLabs/miztl"
)

// progressBars renders one bar per processor.
type progressBars struct {
	progress *mpb.Progress
	bars     map[string]*mpb.Bar
	mu       sync.Mutex
}

func newProgressBars(w io.Writer) *progressBars {
	return &progressBars{
		progress: mpb.New(mpb.WithOutput(w), mpb.WithWidth(60)),
		bars:     make(map[string]*mpb.Bar),
	}
}

func (b *progressBars) update(p miztl.Progress) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bar, ok := b.bars[p.Processor]
	if !ok {
		bar = b.progress.AddBar(int64(p.Total),
			mpb.PrependDecorators(
				decor.Name(p.Processor, decor.WCSyncSpaceR),
			),
			mpb.AppendDecorators(
				decor.Percentage(decor.WC{W: 5}),
				decor.Counters(0, " | %d/%d"),
				decor.AverageETA(decor.ET_STYLE_GO, decor.WC{W: 6}, decor.WCSyncSpace),
			),
		)
		b.bars[p.Processor] = bar
	}

	if delta := int64(p.Current) - bar.Current(); delta > 0 {
		bar.IncrBy(int(delta))
	}
}

// wait stops bars left incomplete by a failed run and waits for rendering
// to finish.
func (b *progressBars) wait() {
	b.mu.Lock()
	for _, bar := range b.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	b.mu.Unlock()
	b.progress.Wait()
}
