/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/toothbrush/confluence-tree/hierarchy"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var _ hierarchy.Progress = (*progressBar)(nil)

// progressBar is a hierarchy.Progress whose total grows as the tree is discovered.
type progressBar struct {
	p     *mpb.Progress
	bar   *mpb.Bar
	total atomic.Int64
}

func newProgressBar(ctx context.Context, phaseName string) *progressBar {
	p := mpb.NewWithContext(ctx, mpb.WithWidth(64), mpb.WithOutput(os.Stderr))

	bar := p.AddBar(0,
		mpb.PrependDecorators(
			// display our name with one space on the right
			decor.Name(fmt.Sprintf("%s:", phaseName),
				decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
			decor.Spinner([]string{" /", " -", " \\", " |"}),
		),
	)

	return &progressBar{p: p, bar: bar}
}

func (pb *progressBar) Discovered(n int) {
	pb.bar.SetTotal(pb.total.Add(int64(n)), false)
}

func (pb *progressBar) Resolved() {
	pb.bar.Increment()
}

// Done completes the bar and waits for it to flush.  Safe to call on a nil bar.
func (pb *progressBar) Done() {
	if pb == nil {
		return
	}
	pb.bar.SetTotal(-1, true)
	pb.p.Wait()
}

// maybeProgress returns nil when --progress is off.
func maybeProgress(ctx context.Context, phaseName string) *progressBar {
	if !ShowProgress {
		return nil
	}
	return newProgressBar(ctx, phaseName)
}
