// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

type Bar interface {
	Add(int) error
	Close() error
}

type BarBuilder func(total int, description string) Bar

type ProgressBar struct {
	*progressbar.ProgressBar
}

// NewItemsBar returns a progress bar counting processed items. It renders on
// stderr, stdout is reserved for command output.
func NewItemsBar(total int, description string) Bar {
	return &ProgressBar{
		ProgressBar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("items"),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetWidth(20),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetDescription(description),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(os.Stderr, "\n")
			}),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			})),
	}
}
