// Package clipboard copies assembled contexts to the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"

	"github.com/chriscorrea/qctx/internal/qerr"
)

// Sink accepts an assembled document
type Sink interface {
	Write(text string) error
}

// System writes to the OS clipboard
type System struct{}

// Write copies text to the clipboard, failing with CLIPBOARD_ERROR
func (System) Write(text string) error {
	if clipboard.Unsupported {
		return qerr.New(qerr.Clipboard, "no clipboard utility available (install xclip, xsel or wl-clipboard)")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return qerr.Wrap(qerr.Clipboard, err, "failed to copy to clipboard")
	}
	return nil
}

// Discard drops everything; used for --no-clipboard
type Discard struct{}

// Write does nothing
func (Discard) Write(string) error {
	return nil
}
