package transport

import (
	"Go2NetWindow/internal/engine/feature"
	"Go2NetWindow/internal/model"
)

// LinkWriter sends each window's feature vector over a Link as one line.
// It implements the model.Writer interface.
type LinkWriter struct {
	link Link
}

// NewLinkWriter creates a writer for link.
func NewLinkWriter(link Link) model.Writer {
	return &LinkWriter{link: link}
}

func (w *LinkWriter) Name() string {
	return "link:" + w.link.Name()
}

func (w *LinkWriter) Write(win *model.Window) error {
	return w.link.WriteLine(feature.FormatLine(win.Features))
}
