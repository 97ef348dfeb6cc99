package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// splitLayout places two objects side by side, the first taking ratio of the width.
type splitLayout struct {
	ratio float32
}

func (s *splitLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var w, h float32
	for _, o := range objects {
		m := o.MinSize()
		w += m.Width
		h = fyne.Max(h, m.Height)
	}
	return fyne.NewSize(w, h)
}

func (s *splitLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) != 2 {
		return
	}
	firstWidth := size.Width * s.ratio
	objects[0].Resize(fyne.NewSize(firstWidth, objects[0].MinSize().Height))
	objects[0].Move(fyne.NewPos(0, 0))
	objects[1].Resize(fyne.NewSize(size.Width-firstWidth, objects[1].MinSize().Height))
	objects[1].Move(fyne.NewPos(firstWidth, 0))
}

// NewSplitRow lays out a label column and a control column.
func NewSplitRow(first, second fyne.CanvasObject, ratio float32) *fyne.Container {
	if ratio <= 0 || ratio >= 1 {
		ratio = 1.0 / 3
	}
	return container.New(&splitLayout{ratio: ratio}, first, second)
}

// createSectionTitleLabel creates a label for a section title
func createSectionTitleLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.HighImportance
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// createSettingTitleLabel creates a label for a setting title
func createSettingTitleLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.TextStyle = fyne.TextStyle{Bold: true}
	return label
}

// createSettingDescriptionLabel creates a label for a setting description
func createSettingDescriptionLabel(desc string) *widget.Label {
	label := widget.NewLabel(desc)
	label.Wrapping = fyne.TextWrapWord
	label.Importance = widget.LowImportance
	label.TextStyle = fyne.TextStyle{Italic: true}
	return label
}
