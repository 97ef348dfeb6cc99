package ui

import (
	"fmt"
	"image"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/doorhinge/wallscenes/util/log"
)

const allImagesOption = "All images"

// libraryView holds the state of the library window.
type libraryView struct {
	sa     *ScenesApp
	win    fyne.Window
	grid   *widget.GridWrap
	filter *widget.Select

	group    string
	visible  []library.Image
	selected string

	nameEntry   *widget.Entry
	groupsEntry *widget.Entry
	info        *widget.Label
	preview     *canvas.Image
	detail      *fyne.Container
}

// ShowLibraryWindow opens the image library, or focuses it if already open.
func (sa *ScenesApp) ShowLibraryWindow() {
	if sa.libraryWindow != nil {
		sa.libraryWindow.RequestFocus()
		return
	}

	var stopWatch func()
	w, g := sa.newWindow("Library", fyne.NewSize(900, 600), func() {
		sa.libraryWindow = nil
		if stopWatch != nil {
			stopWatch()
		}
	})
	sa.libraryWindow = w

	v := &libraryView{sa: sa, win: w}
	w.SetContent(withBackground(g, v.build()))
	w.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		paths := make([]string, 0, len(uris))
		for _, u := range uris {
			paths = append(paths, u.Path())
		}
		v.importPaths(paths)
	})
	stopWatch = sa.watchStore(func() { v.reload() })
	w.Show()
}

// watchStore runs fn on the UI goroutine after each library change until the
// returned stop func is called.
func (sa *ScenesApp) watchStore(fn func()) (stop func()) {
	done := make(chan struct{})
	go func() {
		ch := sa.store.GetUpdateChannel()
		for {
			select {
			case <-done:
				return
			case <-sa.ctx.Done():
				return
			case <-ch:
				ch = sa.store.GetUpdateChannel()
				fyne.Do(fn)
			}
		}
	}()
	return func() { close(done) }
}

func (v *libraryView) build() fyne.CanvasObject {
	v.filter = widget.NewSelect(groupOptions(v.sa.store.Groups()), func(s string) {
		if s == allImagesOption {
			s = ""
		}
		v.group = s
		v.reload()
	})
	v.filter.Selected = allImagesOption

	v.grid = widget.NewGridWrap(
		func() int { return len(v.visible) },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromResource(theme.FileImageIcon())
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSize(120, 120))
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			label.Alignment = fyne.TextAlignCenter
			return container.NewBorder(nil, label, nil, nil, img)
		},
		func(id widget.GridWrapItemID, o fyne.CanvasObject) {
			if id >= len(v.visible) {
				return
			}
			item := v.visible[id]
			c := o.(*fyne.Container)
			img := c.Objects[0].(*canvas.Image)
			label := c.Objects[1].(*widget.Label)
			label.SetText(item.DisplayName)
			v.setThumbnail(img, item.ID)
		},
	)
	v.grid.OnSelected = func(id widget.GridWrapItemID) {
		if id < len(v.visible) {
			v.selectImage(v.visible[id].ID)
		}
	}

	importBtn := widget.NewButtonWithIcon("Import Files", theme.FileImageIcon(), v.showImportFile)
	folderBtn := widget.NewButtonWithIcon("Import Folder", theme.FolderOpenIcon(), v.showImportFolder)
	toolbar := container.NewBorder(nil, nil, nil,
		container.NewHBox(importBtn, folderBtn),
		NewSplitRow(widget.NewLabel("Group"), v.filter, 0.25))

	v.buildDetail()
	v.reload()

	left := container.NewBorder(toolbar, nil, nil, nil, v.grid)
	split := container.NewHSplit(left, v.detail)
	split.Offset = 0.68
	return split
}

func (v *libraryView) setThumbnail(img *canvas.Image, id string) {
	if thumb, ok := v.sa.thumbs.Peek(id); ok {
		img.Image = thumb
		img.Resource = nil
		img.Refresh()
		return
	}
	img.Image = nil
	img.Resource = theme.FileImageIcon()
	img.Refresh()

	path, err := v.sa.store.ImagePath(id)
	if err != nil {
		return
	}
	go func() {
		if _, err := v.sa.thumbs.Get(v.sa.ctx, id, path); err != nil {
			log.Debugf("Library: thumbnail for %s: %v", id, err)
			return
		}
		fyne.Do(func() { v.grid.Refresh() })
	}()
}

func (v *libraryView) buildDetail() {
	v.preview = canvas.NewImageFromImage(nil)
	v.preview.FillMode = canvas.ImageFillContain
	v.preview.SetMinSize(fyne.NewSize(220, 160))

	v.nameEntry = widget.NewEntry()
	v.nameEntry.SetPlaceHolder("Display name")
	v.groupsEntry = widget.NewEntry()
	v.groupsEntry.SetPlaceHolder("nature, dark, work")
	v.info = createSettingDescriptionLabel("Select an image")

	save := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), v.saveSelected)
	remove := widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), v.confirmDelete)
	remove.Importance = widget.DangerImportance

	v.detail = container.NewVBox(
		createSectionTitleLabel("Image"),
		v.preview,
		v.info,
		createSettingTitleLabel("Name"),
		v.nameEntry,
		createSettingTitleLabel("Groups"),
		createSettingDescriptionLabel("Comma separated"),
		v.groupsEntry,
		container.NewHBox(save, remove),
	)
	v.detail.Hide()
}

// reload re-reads the library into the grid, keeping the selection if the
// image still exists.
func (v *libraryView) reload() {
	groups := v.sa.store.Groups()
	v.filter.Options = groupOptions(groups)
	if v.group != "" && !contains(groups, v.group) {
		v.group = ""
		v.filter.Selected = allImagesOption
	}
	v.filter.Refresh()

	v.visible = filterImages(v.sa.store.Images(), v.group)
	v.grid.UnselectAll()
	v.grid.Refresh()

	if _, ok := v.sa.store.Image(v.selected); !ok {
		v.selected = ""
		v.detail.Hide()
		return
	}
	v.selectImage(v.selected)
}

func (v *libraryView) selectImage(id string) {
	img, ok := v.sa.store.Image(id)
	if !ok {
		return
	}
	v.selected = id
	v.nameEntry.SetText(img.DisplayName)
	v.groupsEntry.SetText(strings.Join(img.Groups, ", "))
	v.info.SetText(img.FileName)

	v.preview.Image = nil
	v.preview.Refresh()
	if path, err := v.sa.store.ImagePath(id); err == nil {
		if w, h, err := v.sa.store.FileManager().GetDimensions(path); err == nil {
			v.info.SetText(fmt.Sprintf("%s  %dx%d", img.FileName, w, h))
		}
		go func() {
			thumb, err := v.sa.thumbs.Get(v.sa.ctx, id, path)
			if err != nil {
				return
			}
			fyne.Do(func() { v.showPreview(id, thumb) })
		}()
	}
	v.detail.Show()
}

func (v *libraryView) showPreview(id string, thumb image.Image) {
	if v.selected != id {
		return
	}
	v.preview.Image = thumb
	v.preview.Refresh()
}

func (v *libraryView) saveSelected() {
	if v.selected == "" {
		return
	}
	if err := v.sa.store.RenameImage(v.selected, v.nameEntry.Text); err != nil {
		showError(err, v.win)
		return
	}
	if err := v.sa.store.SetImageGroups(v.selected, parseGroups(v.groupsEntry.Text)); err != nil {
		showError(err, v.win)
	}
}

func (v *libraryView) confirmDelete() {
	id := v.selected
	img, ok := v.sa.store.Image(id)
	if !ok {
		return
	}
	msg := fmt.Sprintf("Delete %q from the library? Scenes using it will show a missing image.", img.DisplayName)
	dialog.NewConfirm("Delete Image", msg, func(ok bool) {
		if !ok {
			return
		}
		showError(v.sa.store.DeleteImage(id), v.win)
	}, v.win).Show()
}

func (v *libraryView) showImportFile() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			showError(err, v.win)
			return
		}
		if r == nil {
			return
		}
		path := r.URI().Path()
		r.Close()
		v.importPaths([]string{path})
	}, v.win)
	d.SetFilter(storage.NewExtensionFileFilter(library.SupportedExtensions))
	d.Show()
}

func (v *libraryView) showImportFolder() {
	dialog.NewFolderOpen(func(lu fyne.ListableURI, err error) {
		if err != nil {
			showError(err, v.win)
			return
		}
		if lu == nil {
			return
		}
		children, err := lu.List()
		if err != nil {
			showError(err, v.win)
			return
		}
		paths := make([]string, 0, len(children))
		for _, u := range children {
			paths = append(paths, u.Path())
		}
		v.importPaths(paths)
	}, v.win).Show()
}

// importPaths imports the supported files among paths in the background.
func (v *libraryView) importPaths(paths []string) {
	paths = supportedPaths(paths)
	if len(paths) == 0 {
		dialog.ShowInformation("Import", "No supported image files were selected.", v.win)
		return
	}
	go func() {
		imported, err := v.sa.store.ImportFiles(v.sa.ctx, paths)
		log.Printf("Library: imported %d of %d files", len(imported), len(paths))
		if err != nil {
			fyne.Do(func() {
				showError(fmt.Errorf("imported %d of %d files: %w", len(imported), len(paths), err), v.win)
			})
		}
	}()
}

// groupOptions returns the filter choices for groups.
func groupOptions(groups []string) []string {
	return append([]string{allImagesOption}, groups...)
}

// filterImages returns the images in group, or all of them when group is empty.
func filterImages(images []library.Image, group string) []library.Image {
	if group == "" {
		return images
	}
	out := make([]library.Image, 0, len(images))
	for _, img := range images {
		if img.InGroup(group) {
			out = append(out, img)
		}
	}
	return out
}

// parseGroups splits a comma separated tag list.
func parseGroups(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func supportedPaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if library.IsSupported(p) {
			out = append(out, p)
		}
	}
	return out
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
