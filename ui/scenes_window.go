package ui

import (
	"fmt"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/pkg/library"
	"github.com/doorhinge/wallscenes/util/log"
)

const noImageOption = "(none)"

// imageChoices maps select labels to image ids. Images sharing a display
// name get a numeric suffix so every label is unique.
type imageChoices struct {
	Labels  []string
	idOf    map[string]string
	labelOf map[string]string
}

func newImageChoices(images []library.Image) imageChoices {
	c := imageChoices{
		Labels:  []string{noImageOption},
		idOf:    map[string]string{noImageOption: ""},
		labelOf: make(map[string]string, len(images)),
	}
	seen := make(map[string]int, len(images))
	for _, img := range images {
		name := img.DisplayName
		if name == "" {
			name = img.FileName
		}
		seen[name]++
		label := name
		if seen[name] > 1 {
			label = fmt.Sprintf("%s (%d)", name, seen[name])
		}
		for c.idOf[label] != "" || label == noImageOption {
			seen[name]++
			label = fmt.Sprintf("%s (%d)", name, seen[name])
		}
		c.Labels = append(c.Labels, label)
		c.idOf[label] = img.ID
		c.labelOf[img.ID] = label
	}
	return c
}

// ID returns the image id for label; "" for none or unknown labels.
func (c imageChoices) ID(label string) string {
	return c.idOf[label]
}

// Label returns the label for an image id.
func (c imageChoices) Label(id string) (string, bool) {
	if id == "" {
		return noImageOption, true
	}
	l, ok := c.labelOf[id]
	return l, ok
}

// editorRow is one display line of the scene editor.
type editorRow struct {
	DisplayID string
	Label     string
	Connected bool
}

// editorRows lists connected displays first, then displays the scene has an
// assignment for that are not connected right now.
func editorRows(scene library.Scene, displays []display.Display) []editorRow {
	rows := make([]editorRow, 0, len(displays)+len(scene.Assignments))
	seen := make(map[string]bool, len(displays))
	for _, d := range displays {
		label := d.Label()
		if d.Primary {
			label += " (main)"
		}
		rows = append(rows, editorRow{DisplayID: d.ID, Label: label, Connected: true})
		seen[d.ID] = true
	}

	var offline []string
	for id, imageID := range scene.Assignments {
		if !seen[id] && imageID != "" {
			offline = append(offline, id)
		}
	}
	sort.Strings(offline)
	for _, id := range offline {
		rows = append(rows, editorRow{DisplayID: id, Label: id + " (not connected)"})
	}
	return rows
}

// scenesView holds the state of the scenes window.
type scenesView struct {
	sa  *ScenesApp
	win fyne.Window

	scenes   []library.Scene
	checked  map[string]bool
	list     *widget.List
	editing  library.Scene
	displays []display.Display

	nameEntry *widget.Entry
	allCheck  *widget.Check
	rowsBox   *fyne.Container
	editor    *fyne.Container
	deleteBtn *widget.Button
}

// ShowScenesWindow opens the scene list and editor.
func (sa *ScenesApp) ShowScenesWindow() {
	if sa.scenesWindow != nil {
		sa.scenesWindow.RequestFocus()
		return
	}

	var stopWatch func()
	w, g := sa.newWindow("Scenes", fyne.NewSize(820, 560), func() {
		sa.scenesWindow = nil
		if stopWatch != nil {
			stopWatch()
		}
	})
	sa.scenesWindow = w

	v := &scenesView{sa: sa, win: w, checked: make(map[string]bool)}
	w.SetContent(withBackground(g, v.build()))
	stopWatch = sa.watchStore(v.reload)
	w.Show()

	go func() {
		displays, err := sa.listDisplays()
		if err != nil {
			log.Printf("Scenes: cannot list displays: %v", err)
		}
		fyne.Do(func() {
			v.displays = displays
			v.renderRows()
		})
	}()
}

func (v *scenesView) build() fyne.CanvasObject {
	v.scenes = v.sa.store.Scenes()
	v.list = widget.NewList(
		func() int { return len(v.scenes) },
		func() fyne.CanvasObject {
			check := widget.NewCheck("", nil)
			label := widget.NewLabel("")
			label.Truncation = fyne.TextTruncateEllipsis
			return container.NewBorder(nil, nil, check, nil, label)
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(v.scenes) {
				return
			}
			sc := v.scenes[id]
			c := o.(*fyne.Container)
			label := c.Objects[0].(*widget.Label)
			check := c.Objects[1].(*widget.Check)
			label.SetText(sceneMenuLabel(sc))
			check.OnChanged = nil
			check.SetChecked(v.checked[sc.ID])
			check.OnChanged = func(on bool) {
				if on {
					v.checked[sc.ID] = true
				} else {
					delete(v.checked, sc.ID)
				}
				v.updateDeleteButton()
			}
		},
	)
	v.list.OnSelected = func(id widget.ListItemID) {
		if id < len(v.scenes) {
			v.edit(v.scenes[id])
		}
	}

	newBtn := widget.NewButtonWithIcon("New Scene", theme.ContentAddIcon(), func() {
		v.list.UnselectAll()
		v.edit(library.Scene{Name: "Untitled Scene"})
	})
	v.deleteBtn = widget.NewButtonWithIcon("Delete Selected", theme.DeleteIcon(), v.confirmDelete)
	v.deleteBtn.Importance = widget.DangerImportance
	v.updateDeleteButton()

	left := container.NewBorder(createSectionTitleLabel("Scenes"),
		container.NewGridWithColumns(2, newBtn, v.deleteBtn), nil, nil, v.list)

	v.buildEditor()
	split := container.NewHSplit(left, container.NewVScroll(v.editor))
	split.Offset = 0.35
	return split
}

func (v *scenesView) buildEditor() {
	v.nameEntry = widget.NewEntry()
	v.allCheck = widget.NewCheck("Set for all desktops (every Space)", nil)
	v.rowsBox = container.NewVBox()

	save := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() { v.save(false) })
	apply := widget.NewButtonWithIcon("Save and Apply", theme.ConfirmIcon(), func() { v.save(true) })
	apply.Importance = widget.HighImportance

	v.editor = container.NewVBox(
		createSettingTitleLabel("Name"),
		v.nameEntry,
		v.allCheck,
		createSettingDescriptionLabel("Updating every Space uses the propagation strategy chosen in Preferences."),
		widget.NewSeparator(),
		createSectionTitleLabel("Displays"),
		v.rowsBox,
		container.NewHBox(save, apply),
	)
	v.editor.Hide()
}

func (v *scenesView) edit(scene library.Scene) {
	v.editing = scene
	if v.editing.Assignments == nil {
		v.editing.Assignments = make(map[string]string)
	}
	v.nameEntry.SetText(scene.Name)
	v.allCheck.SetChecked(scene.SetForAllDesktops)
	v.renderRows()
	v.editor.Show()
}

// renderRows rebuilds the per-display selects for the scene being edited.
func (v *scenesView) renderRows() {
	v.rowsBox.RemoveAll()
	choices := newImageChoices(v.sa.store.Images())
	missing := make(map[string]bool)
	for _, id := range v.sa.store.MissingAssignments(v.editing) {
		missing[id] = true
	}

	rows := editorRows(v.editing, v.displays)
	if len(rows) == 0 {
		v.rowsBox.Add(createSettingDescriptionLabel("No displays detected."))
	}
	for _, row := range rows {
		displayID := row.DisplayID
		sel := widget.NewSelect(choices.Labels, func(label string) {
			if id := choices.ID(label); id != "" {
				v.editing.Assignments[displayID] = id
			} else {
				delete(v.editing.Assignments, displayID)
			}
		})
		current, _ := v.editing.Assignment(displayID)
		if label, ok := choices.Label(current); ok {
			sel.Selected = label
		}

		title := createSettingTitleLabel(row.Label)
		control := fyne.CanvasObject(sel)
		if missing[displayID] {
			warn := widget.NewLabelWithStyle("Assigned image is missing from the library", fyne.TextAlignLeading, fyne.TextStyle{Italic: true})
			warn.Importance = widget.WarningImportance
			control = container.NewVBox(sel, warn)
		}
		v.rowsBox.Add(NewSplitRow(title, control, 0.4))
	}
	v.rowsBox.Refresh()
}

func (v *scenesView) save(apply bool) {
	scene := v.editing
	scene.Name = v.nameEntry.Text
	scene.SetForAllDesktops = v.allCheck.Checked

	saved, err := v.sa.store.SaveScene(scene)
	if err != nil {
		showError(err, v.win)
		return
	}
	v.editing = saved
	if apply {
		v.sa.ApplyScene(saved.ID)
	}
}

func (v *scenesView) selectedIDs() []string {
	ids := make([]string, 0, len(v.checked))
	for id := range v.checked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (v *scenesView) updateDeleteButton() {
	if len(v.checked) == 0 {
		v.deleteBtn.Disable()
	} else {
		v.deleteBtn.Enable()
	}
}

func (v *scenesView) confirmDelete() {
	ids := v.selectedIDs()
	if len(ids) == 0 {
		return
	}
	msg := fmt.Sprintf("Delete %d scene(s)? Images stay in the library.", len(ids))
	dialog.NewConfirm("Delete Scenes", msg, func(ok bool) {
		if !ok {
			return
		}
		showError(v.sa.store.DeleteScenes(ids), v.win)
	}, v.win).Show()
}

// reload re-reads the scene list after a library change.
func (v *scenesView) reload() {
	v.scenes = v.sa.store.Scenes()
	known := make(map[string]bool, len(v.scenes))
	for _, sc := range v.scenes {
		known[sc.ID] = true
	}
	for id := range v.checked {
		if !known[id] {
			delete(v.checked, id)
		}
	}
	v.updateDeleteButton()
	v.list.Refresh()

	if v.editing.ID != "" && !known[v.editing.ID] {
		v.editing = library.Scene{}
		v.editor.Hide()
		return
	}
	if v.editor.Visible() {
		v.renderRows()
	}
}
