package ui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"rag-chat-client/api"
	"rag-chat-client/chat"
	"rag-chat-client/utils"
)

// pendingFileRow shows one file queued for upload with a remove button
func pendingFileRow(path string, onRemove func()) fyne.CanvasObject {
	info := filepath.Base(path)
	if size, err := utils.GetFileSize(path); err == nil {
		info = fmt.Sprintf("%s (%s)", info, utils.FormatFileSize(size))
	}
	label := widget.NewLabel(info)
	label.Truncation = fyne.TextTruncateEllipsis

	remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), onRemove)
	remove.Importance = widget.LowImportance

	return container.NewBorder(nil, nil, widget.NewIcon(theme.FileIcon()), remove, label)
}

// KnowledgeView is the knowledge base management window: create, upload and delete
type KnowledgeView struct {
	app    *App
	window fyne.Window

	list      *widget.List
	nameEntry *widget.Entry
	pending   *fyne.Container
	status    *widget.Label

	kbs      []api.KnowledgeBase
	selected string
	files    []string
}

// NewKnowledgeView creates the view; the window is created on first Show
func NewKnowledgeView(app *App) *KnowledgeView {
	kv := &KnowledgeView{
		app:       app,
		nameEntry: widget.NewEntry(),
		pending:   container.NewVBox(),
		status:    widget.NewLabel(""),
	}
	kv.nameEntry.SetPlaceHolder("New knowledge base name")
	kv.status.Wrapping = fyne.TextWrapWord

	kv.list = widget.NewList(
		func() int { return len(kv.kbs) },
		func() fyne.CanvasObject { return widget.NewLabel("knowledge base") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(kv.kbs) {
				obj.(*widget.Label).SetText(chat.KnowledgeBaseLabel(kv.kbs[id]))
			}
		},
	)
	kv.list.OnSelected = func(id widget.ListItemID) {
		if id < len(kv.kbs) {
			kv.selected = kv.kbs[id].Name
		}
	}
	kv.list.OnUnselected = func(widget.ListItemID) { kv.selected = "" }
	return kv
}

// Show opens the window and reloads the list
func (kv *KnowledgeView) Show() {
	if kv.window == nil {
		kv.window = kv.app.fyneApp.NewWindow("Knowledge Bases")
		kv.window.SetContent(kv.build())
		kv.window.Resize(fyne.NewSize(560, 560))
		kv.window.SetCloseIntercept(kv.window.Hide)
		kv.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
			for _, u := range uris {
				kv.addFile(u.Path())
			}
		})
	}
	kv.window.Show()
	kv.window.RequestFocus()

	utils.SafeGo(kv.app.logger, "list knowledge bases", func() {
		if _, err := kv.app.knowledgeBases.List(kv.app.ctx); err != nil {
			kv.app.showError("load knowledge bases", err)
		}
	})
}

func (kv *KnowledgeView) build() fyne.CanvasObject {
	create := widget.NewButtonWithIcon("Create", theme.ContentAddIcon(), kv.create)
	createRow := container.NewBorder(nil, nil, nil, create, kv.nameEntry)

	del := widget.NewButtonWithIcon("Delete Selected", theme.DeleteIcon(), kv.delete)
	del.Importance = widget.DangerImportance

	addFile := widget.NewButtonWithIcon("Add File...", theme.FileIcon(), kv.chooseFile)
	upload := widget.NewButtonWithIcon("Upload to Selected", theme.UploadIcon(), kv.upload)
	upload.Importance = widget.HighImportance

	hint := widget.NewLabel("Add files one at a time or drop them on this window.")
	hint.Importance = widget.LowImportance
	hint.Wrapping = fyne.TextWrapWord

	bottom := container.NewVBox(
		del,
		widget.NewSeparator(),
		hint,
		kv.pending,
		container.NewHBox(addFile, upload),
		kv.status,
	)
	return container.NewBorder(createRow, bottom, nil, nil, kv.list)
}

// SetKnowledgeBases redraws the list; safe from any goroutine
func (kv *KnowledgeView) SetKnowledgeBases(kbs []api.KnowledgeBase) {
	fyne.Do(func() {
		kv.kbs = kbs
		found := false
		for i, kb := range kbs {
			if kb.Name == kv.selected {
				kv.list.Select(i)
				found = true
			}
		}
		if !found {
			kv.selected = ""
			kv.list.UnselectAll()
		}
		kv.list.Refresh()
	})
}

func (kv *KnowledgeView) create() {
	name := kv.nameEntry.Text
	utils.SafeGo(kv.app.logger, "create knowledge base", func() {
		if err := kv.app.knowledgeBases.Create(kv.app.ctx, name); err != nil {
			kv.app.showError("create knowledge base", err)
			return
		}
		fyne.Do(func() {
			kv.nameEntry.SetText("")
			kv.status.SetText(fmt.Sprintf("Created %q", strings.TrimSpace(name)))
		})
	})
}

func (kv *KnowledgeView) delete() {
	name := kv.selected
	if name == "" {
		kv.app.showInfo("Please select a knowledge base")
		return
	}
	utils.SafeGo(kv.app.logger, "delete knowledge base", func() {
		deleted, err := kv.app.knowledgeBases.Delete(kv.app.ctx, name)
		if err != nil {
			kv.app.showError("delete knowledge base", err)
			return
		}
		if deleted {
			fyne.Do(func() { kv.status.SetText(fmt.Sprintf("Deleted %q", name)) })
		}
	})
}

func (kv *KnowledgeView) chooseFile() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			kv.app.showError("open file", err)
			return
		}
		if reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()
		kv.addFile(path)
	}, kv.window)
	fd.Show()
}

func (kv *KnowledgeView) addFile(path string) {
	for _, f := range kv.files {
		if f == path {
			return
		}
	}
	kv.files = append(kv.files, path)
	kv.renderPending()
}

func (kv *KnowledgeView) renderPending() {
	objects := make([]fyne.CanvasObject, 0, len(kv.files))
	for _, f := range kv.files {
		path := f
		objects = append(objects, pendingFileRow(path, func() {
			for i, p := range kv.files {
				if p == path {
					kv.files = append(kv.files[:i], kv.files[i+1:]...)
					break
				}
			}
			kv.renderPending()
		}))
	}
	kv.pending.Objects = objects
	kv.pending.Refresh()
}

// upload sends every queued file to the selected knowledge base and reports the tally
func (kv *KnowledgeView) upload() {
	name := kv.selected
	files := append([]string(nil), kv.files...)
	kv.status.SetText(fmt.Sprintf("Uploading %d files...", len(files)))

	utils.SafeGo(kv.app.logger, "upload files", func() {
		report, err := kv.app.knowledgeBases.UploadFiles(kv.app.ctx, name, files)
		if err != nil {
			fyne.Do(func() { kv.status.SetText("") })
			kv.app.showError("upload files", err)
			return
		}

		failed := make([]string, 0, len(report.Failures))
		for path, ferr := range report.Failures {
			failed = append(failed, fmt.Sprintf("%s: %v", filepath.Base(path), ferr))
		}
		sort.Strings(failed)

		fyne.Do(func() {
			kv.files = nil
			kv.renderPending()
			kv.status.SetText(report.String())
		})
		msg := report.String()
		if len(failed) > 0 {
			msg += "\n\nFailed:\n" + strings.Join(failed, "\n")
		}
		kv.app.showInfo(msg)
	})
}
