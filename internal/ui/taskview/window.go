package taskview

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Callbacks defines tracker actions wired to the timer engine.
type Callbacks struct {
	OnStart   func(taskID string)
	OnPause   func()
	OnResume  func()
	OnAdjust  func(minutes int)
	OnStop    func(description string)
	OnDiscard func()
}

// Window is the tracker control window.
type Window struct {
	window        fyne.Window
	callbacks     Callbacks
	taskEntry     *widget.Entry
	stateLabel    *widget.Label
	elapsedLabel  *widget.Label
	billableLabel *widget.Label
	startButton   *widget.Button
	pauseButton   *widget.Button
	resumeButton  *widget.Button
	stopButton    *widget.Button
	creditButton  *widget.Button
	debitButton   *widget.Button
	discardButton *widget.Button
}

// New creates the tracker window.
func New(app fyne.App, callbacks Callbacks) *Window {
	window := app.NewWindow("TimePunch")

	taskEntry := widget.NewEntry()
	taskEntry.SetPlaceHolder("task id")

	stateLabel := widget.NewLabel("idle")
	elapsedLabel := widget.NewLabelWithStyle("00:00:00", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true})
	billableLabel := widget.NewLabelWithStyle("00:00:00", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true, Bold: true})

	view := &Window{
		window:        window,
		callbacks:     callbacks,
		taskEntry:     taskEntry,
		stateLabel:    stateLabel,
		elapsedLabel:  elapsedLabel,
		billableLabel: billableLabel,
	}

	view.startButton = widget.NewButton("Start", func() {
		if view.callbacks.OnStart != nil {
			view.callbacks.OnStart(strings.TrimSpace(taskEntry.Text))
		}
	})
	view.pauseButton = widget.NewButton("Pause", func() {
		if view.callbacks.OnPause != nil {
			view.callbacks.OnPause()
		}
	})
	view.resumeButton = widget.NewButton("Resume", func() {
		if view.callbacks.OnResume != nil {
			view.callbacks.OnResume()
		}
	})
	view.stopButton = widget.NewButton("Stop...", view.PromptStop)
	view.creditButton = widget.NewButton("+6 min", func() {
		if view.callbacks.OnAdjust != nil {
			view.callbacks.OnAdjust(-6)
		}
	})
	view.debitButton = widget.NewButton("-6 min", func() {
		if view.callbacks.OnAdjust != nil {
			view.callbacks.OnAdjust(6)
		}
	})
	view.discardButton = widget.NewButton("Discard", func() {
		dialog.ShowConfirm("Discard timer",
			"Drop the local timer without saving? The open record is left untouched on the server.",
			func(confirmed bool) {
				if confirmed && view.callbacks.OnDiscard != nil {
					view.callbacks.OnDiscard()
				}
			}, window)
	})

	form := container.NewVBox(
		widget.NewLabelWithStyle("Tracker", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Task"), taskEntry, view.startButton),
		container.NewHBox(widget.NewLabel("State"), stateLabel),
		container.NewHBox(widget.NewLabel("Elapsed"), layout.NewSpacer(), elapsedLabel),
		container.NewHBox(widget.NewLabel("Billable"), layout.NewSpacer(), billableLabel),
		container.NewHBox(view.creditButton, view.debitButton),
	)

	buttons := container.NewHBox(view.pauseButton, view.resumeButton, view.stopButton, layout.NewSpacer(), view.discardButton)
	window.SetContent(container.NewBorder(nil, buttons, nil, nil, form))
	window.Resize(fyne.NewSize(380, 300))
	window.SetCloseIntercept(window.Hide)

	view.SetState("idle", false, false)
	return view
}

// Show displays the tracker window.
func (view *Window) Show() {
	view.window.Show()
	view.window.RequestFocus()
}

// SetState enables the controls valid in the current timer state.
func (view *Window) SetState(state string, active, paused bool) {
	view.stateLabel.SetText(state)

	view.startButton.Disable()
	view.pauseButton.Disable()
	view.resumeButton.Disable()
	view.stopButton.Disable()
	view.creditButton.Disable()
	view.debitButton.Disable()
	view.discardButton.Disable()

	if !active {
		view.startButton.Enable()
		view.taskEntry.Enable()
		return
	}

	view.taskEntry.Disable()
	view.stopButton.Enable()
	view.creditButton.Enable()
	view.debitButton.Enable()
	view.discardButton.Enable()
	if paused {
		view.resumeButton.Enable()
	} else {
		view.pauseButton.Enable()
	}
}

// SetTask shows the task the active timer is measuring.
func (view *Window) SetTask(taskID string) {
	view.taskEntry.SetText(taskID)
}

// SetTimes updates the elapsed and billable displays.
func (view *Window) SetTimes(elapsed, billable string) {
	view.elapsedLabel.SetText(elapsed)
	view.billableLabel.SetText(billable)
}

// PromptStop asks for a work description and hands it to OnStop once
// confirmed. Finalization is blocked until the operator confirms.
func (view *Window) PromptStop() {
	description := widget.NewMultiLineEntry()
	description.SetPlaceHolder("what did you work on?")

	items := []*widget.FormItem{widget.NewFormItem("Description", description)}
	dialog.ShowForm("Stop timer", "Save", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		if view.callbacks.OnStop != nil {
			view.callbacks.OnStop(description.Text)
		}
	}, view.window)
}

// ShowError surfaces a command failure to the operator.
func (view *Window) ShowError(err error) {
	dialog.ShowError(err, view.window)
}
