package main

import (
	"context"
	"log"
	"time"

	"timepunch/internal/core/engine"
	"timepunch/internal/platform"
	"timepunch/internal/remote"
	"timepunch/internal/storage"
	"timepunch/internal/ui/taskview"
	"timepunch/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const appName = "TimePunch"

const remoteCallTimeout = 30 * time.Second

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()
	log.Printf("holding instance lock on port %d", guard.Port())

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("settings: %v", err)
	}

	snapshotPath, err := storage.DefaultSnapshotPath(appName)
	if err != nil {
		log.Printf("snapshot path: %v", err)
		return
	}

	scope := storage.NewSnapshotStore(snapshotPath)
	store := remote.NewClient(settings.RemoteBaseURL, settings.APIToken)
	timer := engine.New(store, scope, engine.Config{TickInterval: settings.TickInterval})

	fyneApp := app.NewWithID("com.timepunch.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow("TimePunch")
	trayWindow.SetContent(widget.NewLabel("TimePunch is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	var view *taskview.Window
	view = taskview.New(fyneApp, taskview.Callbacks{
		OnStart: func(taskID string) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
				defer cancel()
				if err := timer.Start(ctx, taskID); err != nil {
					log.Printf("start timer: %v", err)
					fyne.Do(func() {
						view.ShowError(err)
					})
				}
			}()
		},
		OnPause: func() {
			if err := timer.Pause(); err != nil {
				view.ShowError(err)
			}
		},
		OnResume: func() {
			if err := timer.Resume(); err != nil {
				view.ShowError(err)
			}
		},
		OnAdjust: func(minutes int) {
			if err := timer.AdjustMinutes(minutes); err != nil {
				view.ShowError(err)
			}
		},
		OnStop: func(description string) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
				defer cancel()
				if err := timer.Stop(ctx, false, description); err != nil {
					log.Printf("stop timer: %v", err)
					fyne.Do(func() {
						view.ShowError(err)
					})
				}
			}()
		},
		OnDiscard: func() {
			if err := timer.Discard(); err != nil {
				view.ShowError(err)
			}
		},
	})

	var trayManager *tray.Manager
	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnOpenTracker: view.Show,
		OnTogglePause: func() {
			if timer.IsPaused() {
				if err := timer.Resume(); err != nil {
					log.Printf("resume timer: %v", err)
				}
			} else {
				if err := timer.Pause(); err != nil {
					log.Printf("pause timer: %v", err)
				}
			}
		},
		OnStop: func() {
			view.Show()
			view.PromptStop()
		},
		OnQuit: func() {
			// The snapshot stays in the durable scope so an active
			// timer is recovered on the next launch.
			timer.Shutdown()
			fyneApp.Quit()
		},
	})

	events := timer.Subscribe(8)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				applyEvent(event, view, trayManager)
			})
		}
	}()

	if err := timer.Recover(); err != nil {
		log.Printf("recover timer: %v", err)
	} else if timer.IsActive() {
		log.Printf("recovered in-progress timer for task %s", timer.Snapshot().TaskID)
	}

	view.Show()
	fyneApp.Run()
}

func applyEvent(event engine.Event, view *taskview.Window, trayManager *tray.Manager) {
	switch event.Type {
	case engine.EventStateChange:
		active := event.State != engine.StateIdle
		paused := event.State == engine.StatePaused
		trayManager.SetActive(active)
		if active {
			trayManager.SetPaused(paused)
			trayManager.SetStatus(event.Billable)
			view.SetTask(event.TaskID)
		}
		view.SetState(string(event.State), active, paused)
		view.SetTimes(event.Elapsed, event.Billable)
	case engine.EventTick:
		trayManager.SetStatus(event.Billable)
		view.SetTimes(event.Elapsed, event.Billable)
	}
}
