package ui

import "time"

// tickMsg asks the model to poll the controller
type tickMsg time.Time

// presetSavedMsg reports the result of a preset save
type presetSavedMsg struct {
	Path  string
	Error error
}
