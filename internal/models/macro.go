package models

import "time"

// Macro describes a macro file in the macro folder
type Macro struct {
	Name    string    `json:"name"`
	File    string    `json:"file"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	Lines   int       `json:"lines"`
	ModTime time.Time `json:"mod_time"`
}

// Empty reports whether the macro has no content
func (m Macro) Empty() bool {
	return m.Size == 0
}

// RingState is the undo/redo view of the active macro consumed by the shell
type RingState struct {
	Active    string `json:"active"`
	Path      string `json:"path"`
	Cursor    int    `json:"cursor"`
	Length    int    `json:"length"`
	CanUndo   bool   `json:"can_undo"`
	CanRedo   bool   `json:"can_redo"`
	Recording bool   `json:"recording"`
	Following bool   `json:"following"`
}
