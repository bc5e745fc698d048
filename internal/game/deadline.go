package game

import (
	"fmt"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

// Deadline binds a catalog task to the day it was issued. DueDay is the
// day the task must be finished by; Progress grows monotonically from 0
// to the task's difficulty and never past it.
type Deadline struct {
	Task     catalog.Task
	InitDay  catalog.Day
	DueDay   catalog.Day
	Progress catalog.Hours
}

// NewDeadline creates a deadline for task anchored at initDay.
func NewDeadline(task catalog.Task, initDay catalog.Day) *Deadline {
	return &Deadline{
		Task:    task,
		InitDay: initDay,
		DueDay:  initDay + task.Window,
	}
}

// RemainingHours returns the hours of work left.
func (d *Deadline) RemainingHours() catalog.Hours {
	return d.Task.Difficulty - d.Progress
}

// Done reports whether the deadline is fully worked off.
func (d *Deadline) Done() bool {
	return d.RemainingHours() == 0
}

// Work applies hours of progress. It returns true when the work just
// completed the deadline. Spending more hours than remain is an
// ErrOverwork contract violation and leaves progress untouched.
func (d *Deadline) Work(hours catalog.Hours) (bool, error) {
	if hours > d.RemainingHours() {
		return false, fmt.Errorf("%w: %d requested, %d remaining on %q",
			ErrOverwork, hours, d.RemainingHours(), d.Task.ID)
	}
	d.Progress += hours
	return d.Done(), nil
}

func (d *Deadline) String() string {
	return fmt.Sprintf("%s (%d/%d, due day %d)", d.Task.ID, d.Progress, d.Task.Difficulty, d.DueDay)
}
