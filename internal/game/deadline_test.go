package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deadline-game/deadline-server/internal/catalog"
)

func TestDeadlineDueDay(t *testing.T) {
	task := catalog.Task{ID: "t", Difficulty: 3, Window: 3}
	d := NewDeadline(task, 5)

	assert.Equal(t, 5, d.InitDay)
	assert.Equal(t, 8, d.DueDay)
	assert.Equal(t, 3, d.RemainingHours())
	assert.False(t, d.Done())
}

func TestDeadlineWorkCompletesExactlyOnce(t *testing.T) {
	task := catalog.Task{ID: "t", Difficulty: 4, Window: 3}
	d := NewDeadline(task, 1)

	done, err := d.Work(3)
	require.NoError(t, err)
	assert.False(t, done)

	done, err = d.Work(d.RemainingHours())
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, task.Difficulty, d.Progress)
}

func TestDeadlineOverworkLeavesProgressUntouched(t *testing.T) {
	task := catalog.Task{ID: "t", Difficulty: 2, Window: 3}
	d := NewDeadline(task, 1)

	_, err := d.Work(3)
	require.ErrorIs(t, err, ErrOverwork)
	assert.Equal(t, 0, d.Progress)

	done, err := d.Work(1)
	require.NoError(t, err)
	assert.False(t, done)

	_, err = d.Work(2)
	require.ErrorIs(t, err, ErrOverwork)
	assert.Equal(t, 1, d.Progress)
}
