package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushFillsDefaults(t *testing.T) {
	q := NewQueue(4)

	n := q.Push(Notification{Message: "saved"})
	require.NotEmpty(t, n.ID)
	require.Equal(t, LevelInfo, n.Level)
	require.Equal(t, 3*time.Second, n.Duration)

	e := q.Push(Notification{Level: LevelError, Message: "denied"})
	require.Equal(t, 4*time.Second, e.Duration)
}

func TestDrainEmptiesInOrder(t *testing.T) {
	q := NewQueue(4)
	q.Push(Notification{Message: "a"})
	q.Push(Notification{Message: "b"})

	got := q.Drain()
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Message)
	require.Equal(t, "b", got[1].Message)
	require.Zero(t, q.Len())
	require.Empty(t, q.Drain())
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Push(Notification{Message: "a"})
	q.Push(Notification{Message: "b"})
	q.Push(Notification{Message: "c"})

	got := q.Drain()
	require.Equal(t, []string{"b", "c"}, []string{got[0].Message, got[1].Message})
	require.Equal(t, 1, q.Dropped())
}

func TestQueueKeepsPromptsWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Push(Notification{Message: "a"})
	q.Push(Notification{Message: "question", Prompt: &Prompt{ID: "p1", Choices: []string{"yes", "no"}}})
	q.Push(Notification{Message: "b"})
	q.Push(Notification{Message: "c"})

	got := q.Drain()
	require.Len(t, got, 2)
	require.Equal(t, "question", got[0].Message)
	require.Equal(t, "c", got[1].Message)
	require.Equal(t, 2, q.Dropped())
}

func TestQueueFullOfPrompts(t *testing.T) {
	q := NewQueue(1)
	q.Push(Notification{Message: "first", Prompt: &Prompt{ID: "p1"}})
	q.Push(Notification{Message: "plain"})
	require.Equal(t, 1, q.Len())
	require.Equal(t, 1, q.Dropped())

	q.Push(Notification{Message: "second", Prompt: &Prompt{ID: "p2"}})
	got := q.Drain()
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].Message)
	require.Equal(t, "second", got[1].Message)
}
