package watcher

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ev(path string, op Operation) FileEvent {
	return FileEvent{Path: path, Operation: op, Timestamp: time.Now()}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(50*time.Millisecond, quietLogger())
	defer d.Stop()

	// When: a single event is added
	d.Add(ev("/onto/pizza.yaml", OpModify))

	// Then: the event passes through after the debounce window
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, "/onto/pizza.yaml", events[0].Path)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced event")
	}
}

func TestDebouncer_Burst_Coalesces(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(100*time.Millisecond, quietLogger())
	defer d.Stop()

	// When: an editor writes the file several times in a row
	for i := 0; i < 5; i++ {
		d.Add(ev("/onto/pizza.yaml", OpModify))
		time.Sleep(10 * time.Millisecond)
	}

	// Then: one batch with one event
	select {
	case events := <-d.Output():
		require.Len(t, events, 1)
		assert.Equal(t, OpModify, events[0].Operation)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for debounced events")
	}
}

func TestDebouncer_CreateThenDelete_NoEvent(t *testing.T) {
	d := NewDebouncer(50*time.Millisecond, quietLogger())
	defer d.Stop()

	d.Add(ev("/onto/tmp.yaml", OpCreate))
	d.Add(ev("/onto/tmp.yaml", OpDelete))

	select {
	case events := <-d.Output():
		t.Fatalf("expected no batch, got %v", events)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name  string
		first Operation
		next  Operation
		want  Operation
		keep  bool
	}{
		{"create then modify stays create", OpCreate, OpModify, OpCreate, true},
		{"create then delete cancels", OpCreate, OpDelete, 0, false},
		{"modify then delete is delete", OpModify, OpDelete, OpDelete, true},
		{"modify then modify is modify", OpModify, OpModify, OpModify, true},
		{"delete then create is modify", OpDelete, OpCreate, OpModify, true},
		{"rename then create is modify", OpRename, OpCreate, OpModify, true},
		{"rename then delete is delete", OpRename, OpDelete, OpDelete, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged, keep := merge(tt.first, ev("f", tt.first), ev("f", tt.next))

			assert.Equal(t, tt.keep, keep)
			if keep {
				assert.Equal(t, tt.want, merged.Operation)
			}
		})
	}
}

func TestDebouncer_StopIsIdempotent(t *testing.T) {
	d := NewDebouncer(time.Second, quietLogger())
	d.Add(ev("f", OpModify))

	d.Stop()
	d.Stop()
	d.Add(ev("f", OpModify)) // ignored after stop

	_, ok := <-d.Output()
	assert.False(t, ok)
}
