package worker

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_Line(t *testing.T) {
	tests := []struct {
		name     string
		want     []string
		wantNot  []string
		done     int
		skipped  int
		tasks    int
		perTask  int
		elapsed  time.Duration
	}{
		{
			name:    "halfway",
			tasks:   10,
			perTask: 65025,
			done:    5,
			elapsed: 10 * time.Second,
			want:    []string{"[███████████████░░░░░░░░░░░░░░░]", "325,125/650,250 colours", "32,512/sec", "ETA 10s"},
			wantNot: []string{"skipped", "done in"},
		},
		{
			name:    "finished",
			tasks:   4,
			perTask: 1000,
			done:    4,
			elapsed: 2 * time.Second,
			want:    []string{"4,000/4,000 colours", "2,000/sec", "done in 2s"},
			wantNot: []string{"░", "ETA"},
		},
		{
			name:    "cancelled tasks",
			tasks:   8,
			perTask: 100,
			done:    8,
			skipped: 6,
			elapsed: time.Second,
			want:    []string{"200/800 colours", "(6 skipped)"},
		},
		{
			name:    "no tasks",
			perTask: 1,
			want:    []string{"0/0 colours", "0/sec", "done in 0s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgress(tt.tasks, tt.perTask, false)
			p.done, p.skipped = tt.done, tt.skipped

			line := p.line(tt.elapsed)
			for _, s := range tt.want {
				assert.Contains(t, line, s)
			}
			for _, s := range tt.wantNot {
				assert.NotContains(t, line, s)
			}
		})
	}
}

func TestProgress_UpdateWritesWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, 10, true)
	p.SetOutput(&buf)

	p.Callback()(1, 4, 0)
	assert.True(t, strings.HasPrefix(buf.String(), "\r["), buf.String())
	assert.Contains(t, buf.String(), "10/40 colours")
	assert.Equal(t, 10, p.Scanned())

	p.Update(4, 4, 1)
	p.Done()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "30/40 colours (1 skipped)")
}

func TestProgress_Disabled(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(4, 10, false)
	p.SetOutput(&buf)

	p.Update(2, 4, 0)
	p.Done()

	assert.Zero(t, buf.Len())
	assert.Equal(t, 20, p.Scanned())
}

func TestProgress_Summary(t *testing.T) {
	p := NewProgress(255, 65025, false)
	p.start = time.Now().Add(-10 * time.Second)
	p.Update(255, 255, 0)

	summary := p.Summary()
	assert.Contains(t, summary, "Scanned 16,581,375 colours in 10s")
	assert.Contains(t, summary, "colours/sec")
	assert.NotContains(t, summary, "skipped")

	p.Update(255, 255, 5)
	assert.Contains(t, p.Summary(), "5 of 255 tasks skipped")
}

func TestProgress_PerTaskAtLeastOne(t *testing.T) {
	p := NewProgress(3, 0, false)
	p.Update(3, 3, 0)
	assert.Equal(t, 3, p.Scanned())
}
