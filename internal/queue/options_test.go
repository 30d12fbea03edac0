package queue

import (
	"testing"
	"time"
)

func TestPushOptions_DelaySeconds(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		opts PushOptions
		want int64
	}{
		{
			name: "zero value means immediate",
			opts: PushOptions{},
			want: 0,
		},
		{
			name: "whole second duration",
			opts: PushOptions{Delay: 30 * time.Second},
			want: 30,
		},
		{
			name: "sub-second amounts truncate",
			opts: PushOptions{Delay: 90*time.Second + 900*time.Millisecond},
			want: 90,
		},
		{
			name: "negative duration clamps to zero",
			opts: PushOptions{Delay: -5 * time.Second},
			want: 0,
		},
		{
			name: "future instant",
			opts: PushOptions{At: now.Add(2 * time.Minute)},
			want: 120,
		},
		{
			name: "past instant clamps to zero",
			opts: PushOptions{At: now.Add(-time.Hour)},
			want: 0,
		},
		{
			name: "present instant clamps to zero",
			opts: PushOptions{At: now},
			want: 0,
		},
		{
			name: "instant takes precedence over duration",
			opts: PushOptions{Delay: 5 * time.Second, At: now.Add(10 * time.Second)},
			want: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.opts.delaySeconds(now); got != tt.want {
				t.Errorf("Expected %d seconds, got %d", tt.want, got)
			}
		})
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			modify:  func(o *Options) {},
			wantErr: false,
		},
		{
			name:    "missing default queue",
			modify:  func(o *Options) { o.DefaultQueue = "" },
			wantErr: true,
		},
		{
			name:    "unknown exchange type",
			modify:  func(o *Options) { o.Exchange.Type = "random" },
			wantErr: true,
		},
		{
			name:    "priority above max priority",
			modify:  func(o *Options) { o.Priority = 11 },
			wantErr: true,
		},
		{
			name:    "priority at max priority",
			modify:  func(o *Options) { o.Priority = 10 },
			wantErr: false,
		},
		{
			name:    "negative cooldown",
			modify:  func(o *Options) { o.ErrorCooldown = -time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
