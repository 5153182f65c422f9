package refresh_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Johntang666/l2cache/refresh"
)

type mockReloader struct {
	mu    sync.Mutex
	keys  []int
	calls atomic.Int32
	err   error
}

func (m *mockReloader) Reload(_ context.Context, key int) (string, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()
	if m.err != nil && key%2 == 0 {
		return "", m.err
	}
	return "v", nil
}

func (m *mockReloader) reloaded() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := slices.Clone(m.keys)
	slices.Sort(keys)
	return keys
}

type errorSink struct {
	mu   sync.Mutex
	errs []error
}

func (s *errorSink) add(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *errorSink) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

func TestRefresher_Refresh(t *testing.T) {
	t.Parallel()

	reloadErr := errors.New("reload error")
	keysErr := errors.New("keys error")
	tests := []struct {
		name      string
		keys      refresh.KeysFunc[int]
		reloadErr error
		want      []int
		wantErr   error
	}{
		{
			name: "AllKeys",
			keys: refresh.StaticKeys(3, 1, 2),
			want: []int{1, 2, 3},
		},
		{
			name: "NoKeys",
			keys: refresh.StaticKeys[int](),
			want: nil,
		},
		{
			name:      "ReloadError",
			keys:      refresh.StaticKeys(1, 2, 3),
			reloadErr: reloadErr,
			want:      []int{1, 2, 3},
			wantErr:   reloadErr,
		},
		{
			name: "KeysError",
			keys: func(context.Context) ([]int, error) {
				return nil, keysErr
			},
			wantErr: keysErr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := &mockReloader{err: tt.reloadErr}
			r := refresh.New[int, string](m, tt.keys, time.Minute, nil, refresh.WithMaxGoroutines(2))
			err := r.Refresh(t.Context())
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil) != (err == nil) {
				t.Errorf("Refresh() error = %v, want %v", err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, m.reloaded()); diff != "" {
				t.Errorf("reloaded keys (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLaunchBackgroundRefresher(t *testing.T) {
	t.Parallel()

	m := &mockReloader{}
	var sink errorSink
	r := refresh.New[int, string](m, refresh.StaticKeys(1), 200*time.Millisecond, sink.add)

	ctx, cancel := context.WithCancel(t.Context())
	done := r.LaunchBackgroundRefresher(ctx)

	time.Sleep(100 * time.Millisecond)
	if got := m.calls.Load(); got != 1 {
		t.Errorf("expect to be refreshed at first time, got %d calls", got)
	}

	time.Sleep(200 * time.Millisecond)
	if got := m.calls.Load(); got != 2 {
		t.Errorf("expect to be refreshed at second time, got %d calls", got)
	}

	cancel()
	<-done
	if n := sink.len(); n != 0 {
		t.Errorf("should have no background errors, but got %d", n)
	}
}

func TestLaunchBackgroundRefresher_Error(t *testing.T) {
	t.Parallel()

	m := &mockReloader{err: errors.New("reload error")}
	var sink errorSink
	r := refresh.New[int, string](m, refresh.StaticKeys(2), 200*time.Millisecond, sink.add)
	r.LaunchBackgroundRefresher(t.Context())

	time.Sleep(100 * time.Millisecond)
	if n := sink.len(); n != 1 {
		t.Errorf("expect 1 background error, got %d", n)
	}

	time.Sleep(200 * time.Millisecond)
	if n := sink.len(); n != 2 {
		t.Errorf("expect 2 background errors, got %d", n)
	}
}

func TestNew_InvalidInterval(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("New() should panic on a non-positive interval")
		}
	}()
	refresh.New[int, string](&mockReloader{}, refresh.StaticKeys(1), 0, nil)
}
