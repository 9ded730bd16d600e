package syncer

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"roverd/internal/telemetry"
)

// fakeCopier records every attempt and fails on request.
type fakeCopier struct {
	calls []copyCall
	errs  map[int]error // attempt number (1-based) to error
}

type copyCall struct {
	source string
	dest   string
}

func (f *fakeCopier) Copy(ctx context.Context, source, dest string) error {
	f.calls = append(f.calls, copyCall{source, dest})
	if err, ok := f.errs[len(f.calls)]; ok {
		return err
	}
	return nil
}

// collectWriter gathers attempt rows.
type collectWriter struct {
	rows []telemetry.SyncRow
}

func (c *collectWriter) WriteSync(row telemetry.SyncRow) error {
	c.rows = append(c.rows, row)
	return nil
}

func TestLoop_TickCopiesSourceToDest(t *testing.T) {
	copier := &fakeCopier{}
	writer := &collectWriter{}
	l := New("pi@raspberrypi.local:~/rover/rover_data_log.json", ".", 5*time.Second, copier, writer)

	row := l.tick(context.Background())

	if len(copier.calls) != 1 {
		t.Fatalf("expected 1 copy attempt, got %d", len(copier.calls))
	}
	want := copyCall{"pi@raspberrypi.local:~/rover/rover_data_log.json", "."}
	if copier.calls[0] != want {
		t.Errorf("copy call = %+v, want %+v", copier.calls[0], want)
	}
	if !row.OK || row.Error != "" {
		t.Errorf("expected success row, got %+v", row)
	}
	if row.Attempt != 1 {
		t.Errorf("attempt = %d, want 1", row.Attempt)
	}
	if row.SessionID != l.SessionID() {
		t.Errorf("session = %q, want %q", row.SessionID, l.SessionID())
	}
}

func TestLoop_FailureReportedAndCadenceKept(t *testing.T) {
	copier := &fakeCopier{errs: map[int]error{2: errors.New("connection refused")}}
	writer := &collectWriter{}
	l := New("src", "dst", 5*time.Second, copier, writer)

	for i := 0; i < 3; i++ {
		l.tick(context.Background())
	}

	if len(writer.rows) != 3 {
		t.Fatalf("expected a row per attempt, got %d", len(writer.rows))
	}
	if !writer.rows[0].OK {
		t.Error("first attempt should succeed")
	}
	if writer.rows[1].OK || writer.rows[1].Error == "" {
		t.Errorf("second attempt should report its failure, got %+v", writer.rows[1])
	}
	if !writer.rows[2].OK {
		t.Error("third attempt should succeed again")
	}
	for i, row := range writer.rows {
		if row.Attempt != i+1 {
			t.Errorf("row %d attempt = %d", i, row.Attempt)
		}
	}
}

func TestLoop_OneAttemptPerInterval(t *testing.T) {
	copier := &fakeCopier{errs: map[int]error{2: errors.New("host unreachable")}}
	writer := &collectWriter{}
	ticks := make(chan time.Time)
	l := New("src", "dst", 5*time.Second, copier, writer, WithTicker(ticks))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	// Three intervals elapse: exactly three attempts, even though the
	// second one fails.
	for i := 0; i < 3; i++ {
		ticks <- time.Time{}
	}
	cancel()
	<-done

	if len(copier.calls) != 3 {
		t.Fatalf("attempts = %d, want one per interval (3)", len(copier.calls))
	}
	if len(writer.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(writer.rows))
	}
	if writer.rows[1].OK || !writer.rows[0].OK || !writer.rows[2].OK {
		t.Errorf("outcomes = %v %v %v, want ok/failed/ok",
			writer.rows[0].OK, writer.rows[1].OK, writer.rows[2].OK)
	}
}

func TestLoop_RunStopsOnCancel(t *testing.T) {
	copier := &fakeCopier{}
	writer := &collectWriter{}
	l := New("src", "dst", 10*time.Millisecond, copier, writer)

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		l.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
	if len(copier.calls) == 0 {
		t.Error("expected at least one attempt before cancellation")
	}
	if len(writer.rows) != len(copier.calls) {
		t.Errorf("rows (%d) should match attempts (%d)", len(writer.rows), len(copier.calls))
	}
}

func TestLoop_DefaultTimeout(t *testing.T) {
	l := New("src", "dst", 5*time.Second, &fakeCopier{}, nil)
	if l.timeout != 4500*time.Millisecond {
		t.Errorf("timeout = %v, want 4.5s", l.timeout)
	}

	// Short intervals keep at least a second per attempt.
	l = New("src", "dst", time.Second, &fakeCopier{}, nil)
	if l.timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", l.timeout)
	}

	l = New("src", "dst", 5*time.Second, &fakeCopier{}, nil, WithTimeout(2*time.Second))
	if l.timeout != 2*time.Second {
		t.Errorf("timeout = %v, want 2s", l.timeout)
	}
}

func TestLoop_AttemptTimeout(t *testing.T) {
	slow := copierFunc(func(ctx context.Context, source, dest string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	})
	writer := &collectWriter{}
	l := New("src", "dst", 5*time.Second, slow, writer, WithTimeout(20*time.Millisecond))

	start := time.Now()
	row := l.tick(context.Background())
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("tick blocked for %v despite attempt timeout", elapsed)
	}
	if row.OK {
		t.Error("timed out attempt should be reported as failed")
	}
}

type copierFunc func(ctx context.Context, source, dest string) error

func (f copierFunc) Copy(ctx context.Context, source, dest string) error {
	return f(ctx, source, dest)
}

func TestSCPCopierArgs(t *testing.T) {
	c := SCPCopier{}
	got := c.args("pi@raspberrypi.local:~/rover/rover_data_log.json", ".")
	want := []string{
		"-q",
		"-o", "BatchMode=yes",
		"-o", "ConnectTimeout=5",
		"pi@raspberrypi.local:~/rover/rover_data_log.json",
		".",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}

	c = SCPCopier{ConnectTimeout: 100 * time.Millisecond}
	got = c.args("a", "b")
	if got[4] != "ConnectTimeout=1" {
		t.Errorf("sub-second connect timeout should round up to 1, got %v", got[4])
	}
}
