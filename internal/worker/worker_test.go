package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApprover struct {
	calls atomic.Int32
	n     int
	err   error
}

func (f *fakeApprover) ApproveDue(context.Context) (int, error) {
	f.calls.Add(1)
	return f.n, f.err
}

type fakeRecorder struct {
	runs    int
	success []bool
}

func (f *fakeRecorder) JobRun(_ string, _ time.Duration, ok bool) {
	f.runs++
	f.success = append(f.success, ok)
}

func quietLog() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestApproveDue_RecordsOutcome(t *testing.T) {
	rec := &fakeRecorder{}
	ok := &fakeApprover{n: 2}
	w, err := New(ok, rec, time.Minute, quietLog())
	require.NoError(t, err)

	w.approveDue(context.Background())

	failing := &fakeApprover{err: errors.New("db down")}
	w.approver = failing
	w.approveDue(context.Background())

	assert.Equal(t, int32(1), ok.calls.Load())
	assert.Equal(t, int32(1), failing.calls.Load())
	assert.Equal(t, []bool{true, false}, rec.success)
}

func TestStart_RunsImmediately(t *testing.T) {
	a := &fakeApprover{}
	w, err := New(a, nil, time.Hour, quietLog())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Shutdown()

	assert.Eventually(t, func() bool { return a.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
