package clocktest

import (
	"time"

	"github.com/sharnoff/abort/clock"
	"github.com/stretchr/testify/mock"
)

// Mock is a stretchr mock for a clock. The On* helpers make setting expectations a bit easier.
//
// AfterFunc never invokes the supplied callback; tests that need scheduled callbacks to run should
// use Manual instead, or capture the function via the mock.Call's Run hook.
type Mock struct {
	mock.Mock
}

var _ clock.Interface = (*Mock)(nil)

func (m *Mock) Now() time.Time {
	return m.Called().Get(0).(time.Time)
}

func (m *Mock) OnNow(v time.Time) *mock.Call {
	return m.On("Now").Return(v)
}

func (m *Mock) AfterFunc(d time.Duration, f func()) clock.Timer {
	return m.Called(d, f).Get(0).(clock.Timer)
}

// OnAfterFunc expects a call to AfterFunc with the given duration and any callback
func (m *Mock) OnAfterFunc(d time.Duration, t clock.Timer) *mock.Call {
	return m.On("AfterFunc", d, mock.AnythingOfType("func()")).Return(t)
}

// MockTimer is a stretchr mock for the clock.Timer interface
type MockTimer struct {
	mock.Mock
}

var _ clock.Timer = (*MockTimer)(nil)

func (m *MockTimer) Stop() bool {
	return m.Called().Bool(0)
}

func (m *MockTimer) OnStop(r bool) *mock.Call {
	return m.On("Stop").Return(r)
}
