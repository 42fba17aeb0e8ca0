package abort

import (
	"os"
	ossignal "os/signal" // rename so we can have function args named 'signal'
)

// NotifyOS returns a Controller that is triggered when the process receives any of the given OS
// signals, with the received os.Signal as the reason. Disposing the controller stops delivery of
// the signals to it.
//
// As with [os/signal.Notify], passing no signals relays every incoming signal.
func NotifyOS(sigs ...os.Signal) *Controller {
	return NewOSController(sigs)
}

// NewOSController is NotifyOS, with options for the returned Controller
func NewOSController(sigs []os.Signal, options ...Option) *Controller {
	c := NewController(options...)

	ch := make(chan os.Signal, 1)
	stop := make(chan struct{})
	ossignal.Notify(ch, sigs...)

	go func() {
		select {
		case signal := <-ch:
			c.Trigger(signal)
		case <-stop:
		}
		ossignal.Stop(ch)
	}()

	c.addCleanup(func() { close(stop) })
	return c
}
