package abort

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// StackTrace is a call stack captured at the point a signal was aborted.
//
// Parent allows linking traces across goroutines: e.g. a deferred trigger's trace may be given the
// trace of the TriggerAfter call that scheduled it.
type StackTrace struct {
	Frames []StackFrame
	Parent *StackTrace
}

// StackFrame is a single entry in a StackTrace. Any of its fields may be empty if the runtime
// couldn't provide them.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// GetStackTrace returns the stack of the calling goroutine, skipping the innermost skip frames
// above the caller of GetStackTrace.
func GetStackTrace(parent *StackTrace, skip uint) StackTrace {
	return StackTrace{Frames: getFrames(skip + 1), Parent: parent}
}

// String formats the trace similarly to a goroutine dump, with parents appended after the
// frames of their child.
func (st StackTrace) String() string {
	var b strings.Builder

	for cur := &st; cur != nil; cur = cur.Parent {
		if len(cur.Frames) == 0 {
			b.WriteString("<empty stack>\n")
			continue
		}

		for _, f := range cur.Frames {
			writeFrame(&b, f)
		}
	}

	return b.String()
}

func writeFrame(b *strings.Builder, f StackFrame) {
	if f.Function == "" {
		b.WriteString("<unknown function>")
	} else {
		b.WriteString(f.Function)
		b.WriteString("(...)")
	}

	b.WriteString("\n\t")

	if f.File == "" {
		b.WriteString("<unknown file>")
	} else {
		b.WriteString(f.File)
		if f.Line != 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(f.Line))
		}
	}

	b.WriteByte('\n')
}

var pcBufPool = sync.Pool{
	New: func() any {
		buf := make([]uintptr, 64)
		return &buf
	},
}

func putPCBuffer(buf *[]uintptr) {
	// don't keep buffers grown for unusually deep stacks
	if len(*buf) <= 1024 {
		pcBufPool.Put(buf)
	}
}

func getFrames(skip uint) []StackFrame {
	// skip runtime.Callers and getFrames itself
	skip += 2

	pcBuf := pcBufPool.Get().(*[]uintptr)
	defer putPCBuffer(pcBuf)

	// grow the buffer until the whole stack fits
	var n int
	for {
		n = runtime.Callers(int(skip), *pcBuf)
		if n < len(*pcBuf) {
			break
		}
		*pcBuf = make([]uintptr, 2*len(*pcBuf))
	}
	if n == 0 {
		return nil
	}

	iter := runtime.CallersFrames((*pcBuf)[:n])
	frames := make([]StackFrame, 0, n)
	for more := true; more; {
		var frame runtime.Frame
		frame, more = iter.Next()

		frames = append(frames, StackFrame{
			Function: frame.Function,
			File:     frame.File,
			Line:     frame.Line,
		})
	}

	return frames
}
