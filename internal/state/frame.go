package state

import (
	"github.com/cwbudde/ooxverify/internal/oox"
	"github.com/cwbudde/ooxverify/internal/value"
)

// RetvalSlot is the reserved declarations key for a frame's return value,
// per spec.md §3's StackFrame definition.
const RetvalSlot = "retval"

// ThisSlot is the reserved declarations key for the implicit `this`.
const ThisSlot = "this"

// StackFrame is spec.md §3's per-call frame: the point to resume at on
// return, the (optional) assignment target for a deferred `lhs = call(...)`,
// the local environment, and a reference to the member being executed.
// Declarations is copy-on-write: With* never mutates the receiver.
type StackFrame struct {
	ReturnPoint   CFGContext
	Target        oox.Lhs // nil if the call's result is discarded
	Declarations  map[string]value.Value
	CurrentMember oox.MemberRef
}

// NewStackFrame creates a frame with an empty declaration environment.
func NewStackFrame(returnPoint CFGContext, target oox.Lhs, member oox.MemberRef) StackFrame {
	return StackFrame{
		ReturnPoint:   returnPoint,
		Target:        target,
		Declarations:  map[string]value.Value{},
		CurrentMember: member,
	}
}

// Get reads a local by name.
func (f StackFrame) Get(name string) (value.Value, bool) {
	v, ok := f.Declarations[name]
	return v, ok
}

// With returns a new frame with name bound to v, leaving f untouched.
func (f StackFrame) With(name string, v value.Value) StackFrame {
	decls := make(map[string]value.Value, len(f.Declarations)+1)
	for k, val := range f.Declarations {
		decls[k] = val
	}
	decls[name] = v
	f.Declarations = decls
	return f
}

// HandlerEntry is spec.md's GLOSSARY "handler stack" element: a try
// block's handler node and how many frames remain to pop to reach it.
type HandlerEntry struct {
	Handler     CFGContext
	PopsPending int
}

// CallStack is an immutable stack of StackFrame, oldest first.
type CallStack struct {
	frames []StackFrame
}

func NewCallStack() CallStack { return CallStack{} }

func (c CallStack) IsEmpty() bool { return len(c.frames) == 0 }
func (c CallStack) Depth() int    { return len(c.frames) }

// Top returns the most recent frame, or the zero value and false if empty.
func (c CallStack) Top() (StackFrame, bool) {
	if len(c.frames) == 0 {
		return StackFrame{}, false
	}
	return c.frames[len(c.frames)-1], true
}

// Push returns a new CallStack with f on top.
func (c CallStack) Push(f StackFrame) CallStack {
	frames := make([]StackFrame, len(c.frames)+1)
	copy(frames, c.frames)
	frames[len(c.frames)] = f
	return CallStack{frames: frames}
}

// Pop returns a new CallStack with the top frame removed, and the frame
// that was removed. Calling Pop on an empty stack returns the zero frame
// and an empty stack (callers must check IsEmpty first, per spec.md §3
// invariant (a): a live thread's call stack is never empty).
func (c CallStack) Pop() (CallStack, StackFrame) {
	if len(c.frames) == 0 {
		return c, StackFrame{}
	}
	top := c.frames[len(c.frames)-1]
	frames := make([]StackFrame, len(c.frames)-1)
	copy(frames, c.frames[:len(c.frames)-1])
	return CallStack{frames: frames}, top
}

// ReplaceTop returns a new CallStack with the top frame replaced by f.
func (c CallStack) ReplaceTop(f StackFrame) CallStack {
	if len(c.frames) == 0 {
		return c.Push(f)
	}
	frames := make([]StackFrame, len(c.frames))
	copy(frames, c.frames)
	frames[len(frames)-1] = f
	return CallStack{frames: frames}
}

// Frames returns the frames, oldest first.
func (c CallStack) Frames() []StackFrame {
	return c.frames
}

// HandlerStack is an immutable per-thread stack of HandlerEntry.
type HandlerStack struct {
	entries []HandlerEntry
}

func NewHandlerStack() HandlerStack { return HandlerStack{} }

func (h HandlerStack) IsEmpty() bool { return len(h.entries) == 0 }

// Top returns the innermost active handler.
func (h HandlerStack) Top() (HandlerEntry, bool) {
	if len(h.entries) == 0 {
		return HandlerEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h HandlerStack) Push(e HandlerEntry) HandlerStack {
	entries := make([]HandlerEntry, len(h.entries)+1)
	copy(entries, h.entries)
	entries[len(h.entries)] = e
	return HandlerStack{entries: entries}
}

func (h HandlerStack) Pop() HandlerStack {
	if len(h.entries) == 0 {
		return h
	}
	entries := make([]HandlerEntry, len(h.entries)-1)
	copy(entries, h.entries[:len(h.entries)-1])
	return HandlerStack{entries: entries}
}

// ReplaceTop returns a new HandlerStack with the top entry replaced.
func (h HandlerStack) ReplaceTop(e HandlerEntry) HandlerStack {
	if len(h.entries) == 0 {
		return h.Push(e)
	}
	entries := make([]HandlerEntry, len(h.entries))
	copy(entries, h.entries)
	entries[len(entries)-1] = e
	return HandlerStack{entries: entries}
}
