package state

// Thread is spec.md §3's per-thread record: its id, parent, current CFG
// position, call stack and handler stack. Thread is immutable; every
// mutating operation below returns a new Thread.
type Thread struct {
	ID           ThreadID
	Parent       ThreadID
	PC           CFGContext
	CallStack    CallStack
	HandlerStack HandlerStack
}

// NewThread creates a thread positioned at pc with a single initial frame.
func NewThread(id, parent ThreadID, pc CFGContext, initial StackFrame) Thread {
	return Thread{
		ID:           id,
		Parent:       parent,
		PC:           pc,
		CallStack:    NewCallStack().Push(initial),
		HandlerStack: NewHandlerStack(),
	}
}

// WithPC returns a new Thread positioned at pc.
func (t Thread) WithPC(pc CFGContext) Thread {
	t.PC = pc
	return t
}

// WithCallStack returns a new Thread with cs as its call stack.
func (t Thread) WithCallStack(cs CallStack) Thread {
	t.CallStack = cs
	return t
}

// WithHandlerStack returns a new Thread with hs as its handler stack.
func (t Thread) WithHandlerStack(hs HandlerStack) Thread {
	t.HandlerStack = hs
	return t
}

// IsAlive reports whether the thread still has frames on its call stack
// (spec.md §3 invariant (a)).
func (t Thread) IsAlive() bool {
	return !t.CallStack.IsEmpty()
}
