package ndecor

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	debugLock     sync.RWMutex
	debug         uint32
	debugOutput   string
	debugOutputMu sync.Mutex
)

var (
	debuglnHook func(...any)
	debugfHook  func(string, ...any)
)

func debugEnabled() bool {
	return atomic.LoadUint32(&debug) == 1
}

func debugln(stuff ...any) {
	if !debugEnabled() {
		return
	}

	debugOutputMu.Lock()
	if debuglnHook != nil {
		debuglnHook(stuff...)
	} else {
		debugOutput += fmt.Sprintln(stuff...)
	}
	debugOutputMu.Unlock()
}

func debugf(format string, stuff ...any) {
	if !debugEnabled() {
		return
	}

	debugOutputMu.Lock()
	if debugfHook != nil {
		debugfHook(format, stuff...)
	} else {
		debugOutput += fmt.Sprintf(format+"\n", stuff...)
	}
	debugOutputMu.Unlock()
}

// captureMergeDebugging reruns the merge for a single implementation with
// the decision log turned on and returns the captured log.  Captures are
// serialized; normal merges proceed concurrently under the read side of
// debugLock.
func captureMergeDebugging(s *Store, impl TypeDef) string {
	debugLock.Lock()
	defer debugLock.Unlock()
	if atomic.SwapUint32(&debug, 1) == 1 {
		return "already capturing"
	}
	defer atomic.StoreUint32(&debug, 0)

	debugOutputMu.Lock()
	debugOutput = ""
	debugOutputMu.Unlock()

	_ = mergeOne(s, impl)

	debugOutputMu.Lock()
	out := debugOutput
	debugOutputMu.Unlock()
	return out
}
