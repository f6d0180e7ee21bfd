package utils

import (
	"fmt"
	"runtime/debug"
)

// RecoverFromPanic recovers from panics and logs them. It must be deferred directly.
func RecoverFromPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.Error("Panic recovered in %s: %v\nStack trace:\n%s", context, r, string(debug.Stack()))
	}
}

// SafeGo runs fn on a new goroutine with panic recovery
func SafeGo(logger *Logger, context string, fn func()) {
	go func() {
		defer RecoverFromPanic(logger, context)
		fn()
	}()
}

// SafeGoWithError runs fn on a new goroutine; a returned error or a recovered panic is
// logged and handed to onError.
func SafeGoWithError(logger *Logger, context string, fn func() error, onError func(error)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Panic recovered in %s: %v\nStack trace:\n%s", context, r, string(debug.Stack()))
				if onError != nil {
					onError(PanicError(context, r))
				}
			}
		}()
		if err := fn(); err != nil {
			logger.Error("Error in %s: %v", context, err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// PanicError converts a recovered value into an error.
func PanicError(context string, r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic in %s: %w", context, err)
	}
	return fmt.Errorf("panic in %s: %v", context, r)
}
