// Package kerrors defines the error kinds of spec.md §7 as sentinel
// errors, wrapped with context via fmt.Errorf("...: %w", ...) at the call
// site and unwrapped with errors.Is at the HTTP facade boundary. Only the
// facade packages (masterapi, agentapi) translate these into status codes;
// the store/scheduler/reconciler packages never import net/http.
package kerrors

import "errors"

var (
	// ErrValidation: malformed input (empty name/image, bad UUID). 400.
	ErrValidation = errors.New("validation error")
	// ErrConflict: the resource already exists. 409.
	ErrConflict = errors.New("conflict")
	// ErrNotFound: the resource does not exist. 404.
	ErrNotFound = errors.New("not found")
	// ErrRuntimeNotFound: the container runtime has no record of the
	// container at stop/remove/inspect. Recovered locally for stop/remove
	// (treated as success); propagated for inspect.
	ErrRuntimeNotFound = errors.New("runtime: container not found")
	// ErrRuntimeOther: any other container-runtime failure. Causes the
	// pod to transition to Failed.
	ErrRuntimeOther = errors.New("runtime error")
	// ErrTransport: an HTTP timeout or connection error between master
	// and agent.
	ErrTransport = errors.New("transport error")
	// ErrRegistration: the agent could not register with the master.
	ErrRegistration = errors.New("registration error")
)

// Is reports whether err wraps target, delegating to errors.Is. Provided
// for readability at call sites (kerrors.Is(err, kerrors.ErrNotFound)).
func Is(err, target error) bool {
	return errors.Is(err, target)
}
