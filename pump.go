package winloop

// Pollable is a native event source that can block on demand, e.g. a set of
// file descriptors. See [Pump].
type Pollable interface {
	// Wait blocks as planned, returning early once native events are ready
	// or the backend is woken. Spurious returns are permitted.
	Wait(plan WaitPlan) error

	// Drain reports every native event that is ready, in order, without
	// blocking.
	Drain(emit func(ev Event)) error
}

// Pump drives r from p, until the loop exits or p fails. It is intended as
// the implementation of Backend.Run for pollable backends.
func Pump(r *Runner, p Pollable) error {
	for {
		r.Begin()
		if err := p.Drain(r.Dispatch); err != nil {
			return err
		}
		if !r.Cleared() {
			return nil
		}
		if err := p.Wait(r.Plan()); err != nil {
			return err
		}
	}
}
