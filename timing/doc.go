// Package timing records how long version computation takes.
//
// A Timer accumulates wall-clock durations per operation name. WrapDetails
// and WrapBackend decorate a gitversion.VersionDetails or gitversion.Backend
// so that every call is forwarded unchanged and its duration recorded:
//
//	timer := timing.New()
//	backend := timing.WrapBackend(timer, repo)
//	details, err := gitversion.NewDetails(backend, cfg)
//	if err != nil {
//	    return err
//	}
//	timed := timing.WrapDetails(timer, details)
//	fmt.Println(timed.Version())
//	fmt.Println(timer) // Version=1µs git.Head=2.1ms ...
//
// The timing record encodes to JSON as operation name to milliseconds, the
// shape build scans report.
package timing
