// Package cache computes a project's version once and serves it for the rest
// of the process.
//
// New locates the enclosing repository, opens a git backend at its root and
// derives the version details, all before returning. A Service is therefore
// either fully computed or not created at all; its accessors only read
// values fixed at construction. There is no global instance: the caller
// constructs one Service per build invocation and passes it to whatever
// needs the version.
//
// Example:
//
//	svc, err := cache.New(".", gitversion.Config{Prefix: "api@"},
//	    cache.WithBackend(cache.CLIBackend(gitcli.WithTimeout(10*time.Second))),
//	    cache.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(svc.Version())
//	fmt.Println(svc.Timer())
package cache
