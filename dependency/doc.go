// Package dependency defines the capabilities effects and reducers consume:
// a clock, a UUID generator, typed fetch functions, a dismiss signal and a
// keyed bag of application values.
//
// Dependencies are an explicit bundle (Values) handed to store.New. The store
// installs the bundle into the context of every effect it starts, so an
// effect reads its capabilities from ctx:
//
//	clock := dependency.FromContext(ctx).Clock
//	if err := clock.Sleep(ctx, time.Second); err != nil {
//	    return err
//	}
//
// Nothing here is a process-wide singleton.
package dependency
