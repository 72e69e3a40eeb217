// Package testutil provides test helpers shared across the devbench packages.
//
// ConfigBuilder builds small, valid configurations:
//
//	cfg := testutil.NewConfigBuilder().
//		WithShells("ghc902", "ghc925").
//		WithFlakes("input-output-hk/devx").
//		Build()
//
// FakeExecutor stands in for the process executor. It records every call and
// advances a FakeClock by a scripted cost, so measured samples are exact:
//
//	clock := testutil.NewFakeClock()
//	fake := testutil.NewFakeExecutor(clock)
//	fake.Cost = func(testutil.Call) time.Duration { return 250 * time.Millisecond }
//	runner, _ := bench.NewRunner(cfg, fake, bench.Options{Clock: clock.Now})
package testutil
