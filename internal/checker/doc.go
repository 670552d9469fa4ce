// Package checker holds the per-host reachability stage of a check run.
//
//   - ParseTarget / ParseTargets normalise configured host entries.
//   - ParseStatusSet reads the accepted health-check status ranges.
//   - Resolver, ConnectivityTester and StatusLookup are the network
//     collaborators; SystemResolver, NameserverResolver,
//     TCPConnectivityTester and HTTPStatusLookup implement them.
//   - CheckReachability judges a status lookup against the accepted set and
//     ClassifyError maps failures onto finding.FailureKind.
//   - Runner executes per-host work on a bounded, rate-limited pool.
package checker
