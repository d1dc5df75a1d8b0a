// Package registry classifies container registry endpoints and decides
// whether and how a missing repository can be provisioned.
//
// Classification is a pure pattern match on the endpoint string: an
// AWS ECR endpoint exposes its account and region in its host name, and
// ECR supports programmatic repository creation. Everything else is a
// generic registry whose repositories monopack never creates.
//
// Remote tag existence is resolved through the standard distribution
// protocol. Network failures distinguish retryable conditions
// (timeouts) from permanent ones (denied, missing and creation
// disallowed); retries are left to the caller's next invocation so a
// registry outage is never masked by a silent retry loop.
package registry
