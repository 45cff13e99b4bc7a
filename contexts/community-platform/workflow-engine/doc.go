// Package workflowengine implements the problem workflow state machine
// inside the community-platform context.
//
// The module owns the vote-milestone transition rules, admin overrides,
// append-only audit logging, development-queue admission, and the
// composed workflow read view. Business rules live in the domain and
// application layers; infrastructure concerns stay behind ports and
// adapters.
package workflowengine
