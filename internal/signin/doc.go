// Package signin drives the multi-step sign-in handshake against the userbot
// backend: request a verification code, verify it, and verify the account
// password when the backend demands a second factor.
//
// The flow is modelled as a sum type (State) with a pure Transition
// function. Orchestrator is the effect layer: it performs the backend calls,
// classifies failures and feeds the resulting events back into Transition.
package signin
