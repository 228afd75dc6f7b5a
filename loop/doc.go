// Package loop drives the reason-act cycle of a research session. A Session
// owns one conversation and alternates between reasoning steps and tool
// execution until the reasoner produces a final answer or the iteration
// budget runs out. All history mutation funnels through the session, so the
// conversation stays append-only and totally ordered even when tool batches
// run concurrently.
package loop
