// Package processor provides record processors: request identifiers, tags,
// host and process information, memory and load figures, call sites, git
// revision, OpenTelemetry trace context and values pulled from context.Context.
//
// Processors add their attributes to Record.Extra and never touch the
// call-site attributes, except Placeholder when asked to remove the
// attributes it interpolated.
package processor
