// Package trigger decides when to publish and runs publish pipelines one at
// a time.
//
// A Trigger moves through Idle, Building, Publishing, and Failed. Events
// arriving while a run is in progress set a single pending flag, so any
// number of events coalesce into exactly one follow-up run that uses the
// latest event. Runs are never retried automatically and a started run is
// not cancelled by later events.
//
// A run allocates a generation, optionally syncs the content repository,
// builds, stages, promotes, and prunes. Any failure discards the staged
// files, records a failure report, and leaves the live generation as it
// was.
package trigger
