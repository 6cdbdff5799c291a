// Package rcm implements the execution-config Resolver which assembles the configuration served to Vouch.
//
// Resolver looks up the named active default config first. When it exists, the proposer overrides of the requested
// keys and the proposer patterns carrying any of the requested tags are looked up concurrently. The response holds
// the default's own fields and relays, followed by one entry per stored proposer (in request order) and one entry per
// matching pattern (ordered by name). Every entry carries its own fields only and the relay set resolved against the
// default relays: merged, or replaced when reset_relays is set, and stripped of disabled relays.
//
// Resolution is read-only and nothing is cached.
//
// Syncer can be used to periodically run a job, such as refreshing the Inventory gauges.
package rcm
