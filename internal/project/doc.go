// Package project is the service layer of the designer.
//
// Every write that allocates (SAK ranges, network addresses, device ids,
// module channels) is serialized per project: an in-process keyed mutex,
// optionally backed by a Redis lock when several designer processes share
// one database. The allocator check and the insert then run in one SQLite
// transaction, so a refused allocation leaves nothing behind.
//
// Export compiles a stored project into a ROEHN document or a snapshot;
// Import parses either format and stores the result as a new project in
// one transaction. Successful runs publish an MQTT event, write an InfluxDB
// point and bump Prometheus counters; none of these is required.
package project
