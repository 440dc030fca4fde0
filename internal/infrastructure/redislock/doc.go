// Package redislock provides the cross-process project lock.
//
// A designer running as several processes against the same database
// serializes edits of a project through a Redis key
//
//	designer:lock:project:{id}
//
// set with SET NX PX and a random token as value. Release deletes the key
// only while it still holds that token, so a lock that expired and was
// taken by another process is never removed by its previous owner.
//
// The lock is advisory. Inside one process the project service also keeps
// a keyed mutex; the SQLite transaction remains the last line of
// consistency.
package redislock
