/*
Package typeid assigns stable, process-wide numeric identifiers to
compile-time Go types on first use.

An identifier survives for the lifetime of the process and is identical
across goroutines: two goroutines racing to register the same type
always observe the same final id, and distinct types always receive
distinct ids. A mutex guards the type-to-id map: Of, OfValue and OfType
take it on every call, including for types already registered. InfoFor
reads an atomically published snapshot and never takes the mutex.
*/
package typeid
