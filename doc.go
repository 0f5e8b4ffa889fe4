/*
Package docbolt maps a logical document collection (primary key,
secondary indexes, sorted queries) onto Bolt, which only gives us
named key-ranged buckets.

We implement:

1. Index schema compilation, turning a collection's index declarations
into the physical declaration string the storage layer understands,
escaping field names that cannot appear in physical identifiers.

2. Deterministic document ordering for query execution: a comparator
built from a query's sort clause, with the primary key appended as a
tie-breaker so the order is always total.

3. A process-wide connection registry that hands out one shared,
reference-counted handle per logical (database, collection) name.
Concurrent first-time acquirers wait on a single in-flight open; the
last release closes the file.

4. Merged point reads across the active and tombstone buckets, with
the active record winning when an id exists in both.

# Technical Details

**Buckets.**
Each handle owns four fixed buckets — "docs" (active records),
"deleted-docs" (tombstones), "changes" (append-only change sequence),
"meta" — plus one "i_..." bucket per compiled secondary index group.

**Values.**
Documents are schemaless maps encoded with msgpack. Tombstoned records
additionally carry a last-write timestamp under a reserved key; that
key is stripped before a record leaves this package.

**Index entries.**
An index bucket entry's key is the sortable encoding of the group's
field values followed by the primary key; the value is the primary
key. Entries are maintained on every write so the engine can serve
range scans, but this package never reads them back itself.
*/
package docbolt
