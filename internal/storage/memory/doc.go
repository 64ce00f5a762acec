// Package memory provides the in-memory key-value store for litekv.
//
// A single mutex guards the whole map. Expiry is lazy: an entry whose
// deadline has passed is removed by whichever Get, Del or Exists finds it.
// There is no background sweeper, so keys that are written with a TTL and
// never read again stay resident until the next access or AOF rewrite.
package memory
