// Package store keeps sheet state in a query-string shaped key/value set.
//
// The canonical state is owned by a Backend: in the browser model that is the
// URL plus its history stack (History), on the server it can be a session in
// redis. A Store never caches values. Every read decodes from the backend's
// current query and every write re-serializes the whole parameter set and
// commits it as one navigation step.
//
// Typed access goes through Value[T], which pairs a key with a Codec. A codec
// that reports "no value" for the default keeps defaults out of the query, so
// an absent key and a default value are indistinguishable to readers.
//
// Batch coalesces any number of writes into a single commit, which for
// History means one pushState and one notification.
package store
