// Package future recovers compiler-generated asynchronous state machine types
// from one compilation unit's debug-info tree.
//
// The analysis runs in three steps over a freshly created Collection:
//
//	coll := future.Collect(unit.Root, future.DefaultClassifier())
//	future.Resolve(coll)
//	for _, rec := range coll.Records() { ... }
//
// Collect harvests every structure whose name marks it as future-like, with its
// direct members. Resolve computes, for each record, the other state machine
// types it transitively holds through member type references.
//
// Classification is name based and best effort. The Classifier is a value so a
// stricter policy (see package policy) can be swapped in without touching the
// graph walk.
package future
