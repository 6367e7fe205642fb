// Package l2gestures owns Layer 2 (Gestures) of the gesture data model.
//
// Responsibilities: stateless rule-based classification of a single
// landmark frame into a gesture label with a continuous confidence,
// and the geometric feature extraction behind it.
// Key types: Label, Classifier, Result, Features.
//
// Dependency rule: L2 may depend on L1, but never on L3+. The classifier
// holds no per-frame state; temporal behaviour lives in l4intent.
package l2gestures
