// Package l1landmarks owns Layer 1 (Landmarks) of the gesture data model.
//
// Responsibilities: the LandmarkFrame contract produced by the external
// hand landmark provider, landmark indices and finger topology, frame
// validation, and the stateful preprocessors that run before
// classification (EMA smoothing and the wrist velocity gate).
// Key types: Frame, Point, Smoother, VelocityGate.
//
// Dependency rule: L1 depends on no other layer.
package l1landmarks
