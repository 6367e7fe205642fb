package l5scene

import "github.com/banshee-data/handvox/internal/sculpt/l3space"

// Face is one side of a unit cube.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Faces lists all six sides.
var Faces = [6]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

var faceNormals = [6]l3space.GridCoord{
	FacePosX: {X: 1},
	FaceNegX: {X: -1},
	FacePosY: {Y: 1},
	FaceNegY: {Y: -1},
	FacePosZ: {Z: 1},
	FaceNegZ: {Z: -1},
}

var faceNames = [6]string{"+x", "-x", "+y", "-y", "+z", "-z"}

// Normal returns the outward unit offset of the face.
func (f Face) Normal() l3space.GridCoord { return faceNormals[f] }

func (f Face) String() string { return faceNames[f] }

// VisibleFace is a voxel side with no neighbour behind it.
type VisibleFace struct {
	Voxel SnapshotVoxel
	Face  Face
}

// VisibleFaces returns every face not shared with an adjacent voxel, in
// voxel order.
func (s Snapshot) VisibleFaces() []VisibleFace {
	occupied := make(map[l3space.GridCoord]struct{}, len(s.Voxels))
	for _, v := range s.Voxels {
		occupied[v.Pos] = struct{}{}
	}
	var out []VisibleFace
	for _, v := range s.Voxels {
		for _, f := range Faces {
			if _, hidden := occupied[v.Pos.Add(f.Normal())]; !hidden {
				out = append(out, VisibleFace{Voxel: v, Face: f})
			}
		}
	}
	return out
}
