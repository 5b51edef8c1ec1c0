package skeleton

import (
	"fmt"

	"castkit/internal/cast"
	"castkit/internal/mathutil"
)

// Pose is the resolved bind transform of one bone.
type Pose struct {
	Name   string
	Parent int32
	Local  mathutil.Mat4
	World  mathutil.Mat4

	// Stored reports whether World came from the bone's wp/wr properties
	// instead of being chained from its parents.
	Stored bool
}

// Position returns the world-space origin of the bone.
func (p Pose) Position() mathutil.Vec3 {
	return p.World.Translation()
}

// Rotation returns the world-space rotation of the bone.
func (p Pose) Rotation() mathutil.Quat {
	return mathutil.Mat3ToQuat(p.World.Rotation())
}

// BuildWorldMatrices computes the world transform of each bone in skel, indexed
// like skel.Bones(). A bone with both wp and wr keeps them; any other bone is
// its local transform chained through ParentIndex. Parent indices out of range
// make the bone a root. A parent cycle is an error.
func BuildWorldMatrices(skel *cast.Skeleton) ([]Pose, error) {
	bones := skel.Bones()
	poses := make([]Pose, len(bones))
	state := make([]uint8, len(bones)) // 0 pending, 1 visiting, 2 done

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("skeleton: bone %d is its own ancestor", i)
		}
		state[i] = 1

		bone := bones[i]
		p := Pose{Parent: -1, Local: localMatrix(bone)}
		p.Name, _ = bone.Name()
		if idx, ok := bone.ParentIndex(); ok && idx >= 0 && int(idx) < len(bones) && int(idx) != i {
			p.Parent = idx
		}

		wp, hasPos := bone.WorldPosition()
		wr, hasRot := bone.WorldRotation()
		switch {
		case hasPos && hasRot:
			p.World = mathutil.Compose(mathutil.Vec3From32(wp), mathutil.QuatFrom32(wr).Normalize(), mathutil.Vec3{1, 1, 1})
			p.Stored = true
		case p.Parent >= 0:
			if err := visit(int(p.Parent)); err != nil {
				return err
			}
			p.World = mathutil.Mat4Mul(poses[p.Parent].World, p.Local)
		default:
			p.World = p.Local
		}

		poses[i] = p
		state[i] = 2
		return nil
	}

	for i := range bones {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return poses, nil
}

// Bake stores world position and rotation on every bone that lacks them and
// returns how many bones were updated.
func Bake(skel *cast.Skeleton) (int, error) {
	poses, err := BuildWorldMatrices(skel)
	if err != nil {
		return 0, err
	}

	baked := 0
	for i, bone := range skel.Bones() {
		if poses[i].Stored {
			continue
		}
		bone.SetWorldPosition(poses[i].Position().Float32s())
		bone.SetWorldRotation(poses[i].Rotation().Float32s())
		baked++
	}
	return baked, nil
}

func localMatrix(b *cast.Bone) mathutil.Mat4 {
	t := mathutil.Vec3{}
	if lp, ok := b.LocalPosition(); ok {
		t = mathutil.Vec3From32(lp)
	}
	q := mathutil.QuatIdentity()
	if lr, ok := b.LocalRotation(); ok {
		q = mathutil.QuatFrom32(lr).Normalize()
	}
	return mathutil.Compose(t, q, scale(b))
}

func scale(b *cast.Bone) mathutil.Vec3 {
	if s, ok := b.Scale(); ok {
		return mathutil.Vec3From32(s)
	}
	return mathutil.Vec3{1, 1, 1}
}
