package cast

// Property names used by animations, curves and notification tracks.
const (
	PropFramerate           = "fr"
	PropLooping             = "lo"
	PropNodeName            = "nn"
	PropKeyPropertyName     = "kp"
	PropKeyFrameBuffer      = "kb"
	PropKeyValueBuffer      = "kv"
	PropMode                = "m"
	PropAdditiveBlendWeight = "ab"
)

// Curve modes.
const (
	ModeAdditive = "additive"
	ModeAbsolute = "absolute"
	ModeRelative = "relative"
)

// Animation is a root holding curves and notification tracks.
type Animation struct{ Base }

// NewAnimation returns an empty animation with a hash from the process-wide
// sequence.
func NewAnimation() *Animation {
	return New(TagAnimation).(*Animation)
}

func (a *Animation) Skeleton() (*Skeleton, bool) {
	return FirstChildOf[*Skeleton](a)
}

func (a *Animation) Curves() []*Curve {
	return ChildrenOf[*Curve](a)
}

func (a *Animation) NotificationTracks() []*NotificationTrack {
	return ChildrenOf[*NotificationTrack](a)
}

func (a *Animation) CreateSkeleton() *Skeleton {
	return create[*Skeleton](a, TagSkeleton)
}

func (a *Animation) CreateCurve() *Curve {
	return create[*Curve](a, TagCurve)
}

func (a *Animation) CreateNotificationTrack() *NotificationTrack {
	return create[*NotificationTrack](a, TagNotificationTrack)
}

// Framerate has no default; a missing property reports false.
func (a *Animation) Framerate() (float32, bool) {
	v, ok := a.float64At(PropFramerate)
	return float32(v), ok
}

func (a *Animation) SetFramerate(fps float32) {
	a.SetProperty(NewFloats(PropFramerate, fps))
}

// Looping is false unless the lo property is present and set to 1.
func (a *Animation) Looping() bool {
	v, ok := a.uint64At(PropLooping)
	return ok && v == 1
}

func (a *Animation) SetLooping(looping bool) {
	a.setBool(PropLooping, looping)
}

// Curve animates one property of one node.
type Curve struct{ Base }

func (c *Curve) NodeName() (string, bool)        { return c.text(PropNodeName) }
func (c *Curve) KeyPropertyName() (string, bool) { return c.text(PropKeyPropertyName) }
func (c *Curve) Mode() (string, bool)            { return c.text(PropMode) }

func (c *Curve) SetNodeName(name string)        { c.setText(PropNodeName, name) }
func (c *Curve) SetKeyPropertyName(name string) { c.setText(PropKeyPropertyName, name) }
func (c *Curve) SetMode(mode string)            { c.setText(PropMode, mode) }

func (c *Curve) KeyFrameBuffer() ([]uint32, bool) {
	return c.uint32s(PropKeyFrameBuffer)
}

func (c *Curve) SetKeyFrameBuffer(frames []uint32) {
	c.SetProperty(NewSmallestUnsigned(PropKeyFrameBuffer, frames))
}

// KeyValueBuffer returns the raw value property; its type depends on the
// animated property (floats, 4v quaternions, bytes for visibility).
func (c *Curve) KeyValueBuffer() (*Property, bool) {
	return c.Property(PropKeyValueBuffer)
}

// SetKeyValueBuffer stores values under the key value name, whatever name p
// was built with.
func (c *Curve) SetKeyValueBuffer(p *Property) {
	c.SetProperty(p.renamed(PropKeyValueBuffer))
}

// AdditiveBlendWeight defaults to 1.0, full strength, when not stored.
func (c *Curve) AdditiveBlendWeight() float64 {
	v, ok := c.float64At(PropAdditiveBlendWeight)
	if !ok {
		return 1.0
	}
	return v
}

func (c *Curve) SetAdditiveBlendWeight(weight float32) {
	c.SetProperty(NewFloats(PropAdditiveBlendWeight, weight))
}

// NotificationTrack marks named events at key frames.
type NotificationTrack struct{ Base }

func (t *NotificationTrack) Name() (string, bool) { return t.text(PropName) }
func (t *NotificationTrack) SetName(name string)  { t.setText(PropName, name) }

func (t *NotificationTrack) KeyFrameBuffer() ([]uint32, bool) {
	return t.uint32s(PropKeyFrameBuffer)
}

func (t *NotificationTrack) SetKeyFrameBuffer(frames []uint32) {
	t.SetProperty(NewSmallestUnsigned(PropKeyFrameBuffer, frames))
}
