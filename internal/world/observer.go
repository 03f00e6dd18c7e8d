package world

import "github.com/go-gl/mathgl/mgl32"

const (
	observerDrag = 0.9
	// below this squared speed the observer snaps to rest
	restSpeedSq = 2
)

// Observer is a point that moves over the world and drives streaming. It
// integrates acceleration with quadratic drag and accumulates the distance
// travelled until the streamer takes it.
type Observer struct {
	Position     mgl32.Vec2
	Velocity     mgl32.Vec2
	Acceleration mgl32.Vec2

	moved float32
}

// NewObserver places an observer at rest at pos.
func NewObserver(pos mgl32.Vec2) *Observer {
	return &Observer{Position: pos}
}

// Push adds to the acceleration applied on the next Update.
func (o *Observer) Push(a mgl32.Vec2) {
	o.Acceleration = o.Acceleration.Add(a)
}

// Update advances the observer by dt seconds and clears the acceleration.
func (o *Observer) Update(dt float32) {
	o.Velocity = o.Velocity.Add(o.Acceleration.Mul(dt))
	step := o.Velocity.Mul(dt)
	o.Position = o.Position.Add(step)
	o.moved += step.Len()

	o.Velocity = o.Velocity.Sub(o.Velocity.Mul(o.Velocity.Len() * observerDrag * dt))
	if o.Velocity.Dot(o.Velocity) < restSpeedSq {
		o.Velocity = mgl32.Vec2{}
	}
	o.Acceleration = mgl32.Vec2{}
}

// Teleport moves the observer without integrating; the jump counts toward
// the distance moved.
func (o *Observer) Teleport(pos mgl32.Vec2) {
	o.moved += pos.Sub(o.Position).Len()
	o.Position = pos
}

// CurrentPosition implements ObserverSource.
func (o *Observer) CurrentPosition() mgl32.Vec2 { return o.Position }

// TakeDistanceMoved implements ObserverSource.
func (o *Observer) TakeDistanceMoved() float32 {
	d := o.moved
	o.moved = 0
	return d
}

// DistanceMoved returns the distance accumulated since the last take.
func (o *Observer) DistanceMoved() float32 { return o.moved }
