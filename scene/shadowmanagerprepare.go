// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

// ShadowManagerPrepare steps shadow-map allocation and
// cull-state bookkeeping before rendering, using the same
// external-callback shape as ParticlePrepare: the simulation
// itself lives outside this package.
type ShadowManagerPrepare struct {
	StepFunc func(dt float32)
}

// NewShadowManagerPrepare creates a ShadowManagerPrepare list
// that calls step once per frame.
func NewShadowManagerPrepare(step func(dt float32)) *ShadowManagerPrepare {
	return &ShadowManagerPrepare{StepFunc: step}
}

// Update implements Updater.
func (l *ShadowManagerPrepare) Update(sc *Scene, dt float32) {
	if l.StepFunc != nil {
		l.StepFunc(dt)
	}
}

// Hash implements ItemList.
func (l *ShadowManagerPrepare) Hash() uint64 { return hashString("ShadowManagerPrepare") }

// Equal implements ItemList.
func (l *ShadowManagerPrepare) Equal(other ItemList) bool {
	_, ok := other.(*ShadowManagerPrepare)
	return ok
}

// GlobalValueCount implements ItemList.
func (l *ShadowManagerPrepare) GlobalValueCount() int { return 0 }

// Destroy implements ItemList.
func (l *ShadowManagerPrepare) Destroy() {}
