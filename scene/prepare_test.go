// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package scene

import "testing"

type fakeEmitter struct {
	steps     int
	lastDT    float32
	destroyed bool
	failStep  bool
}

func (e *fakeEmitter) Step(tn TreeNodeID, dt float32) error {
	if e.failStep {
		return errTestStep
	}
	e.steps++
	e.lastDT = dt
	return nil
}

func (e *fakeEmitter) Destroy() { e.destroyed = true }

var errTestStep = fakeStepErr("step failed")

type fakeStepErr string

func (e fakeStepErr) Error() string { return string(e) }

type fakeEmitterNode struct {
	emitter    *fakeEmitter
	failCreate bool
}

func (n *fakeEmitterNode) CreateEmitter(tn TreeNodeID) (Emitter, error) {
	if n.failCreate {
		return nil, errTestStep
	}
	return n.emitter, nil
}

func TestParticlePrepareAddStepsAndRemoves(t *testing.T) {
	sc := NewScene()
	pp := NewParticlePrepare()
	sc.Register("particle", pp)

	typ := NewType("particleEmitter", nil)
	n := New(typ, []string{"particle"}, identity())
	em := &fakeEmitter{}
	n.UserData = &fakeEmitterNode{emitter: em}
	tn := sc.AddNode(n, NoTreeNode)

	if pp.Len() != 1 {
		t.Fatalf("Len after AddNode\nhave %d\nwant 1", pp.Len())
	}

	sc.Update(0.25)
	if em.steps != 1 || em.lastDT != 0.25 {
		t.Fatalf("emitter not stepped: steps=%d lastDT=%v", em.steps, em.lastDT)
	}

	sc.RemoveNode(tn)
	if !em.destroyed {
		t.Fatal("RemoveNode did not destroy the emitter")
	}
	if pp.Len() != 0 {
		t.Fatalf("Len after RemoveNode\nhave %d\nwant 0", pp.Len())
	}

	pp.Destroy()
}

func TestParticlePrepareDeclinesNonEmitterNode(t *testing.T) {
	l := NewParticlePrepare()
	id, ok := l.AddNode(nil, TreeNodeID(1), nil)
	if ok || id != NoEntry {
		t.Fatal("AddNode accepted itemData that is not an EmitterNode")
	}
}

func TestParticlePrepareDeclinesFailedCreate(t *testing.T) {
	l := NewParticlePrepare()
	id, ok := l.AddNode(nil, TreeNodeID(1), &fakeEmitterNode{failCreate: true})
	if ok || id != NoEntry {
		t.Fatal("AddNode accepted a node whose CreateEmitter failed")
	}
}

func TestParticlePrepareDestroyReleasesLiveEmitters(t *testing.T) {
	l := NewParticlePrepare()
	em := &fakeEmitter{}
	l.AddNode(nil, TreeNodeID(1), &fakeEmitterNode{emitter: em})
	l.Destroy()
	if !em.destroyed {
		t.Fatal("Destroy did not release a still-live emitter")
	}
}

func TestShadowManagerPrepareSteps(t *testing.T) {
	var got float32
	l := NewShadowManagerPrepare(func(dt float32) { got = dt })
	l.Update(nil, 0.5)
	if got != 0.5 {
		t.Fatalf("StepFunc dt\nhave %v\nwant 0.5", got)
	}
	l.Destroy()
}

func TestShadowManagerPrepareNilStepFunc(t *testing.T) {
	l := NewShadowManagerPrepare(nil)
	l.Update(nil, 0.1) // must not panic
}
