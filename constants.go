package main

import "time"

const (
	ProtocolVersion   = 1
	writeWait         = 10 * time.Second
	tickRate          = 15 // ticks per second (10–20 Hz)
	heartbeatInterval = 2 * time.Second
	disconnectAfter   = 3 * heartbeatInterval
)

const defaultWorldSeed = "pioneer"

const (
	// decisionLogCapacity bounds the per-probe autonomy justification log.
	decisionLogCapacity = 10
	// autonomyCheckInterval gates auto-divert and safety re-evaluation per probe.
	autonomyCheckInterval = 1.0 // seconds of simulation time
	// scanProgressDivisor makes a scan last five seconds at scanSpeed 1.
	scanProgressDivisor = 0.05
	// replicationProgressScale converts elapsed build time into 0–100 progress.
	replicationProgressScale = 100.0
)

const (
	degreesHalfTurn = 180.0
	degreesFullTurn = 360.0
)
