package cop

// State is the calibration state machine's current phase.
type State int

const (
	StateIdle State = iota
	StateAccumulating
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	default:
		return "idle"
	}
}

const (
	// calibrationSamples is N from spec §4.1: 3s at a nominal 60Hz
	// sensor rate.
	calibrationSamples = 180
	// calibrationMinSamples is the minimum accepted-sample count for a
	// completed calibration to be considered valid.
	calibrationMinSamples = 10
)

// Calibration is the latched tare state: offsets applied to every raw
// estimate once Calibrated is true.
type Calibration struct {
	OffsetX    float64
	OffsetY    float64
	TareWeight float64
	Calibrated bool
}

// accumulator holds the running sums for an in-progress calibration.
// Kept as running sums (not a sample buffer) so completing or
// cancelling a calibration never walks a stored history — the same
// discipline the teacher's sensor-domain hot path follows to stay
// allocation-free. elapsed counts every sample observed while
// accumulating (valid or not, the window is time-based); count counts
// only the accepted (valid) ones the means are computed from.
type accumulator struct {
	elapsed          int
	count            int
	sumX, sumY, sumW float64
}

func (a *accumulator) reset() { *a = accumulator{} }

func (a *accumulator) add(x, y, w float64) {
	a.count++
	a.sumX += x
	a.sumY += y
	a.sumW += w
}

func (a *accumulator) means() (x, y, w float64) {
	if a.count == 0 {
		return 0, 0, 0
	}
	n := float64(a.count)
	return a.sumX / n, a.sumY / n, a.sumW / n
}

// Estimator wraps the raw estimator with the session calibration state
// machine described in spec §4.1: Idle -> Accumulating -> Idle, with
// a single-flag cancellation checked at the top of each sample (no
// in-flight work to interrupt).
type Estimator struct {
	state State
	acc   accumulator
	calib Calibration

	// OnCalibrationFailed fires once when a completed accumulation
	// gathered fewer than calibrationMinSamples valid samples. Prior
	// calibration, if any, remains in effect.
	OnCalibrationFailed func()
	// OnCalibrationComplete fires once when a calibration latches
	// successfully.
	OnCalibrationComplete func()
}

// NewEstimator creates an uncalibrated estimator in the Idle state.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// State reports the current calibration phase.
func (e *Estimator) State() State { return e.state }

// Calibration returns a snapshot of the latched calibration.
func (e *Estimator) Calibration() Calibration { return e.calib }

// StartCalibration begins accumulation. Only honored from Idle;
// starting twice is a no-op reporting the existing (accumulating)
// state, per the "already-active resource" no-op policy in spec §7.
func (e *Estimator) StartCalibration() bool {
	if e.state != StateIdle {
		return false
	}
	e.acc.reset()
	e.state = StateAccumulating
	return true
}

// CancelCalibration discards the in-progress accumulator with no
// side effects on previously latched values. A no-op when not
// accumulating.
func (e *Estimator) CancelCalibration() bool {
	if e.state != StateAccumulating {
		return false
	}
	e.acc.reset()
	e.state = StateIdle
	return true
}

// ResetCalibration clears any latched calibration and returns to
// Idle, discarding any in-progress accumulation.
func (e *Estimator) ResetCalibration() {
	e.acc.reset()
	e.state = StateIdle
	e.calib = Calibration{}
}

// Process advances the estimator by one sensor sample: computes the
// raw CoP, feeds the calibration accumulator when accumulating, and
// applies the latched tare offset to produce the compensated sample.
// While accumulating, output still flows unmodified (using whatever
// calibration was in effect before this call started) — no stalls.
func (e *Estimator) Process(tl, tr, bl, br float64, timestampMs int64) Sample {
	raw := Estimate(tl, tr, bl, br)
	raw.TimestampMs = timestampMs

	complete := false
	if e.state == StateAccumulating {
		e.acc.elapsed++
		if raw.Valid {
			e.acc.add(raw.X, raw.Y, raw.Weight)
		}
		complete = e.acc.elapsed >= calibrationSamples
	}

	out := raw
	out.RawX, out.RawY = raw.X, raw.Y
	if raw.Valid && e.calib.Calibrated {
		out.X = raw.X - e.calib.OffsetX
		out.Y = raw.Y - e.calib.OffsetY
	}
	if complete {
		e.completeCalibration()
	}
	return out
}

func (e *Estimator) completeCalibration() {
	count := e.acc.count
	x, y, w := e.acc.means()
	e.acc.reset()
	e.state = StateIdle

	if count < calibrationMinSamples {
		if e.OnCalibrationFailed != nil {
			e.OnCalibrationFailed()
		}
		return
	}

	e.calib = Calibration{OffsetX: x, OffsetY: y, TareWeight: w, Calibrated: true}
	if e.OnCalibrationComplete != nil {
		e.OnCalibrationComplete()
	}
}
