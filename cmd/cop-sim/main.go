// Command cop-sim drives the CoP estimator and AMHIC canceller over
// either synthetic contamination or a replayed CSV sensor log, and
// prints a convergence/SNR trace, mirroring cmd/piano-distance's
// flag-driven analysis-and-report shape.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/suke-go/bbhacker-core/amhic"
	"github.com/suke-go/bbhacker-core/config"
	"github.com/suke-go/bbhacker-core/cop"
	"github.com/suke-go/bbhacker-core/internal/audioio"
)

type traceRow struct {
	Sample      int     `json:"sample"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	SNRdB       float64 `json:"snr_db"`
	Converged   bool    `json:"converged"`
	Calibrating bool    `json:"calibrating"`
}

// logRecord is one CSV row of a captured sensor log: the four raw
// load-cell readings plus a millisecond timestamp.
type logRecord struct {
	tl, tr, bl, br float64
	timestampMs    int64
}

func main() {
	sessionPath := flag.String("session", "", "Session config JSON path (optional)")
	logPath := flag.String("log", "", "Replay a captured CSV sensor log (tl,tr,bl,br,timestamp_ms) instead of synthesizing contamination")
	logRate := flag.Int("log-rate", 60, "Recorded sample rate of -log, Hz (resampled to the session's sensor rate if different)")
	frequency := flag.Float64("frequency", 30, "Contamination frequency in Hz (synthetic mode only)")
	amplitude := flag.Float64("amplitude", 20, "Contamination amplitude in kg, added to and subtracted from the load-cell readings (synthetic mode only)")
	theta := flag.Float64("theta", 0.4, "Contamination phase offset in radians (synthetic mode only)")
	samples := flag.Int("samples", 600, "Number of simulated sensor samples (synthetic mode only)")
	notch := flag.Bool("notch", false, "Use the notch backend instead of NLMS")
	calibrateAt := flag.Int("calibrate-at", -1, "Sample index at which to call StartCalibration (-1 disables)")
	calibrateCancelAt := flag.Int("calibrate-cancel-at", -1, "Sample index at which to call CancelCalibration (-1 disables)")
	everyN := flag.Int("every", 60, "Print one trace row every N samples")
	jsonOut := flag.Bool("json", false, "Print the trace as JSON instead of a table")
	flag.Parse()

	sess := config.DefaultSession()
	if *sessionPath != "" {
		loaded, err := config.LoadJSON(*sessionPath)
		if err != nil {
			die("failed to load session config %q: %v", *sessionPath, err)
		}
		sess = loaded
	}
	if *notch {
		sess.CompensationBackend = amhic.BackendNotch
	}

	estimator := cop.NewEstimator()
	estimator.OnCalibrationComplete = func() { fmt.Fprintln(os.Stderr, "calibration complete") }
	estimator.OnCalibrationFailed = func() { fmt.Fprintln(os.Stderr, "calibration failed") }

	canceller, err := sess.NewCanceller()
	if err != nil {
		die("failed to build canceller: %v", err)
	}
	canceller.SetFrequency(float32(*frequency))

	var records []logRecord
	if *logPath != "" {
		records, err = readLogCSV(*logPath)
		if err != nil {
			die("failed to read sensor log %q: %v", *logPath, err)
		}
		records = resampleLog(records, *logRate, int(sess.SampleRateSense))
	}

	n := *samples
	if records != nil {
		n = len(records)
	}

	var rows []traceRow
	for i := 0; i < n; i++ {
		if *calibrateAt == i {
			estimator.StartCalibration()
		}
		if *calibrateCancelAt == i {
			estimator.CancelCalibration()
		}

		var tl, tr, bl, br float64
		var ts int64
		var phi float64
		if records != nil {
			r := records[i]
			tl, tr, bl, br, ts = r.tl, r.tr, r.bl, r.br, r.timestampMs
			phi = -1 // no external phase reference available from a replayed log
		} else {
			phi = 2 * math.Pi * (*frequency) * float64(i) / sess.SampleRateSense
			contamX := *amplitude * math.Sin(phi+*theta)
			contamY := *amplitude * math.Cos(phi + *theta)
			tl, tr, bl, br = 20+contamX, 20-contamX, 20+contamY, 20-contamY
			ts = int64(i)
			phi = wrapPhase(phi + *theta)
		}

		s := estimator.Process(tl, tr, bl, br, ts)
		ex, ey := canceller.Process(s.X, s.Y, phi, true)

		if i%*everyN == 0 || i == n-1 {
			rows = append(rows, traceRow{
				Sample:      i,
				X:           ex,
				Y:           ey,
				SNRdB:       canceller.Metrics().SNRImprovementDB(),
				Converged:   canceller.Converged(),
				Calibrating: estimator.State() == cop.StateAccumulating,
			})
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			die("failed to encode json: %v", err)
		}
		return
	}

	fmt.Printf("%8s %10s %10s %8s %10s %11s\n", "sample", "x(mm)", "y(mm)", "snr(dB)", "converged", "calibrating")
	for _, r := range rows {
		fmt.Printf("%8d %10.3f %10.3f %8.2f %10t %11t\n", r.Sample, r.X, r.Y, r.SNRdB, r.Converged, r.Calibrating)
	}
}

// readLogCSV parses a captured sensor log: one header-less row per
// sample, columns tl, tr, bl, br, timestamp_ms.
func readLogCSV(path string) ([]logRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	rawRows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([]logRecord, 0, len(rawRows))
	for i, row := range rawRows {
		tl, err := strconv.ParseFloat(row[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: tl: %w", i, err)
		}
		tr, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: tr: %w", i, err)
		}
		bl, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bl: %w", i, err)
		}
		br, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: br: %w", i, err)
		}
		ts, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: timestamp_ms: %w", i, err)
		}
		out = append(out, logRecord{tl: tl, tr: tr, bl: bl, br: br, timestampMs: ts})
	}
	return out, nil
}

// resampleLog resamples each of the four load-cell channels from
// fromRate to toRate independently, mirroring the teacher's
// dsp/resample use when comparing signals recorded at different
// rates. Timestamps are re-derived from the target rate rather than
// resampled themselves.
func resampleLog(records []logRecord, fromRate, toRate int) []logRecord {
	if len(records) == 0 || fromRate == toRate {
		return records
	}
	tl := make([]float64, len(records))
	tr := make([]float64, len(records))
	bl := make([]float64, len(records))
	br := make([]float64, len(records))
	for i, r := range records {
		tl[i], tr[i], bl[i], br[i] = r.tl, r.tr, r.bl, r.br
	}
	rtl, err1 := audioio.ResampleIfNeeded(tl, fromRate, toRate)
	rtr, err2 := audioio.ResampleIfNeeded(tr, fromRate, toRate)
	rbl, err3 := audioio.ResampleIfNeeded(bl, fromRate, toRate)
	rbr, err4 := audioio.ResampleIfNeeded(br, fromRate, toRate)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		die("failed to resample sensor log from %d Hz to %d Hz", fromRate, toRate)
	}

	n := len(rtl)
	out := make([]logRecord, n)
	msPerSample := 1000.0 / float64(toRate)
	for i := 0; i < n; i++ {
		out[i] = logRecord{
			tl: rtl[i], tr: rtr[i], bl: rbl[i], br: rbr[i],
			timestampMs: int64(float64(i) * msPerSample),
		}
	}
	return out
}

func wrapPhase(phi float64) float64 {
	const twoPi = 2 * math.Pi
	phi = math.Mod(phi, twoPi)
	if phi < 0 {
		phi += twoPi
	}
	return phi
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
