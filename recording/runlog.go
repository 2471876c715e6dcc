package recording

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sarchlab/kishu/sim"
)

const runInfoTable = "run_info"

const wallClockFormat = "2006-01-02 15:04:05.000000000"

// RunInfo is one property of one simulation run, stored as a row of the
// run_info table.
type RunInfo struct {
	RunID    string
	Property string
	Value    string
}

// RunLog records the metadata of simulation runs. Each run contributes a
// group of rows to the run_info table, keyed by the run ID.
type RunLog struct {
	recorder Recorder
	entries  []RunInfo
}

// NewRunLog creates a RunLog that writes through the given recorder. The
// run_info table is created if the recorder does not have it yet.
func NewRunLog(recorder Recorder) *RunLog {
	l := &RunLog{recorder: recorder}

	if !hasTable(recorder, runInfoTable) {
		recorder.CreateTable(runInfoTable, RunInfo{})
	}

	return l
}

// Begin captures the metadata that is known when a run starts.
func (l *RunLog) Begin(s *sim.Simulation) {
	l.append(s, "Name", s.Name())

	if f := s.RandomFactory(); f != nil {
		l.append(s, "Seed", fmt.Sprintf("%d", f.MasterSeed()))
		l.append(s, "Seed Policy", f.Policy().String())
	}

	if horizon := s.SimulationLength(); horizon > 0 {
		l.append(s, "Horizon", fmt.Sprintf("%.10f", float64(horizon)))
	}

	l.append(s, "Start Time", time.Now().Format(wallClockFormat))
	l.append(s, "Command", strings.Join(os.Args, " "))

	ex, err := os.Executable()
	if err != nil {
		panic(err)
	}

	l.append(s, "Working Directory", filepath.Dir(ex))
}

// Finish adds the end-of-run metadata and writes all the rows of the run.
func (l *RunLog) Finish(s *sim.Simulation) {
	l.append(s, "End Time", time.Now().Format(wallClockFormat))
	l.append(s, "Final Time", fmt.Sprintf("%.10f", float64(s.Now())))
	l.append(s, "Dispatched Events", fmt.Sprintf("%d", s.EventCount()))

	for _, entry := range l.entries {
		l.recorder.InsertData(runInfoTable, entry)
	}

	l.entries = nil

	l.recorder.Flush()
}

func (l *RunLog) append(s *sim.Simulation, property, value string) {
	l.entries = append(l.entries, RunInfo{
		RunID:    s.ID(),
		Property: property,
		Value:    value,
	})
}

func hasTable(recorder Recorder, name string) bool {
	for _, t := range recorder.ListTables() {
		if t == name {
			return true
		}
	}

	return false
}
