package recording

import (
	"fmt"
	"sort"

	"github.com/sarchlab/kishu/observer"
	"github.com/sarchlab/kishu/sim"
)

const resultsTable = "results"

// ResultEntry is one collected result of one simulation run, stored as a row
// of the results table.
type ResultEntry struct {
	RunID string
	Name  string
	Value string
}

// ResultsListener persists the lifecycle and the collected results of a
// simulation. It writes the run metadata through a RunLog and copies every
// result reported through result collection into the results table.
type ResultsListener struct {
	recorder Recorder
	runLog   *RunLog
}

var _ observer.Listener[sim.SimEvent] = (*ResultsListener)(nil)

// NewResultsListener creates a ResultsListener that writes through the given
// recorder. The results table is created if the recorder does not have it
// yet, so multiple simulations can share one recorder.
func NewResultsListener(recorder Recorder) *ResultsListener {
	l := &ResultsListener{
		recorder: recorder,
		runLog:   NewRunLog(recorder),
	}

	if !hasTable(recorder, resultsTable) {
		recorder.CreateTable(resultsTable, ResultEntry{})
	}

	return l
}

// Notify implements observer.Listener.
func (l *ResultsListener) Notify(evt sim.SimEvent) {
	switch evt.Kind {
	case sim.KindStart:
		l.runLog.Begin(evt.Sim)
	case sim.KindDone:
		l.runLog.Finish(evt.Sim)
	case sim.KindCollectResults:
		l.recordResults(evt)
	}
}

func (l *ResultsListener) recordResults(evt sim.SimEvent) {
	names := make([]string, 0, len(evt.Results))
	for name := range evt.Results {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		l.recorder.InsertData(resultsTable, ResultEntry{
			RunID: evt.Sim.ID(),
			Name:  name,
			Value: fmt.Sprint(evt.Results[name]),
		})
	}

	l.recorder.Flush()
}
