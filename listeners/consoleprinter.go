// Package listeners provides ready-made simulation listeners.
package listeners

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/kishu/observer"
	"github.com/sarchlab/kishu/sim"
)

// A ConsolePrinter forwards print notifications to a logrus logger, mapping
// print categories onto logrus levels. Lifecycle transitions are logged at
// debug level. A printer is created fresh for every simulation instance.
type ConsolePrinter struct {
	logger *logrus.Logger
	max    sim.MsgCategory
}

var _ observer.Listener[sim.SimEvent] = (*ConsolePrinter)(nil)

// NewConsolePrinter creates a printer that drops print notifications with a
// category above max. A nil logger selects the logrus standard logger.
func NewConsolePrinter(logger *logrus.Logger, max sim.MsgCategory) *ConsolePrinter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &ConsolePrinter{
		logger: logger,
		max:    max,
	}
}

// Notify implements observer.Listener.
func (p *ConsolePrinter) Notify(evt sim.SimEvent) {
	switch evt.Kind {
	case sim.KindPrint:
		p.print(evt)
	case sim.KindCollectResults:
		// Result collection belongs to other listeners.
	default:
		p.entry(evt).Debugf("simulation %s", evt.Kind)
	}
}

func (p *ConsolePrinter) print(evt sim.SimEvent) {
	if evt.Category > p.max {
		return
	}

	entry := p.entry(evt)

	switch evt.Category {
	case sim.CategoryError:
		entry.Error(evt.Message)
	case sim.CategoryWarn:
		entry.Warn(evt.Message)
	case sim.CategoryInfo:
		entry.Info(evt.Message)
	case sim.CategoryDebug:
		entry.Debug(evt.Message)
	default:
		entry.Trace(evt.Message)
	}
}

func (p *ConsolePrinter) entry(evt sim.SimEvent) *logrus.Entry {
	return p.logger.WithFields(logrus.Fields{
		"simulation": evt.Sim.Name(),
		"time":       float64(evt.Sim.Now()),
	})
}
