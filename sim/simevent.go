package sim

// SimEventKind enumerates the notifications a simulation fires over its
// lifetime.
type SimEventKind int

// The notification kinds, in the order a complete lifecycle fires them.
// CollectResults and Print fire on demand.
const (
	KindInit SimEventKind = iota
	KindStart
	KindEnd
	KindDone
	KindCollectResults
	KindPrint
)

func (k SimEventKind) String() string {
	switch k {
	case KindInit:
		return "Init"
	case KindStart:
		return "Start"
	case KindEnd:
		return "End"
	case KindDone:
		return "Done"
	case KindCollectResults:
		return "CollectResults"
	case KindPrint:
		return "Print"
	default:
		return "Unknown"
	}
}

// MsgCategory grades print notifications by severity. Categories are ordered
// so that listeners can filter; the simulation itself does not filter.
type MsgCategory int

// The print categories, from most to least severe.
const (
	CategoryOff MsgCategory = iota
	CategoryError
	CategoryWarn
	CategoryInfo
	CategoryDebug
	CategoryTrace
	CategoryAll
)

func (c MsgCategory) String() string {
	switch c {
	case CategoryOff:
		return "Off"
	case CategoryError:
		return "Error"
	case CategoryWarn:
		return "Warn"
	case CategoryInfo:
		return "Info"
	case CategoryDebug:
		return "Debug"
	case CategoryTrace:
		return "Trace"
	case CategoryAll:
		return "All"
	default:
		return "Unknown"
	}
}

// A SimEvent is a notification delivered to simulation listeners. Kind
// selects the variant. Category and Message are only set for Print events.
// Results carries the live result map for CollectResults events, so that
// listeners can contribute entries.
type SimEvent struct {
	Kind SimEventKind
	Sim  *Simulation

	Category MsgCategory
	Message  string

	Results map[string]any
}
