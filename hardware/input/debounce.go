package input

// Debouncer keeps consecutive pressed poll count per control.
// Press event fires on the poll where count reaches window,
// long event (when hold > window) fires once when count reaches hold.
type Debouncer struct {
	window uint16
	hold   uint16
	limit  uint16
	count  [ControlCount]uint16
}

// NewDebouncer hold=0 disables long events. Window less than 1 is 1.
func NewDebouncer(window, hold uint16) *Debouncer {
	if window < 1 {
		window = 1
	}
	if hold <= window {
		hold = 0
	}
	limit := window
	if hold > limit {
		limit = hold
	}
	return &Debouncer{window: window, hold: hold, limit: limit}
}

func (self *Debouncer) Window() uint16 { return self.window }
func (self *Debouncer) Hold() uint16   { return self.hold }

// Poll appends events for this poll to dst in scan order.
// No allocation when cap(dst) >= 2*ControlCount.
func (self *Debouncer) Poll(raw Levels, dst []KeyEvent) []KeyEvent {
	for i := 0; i < ControlCount; i++ {
		if !raw[i] {
			self.count[i] = 0
			continue
		}
		if self.count[i] >= self.limit {
			continue
		}
		self.count[i]++
		switch self.count[i] {
		case self.window:
			dst = append(dst, KeyEvent{Control: Control(i)})
		case self.hold:
			dst = append(dst, KeyEvent{Control: Control(i), Long: true})
		}
	}
	return dst
}

// Reset forgets history, next press must span full window.
func (self *Debouncer) Reset() {
	self.count = [ControlCount]uint16{}
}
