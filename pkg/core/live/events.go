package live

import "github.com/finanvoice/voz/pkg/core/finance"

// Status is the session connection state surfaced to the UI.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// Source attributes a meter reading to one side of the conversation.
type Source string

const (
	SourceUser Source = "user"
	SourceAI   Source = "ai"
)

// View names the app screens the assistant can navigate to.
type View string

const (
	ViewHome     View = "HOME"
	ViewExtract  View = "EXTRACT"
	ViewCalendar View = "CALENDAR"
	ViewCharts   View = "CHARTS"
)

// ValidView reports whether v names a known screen.
func ValidView(v View) bool {
	switch v {
	case ViewHome, ViewExtract, ViewCalendar, ViewCharts:
		return true
	}
	return false
}

// Callbacks receives session events. All methods are invoked from session
// goroutines; implementations must not block.
type Callbacks interface {
	OnStatusChange(Status)
	OnError(message string)
	OnAudioLevel(source Source, level float64)
	OnTransactionAdded(finance.Transaction)
	OnNavigate(View)
	OnLogout()
}

// Hooks adapts optional funcs into a Callbacks. Nil fields are no-ops.
type Hooks struct {
	StatusChange     func(Status)
	Error            func(message string)
	AudioLevel       func(Source, float64)
	TransactionAdded func(finance.Transaction)
	Navigate         func(View)
	Logout           func()
}

func (h *Hooks) OnStatusChange(s Status) {
	if h.StatusChange != nil {
		h.StatusChange(s)
	}
}

func (h *Hooks) OnError(message string) {
	if h.Error != nil {
		h.Error(message)
	}
}

func (h *Hooks) OnAudioLevel(source Source, level float64) {
	if h.AudioLevel != nil {
		h.AudioLevel(source, level)
	}
}

func (h *Hooks) OnTransactionAdded(t finance.Transaction) {
	if h.TransactionAdded != nil {
		h.TransactionAdded(t)
	}
}

func (h *Hooks) OnNavigate(v View) {
	if h.Navigate != nil {
		h.Navigate(v)
	}
}

func (h *Hooks) OnLogout() {
	if h.Logout != nil {
		h.Logout()
	}
}
