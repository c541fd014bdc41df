package metrics

import (
	"fmt"

	"github.com/jgoulah/cgmreport/pkg/models"
)

// NoAutoModeEventError is returned when the insulin log never records the
// switch to auto mode
type NoAutoModeEventError struct {
	Events int // Number of events scanned
}

func (e *NoAutoModeEventError) Error() string {
	return fmt.Sprintf("no %q alarm among %d insulin events", models.AutoModeMarker, e.Events)
}

// EmptyWindowError is returned under the error policy when a window has no
// readings for an epoch
type EmptyWindowError struct {
	Mode   models.Mode
	Window models.TimeWindow
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("%s epoch has no %s readings", e.Mode, e.Window)
}
