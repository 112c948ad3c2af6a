package recorder

import "LiveCounters/internal/model"

// Recorder archives what the display surface was shown. Generator state is
// never read back from it.
type Recorder interface {
	RecordTick(snap *model.Snapshot) error
	RecordCards(cards []model.InfoCard) error
	Close() error
}
