package recorder

import "LiveCounters/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTick(_ *model.Snapshot) error   { return nil }
func (n *NoopRecorder) RecordCards(_ []model.InfoCard) error { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
