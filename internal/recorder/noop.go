package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBar(_ *BarRecord) error { return nil }

func (n *NoopRecorder) RecordFetch(evt *FetchEvent) (string, error) {
	if evt == nil {
		return "", nil
	}
	return evt.FetchID, nil
}

func (n *NoopRecorder) LatestBar(_ string) (*BarRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error                           { return nil }
