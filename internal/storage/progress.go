package storage

// ProgressReporter receives import progress from SnapshotWriter.
type ProgressReporter interface {
	OnImportStart(totalRecords int)
	OnRecordsWritten(kind string, n int)
	OnImportComplete()
}

// NoOpProgressReporter discards all progress events.
type NoOpProgressReporter struct{}

func (NoOpProgressReporter) OnImportStart(int)            {}
func (NoOpProgressReporter) OnRecordsWritten(string, int) {}
func (NoOpProgressReporter) OnImportComplete()            {}
