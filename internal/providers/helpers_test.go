package providers

import (
	"reactledger/internal/models"
	"time"
)

// local test doubles; testutil imports this package

type nopLogger struct{}

func (m *nopLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopLogger) Warnf(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *nopLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *nopLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *nopLogger) Close()                                        {}

type recordingMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
}

func (m *recordingMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *recordingMetrics) ObserveRequestDuration(_ string, _ time.Duration)     { m.durationCalls++ }
func (m *recordingMetrics) IncCacheHits()                                        { m.hits++ }
func (m *recordingMetrics) IncCacheMisses()                                      { m.misses++ }
func (m *recordingMetrics) ObservePersistenceDuration(_ string, _ time.Duration) {}
func (m *recordingMetrics) ObserveRebuild(_ *models.RebuildReport)               {}
func (m *recordingMetrics) IncChannelsSkipped()                                  {}
func (m *recordingMetrics) IncQueries(_ string)                                  {}
func (m *recordingMetrics) SetLedgerEntries(_ int)                               {}
