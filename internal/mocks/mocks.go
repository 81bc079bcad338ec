// File: internal/mocks/mocks.go
package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/xkilldash9x/tgcontacts/internal/config"
	"github.com/xkilldash9x/tgcontacts/internal/export"
)

// -- Config Mock --

// MockConfig mocks the config.Interface.
type MockConfig struct {
	mock.Mock
}

// --- Getters ---

func (m *MockConfig) Logger() config.LoggerConfig {
	args := m.Called()
	return args.Get(0).(config.LoggerConfig)
}

func (m *MockConfig) Convert() config.ConvertConfig {
	args := m.Called()
	return args.Get(0).(config.ConvertConfig)
}

func (m *MockConfig) Countries() map[string]config.CountryConfig {
	args := m.Called()
	return args.Get(0).(map[string]config.CountryConfig)
}

// --- Setters ---

func (m *MockConfig) SetConvertNameMode(s string)     { m.Called(s) }
func (m *MockConfig) SetConvertCountry(s string)      { m.Called(s) }
func (m *MockConfig) SetConvertDedupe(s string)       { m.Called(s) }
func (m *MockConfig) SetConvertFormat(s string)       { m.Called(s) }
func (m *MockConfig) SetConvertNoColor(b bool)        { m.Called(b) }
func (m *MockConfig) SetConvertNormalizeNames(b bool) { m.Called(b) }

// -- Record Writer Mock --

// MockRecordWriter mocks export.RecordWriter.
type MockRecordWriter struct {
	mock.Mock
}

func (m *MockRecordWriter) Write(rec export.Record) error {
	args := m.Called(rec)
	return args.Error(0)
}

func (m *MockRecordWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

var (
	_ config.Interface    = (*MockConfig)(nil)
	_ export.RecordWriter = (*MockRecordWriter)(nil)
)
