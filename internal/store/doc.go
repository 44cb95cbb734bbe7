// Package store defines the persistence interfaces and shared errors used
// by the rest of the application. Implementations live under
// internal/platform, one package per storage engine.
package store
