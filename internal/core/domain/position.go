package domain

import (
	"math"
	"time"
)

// PositionSample is one raw reading from a location source. It is never mutated
// after it is produced.
type PositionSample struct {
	Latitude       float64   `json:"latitude" bson:"latitude"`
	Longitude      float64   `json:"longitude" bson:"longitude"`
	AccuracyMeters float64   `json:"accuracy_m" bson:"accuracy_m"`
	Altitude       *float64  `json:"altitude,omitempty" bson:"altitude,omitempty"`
	Heading        *float64  `json:"heading,omitempty" bson:"heading,omitempty"`
	SpeedMps       *float64  `json:"speed_mps,omitempty" bson:"speed_mps,omitempty"`
	CapturedAt     time.Time `json:"captured_at" bson:"captured_at"`
}

// Valid reports whether the sample can take part in an estimate.
func (s PositionSample) Valid() bool {
	if math.IsNaN(s.Latitude) || math.IsNaN(s.Longitude) || math.IsNaN(s.AccuracyMeters) {
		return false
	}
	if math.IsInf(s.AccuracyMeters, 0) || s.AccuracyMeters <= 0 {
		return false
	}
	return s.Latitude >= -90 && s.Latitude <= 90 && s.Longitude >= -180 && s.Longitude <= 180
}

// SampleOptions are passed through to the location source.
type SampleOptions struct {
	// SourceID identifies the device or caller whose position is requested.
	SourceID     string
	HighAccuracy bool
	// Timeout bounds a single one-shot read. Zero lets the source decide.
	Timeout time.Duration
	// MaxAge accepts a cached reading no older than this. Zero demands a fresh one.
	MaxAge time.Duration
}

// Fix is the best-estimate position produced from one or more samples.
type Fix struct {
	Latitude       float64   `json:"latitude" bson:"latitude"`
	Longitude      float64   `json:"longitude" bson:"longitude"`
	AccuracyMeters float64   `json:"accuracy_m" bson:"accuracy_m"`
	SamplesUsed    int       `json:"samples_used" bson:"samples_used"`
	ProducedAt     time.Time `json:"produced_at" bson:"produced_at"`
	// Degraded marks a fix returned after refinement ran out of time.
	Degraded bool `json:"degraded,omitempty" bson:"degraded,omitempty"`
}

// Valid reports whether the fix carries usable coordinates.
func (f Fix) Valid() bool {
	return PositionSample{Latitude: f.Latitude, Longitude: f.Longitude, AccuracyMeters: f.AccuracyMeters}.Valid()
}
