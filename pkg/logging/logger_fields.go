package logging

import "time"

func String(key, value string) Field          { return Field{Key: key, Value: value} }
func Int(key string, value int) Field         { return Field{Key: key, Value: value} }
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field       { return Field{Key: key, Value: value} }
func Any(key string, value any) Field         { return Field{Key: key, Value: value} }

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// Domain helpers

func Component(name string) Field   { return String("component", name) }
func EntityID(id string) Field      { return String("entity_id", id) }
func Session(id string) Field       { return String("session", id) }
func NodeCount(n int) Field         { return Int("nodes", n) }
func EdgeCount(n int) Field         { return Int("edges", n) }
func Iterations(n int) Field        { return Int("iterations", n) }
func Trigger(t string) Field        { return String("trigger", t) }
func Path(p string) Field           { return String("path", p) }
func Latency(d time.Duration) Field { return Duration("latency", d) }
