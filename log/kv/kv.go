// Package kv provides the structured log field constructors used at
// every call site across the driver, grounded on the teacher's
// log/structural.go record.addField shape.
package kv

import (
	"fmt"
	"time"
)

// Field is one key/value pair attached to a log record.
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Latency is shorthand for Duration("latency", time.Since(start)),
// matching the teacher's call-site pattern of timing every RPC.
func Latency(start time.Time) Field {
	return Field{Key: "latency", Value: time.Since(start)}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Stringer(key string, value fmt.Stringer) Field {
	return Field{Key: key, Value: value.String()}
}
