package logger

import (
	"context"
	"fmt"
	"os"
)

// Logger defines an interface that is compatible with golang's standard log system. To use it
//   configure a context using this packages setup functions, then create a LoggerObject with
//   NewLoggerObject and that context. It is then mostly interchangeable with a golang log object
//   though you still need to use this interface as the type in function parameters.
type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})

	Fatal(v ...interface{})
	Fatalf(format string, v ...interface{})
	Fatalln(v ...interface{})

	Panic(v ...interface{})
	Panicf(format string, v ...interface{})
	Panicln(v ...interface{})
}

type LoggerObject struct {
	ctx context.Context
}

func NewLoggerObject(ctx context.Context) *LoggerObject {
	return &LoggerObject{ctx}
}

func (l *LoggerObject) Print(v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelInfo, GetCaller(1), nil, fmt.Sprint(v...))
}

func (l *LoggerObject) Printf(format string, v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelInfo, GetCaller(1), nil, format, v...)
}

func (l *LoggerObject) Println(v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelInfo, GetCaller(1), nil, fmt.Sprint(v...))
}

func (l *LoggerObject) Fatal(v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelFatal, GetCaller(1), nil, fmt.Sprint(v...))
	os.Exit(1)
}

func (l *LoggerObject) Fatalf(format string, v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelFatal, GetCaller(1), nil, format, v...)
	os.Exit(1)
}

func (l *LoggerObject) Fatalln(v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelFatal, GetCaller(1), nil, fmt.Sprint(v...))
	os.Exit(1)
}

func (l *LoggerObject) Panic(v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelPanic, GetCaller(1), nil, fmt.Sprint(v...))
	panic(fmt.Sprint(v...))
}

func (l *LoggerObject) Panicf(format string, v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelPanic, GetCaller(1), nil, format, v...)
	panic(fmt.Sprintf(format, v...))
}

func (l *LoggerObject) Panicln(v ...interface{}) {
	LogDepthWithFields(l.ctx, LevelPanic, GetCaller(1), nil, fmt.Sprint(v...))
	panic(fmt.Sprint(v...))
}

func (l *LoggerObject) AddFields(fields []Field) {
	l.ctx = ContextWithLogFields(l.ctx, fields...)
}
