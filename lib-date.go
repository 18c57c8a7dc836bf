package main

import (
	"math"
	"time"

	"github.com/araddon/dateparse"
)

const defaultTimeLayout = "2006-01-02 15:04:05"

// named layouts accepted by formatTime
var timeLayouts = map[string]string{
	"rfc3339": time.RFC3339,
	"rfc1123": time.RFC1123,
	"kitchen": time.Kitchen,
	"date":    "2006-01-02",
	"time":    "15:04:05",
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func fromEpoch(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*float64(time.Second)))
}

func buildDateLib() {

	features["date"] = Feature{version: 1, category: "date"}
	categories["date"] = []string{"now", "timestamp"}

	slhelp["now"] = LibHelp{in: "", out: "number", action: "Seconds since the unix epoch, with fraction."}
	stdlib["now"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("now", args, 1, "0"); !ok {
			return Null, err
		}
		return Number(epochSeconds(time.Now())), nil
	}

	slhelp["timestamp"] = LibHelp{in: "year,month,day,hour,minute,second", out: "number", action: "Epoch seconds for a local date and time. out of range fields roll over."}
	stdlib["timestamp"] = func(ev *Evaluator, args ...Value) (ret Value, err error) {
		if ok, err := expect_args("timestamp", args, 1, "6", "number", "number", "number", "number", "number", "number"); !ok {
			return Null, err
		}
		sec, frac := math.Modf(args[5].num)
		t := time.Date(intArg(args[0]), time.Month(intArg(args[1])), intArg(args[2]),
			intArg(args[3]), intArg(args[4]), int(sec), int(frac*float64(time.Second)), time.Local)
		return Number(epochSeconds(t)), nil
	}
}

//
// time plugin module
//

type timeProvider struct{}

func newTimeProvider() *timeProvider { return &timeProvider{} }

func (p *timeProvider) Name() string { return "time" }

func (p *timeProvider) Functions() []string {
	return []string{"parseTime", "formatTime", "timeParts"}
}

func (p *timeProvider) Dispatch(fn, argsJSON string) string {
	av, err := jsonToObject(argsJSON)
	if err != nil || av.kind != KindList {
		return pluginError("time.%s: bad argument list", fn)
	}
	args := av.list.Items()

	switch fn {
	case "parseTime":
		if ok, err := expect_args(fn, args, 1, "1", "string"); !ok {
			return pluginError("%v", err)
		}
		t, err := dateparse.ParseLocal(args[0].s)
		if err != nil {
			return pluginError("parseTime(): %v", err)
		}
		return objectToJson(Number(epochSeconds(t)))

	case "formatTime":
		if ok, err := expect_args(fn, args, 2, "1", "number", "2", "number", "string"); !ok {
			return pluginError("%v", err)
		}
		layout := defaultTimeLayout
		if len(args) == 2 {
			layout = args[1].s
			if named, found := timeLayouts[layout]; found {
				layout = named
			}
		}
		return objectToJson(String(fromEpoch(args[0].num).Format(layout)))

	case "timeParts":
		if ok, err := expect_args(fn, args, 1, "1", "number"); !ok {
			return pluginError("%v", err)
		}
		t := fromEpoch(args[0].num)
		parts := NewIndex()
		for _, f := range []struct {
			k string
			v int
		}{
			{"year", t.Year()}, {"month", int(t.Month())}, {"day", t.Day()},
			{"hour", t.Hour()}, {"minute", t.Minute()}, {"second", t.Second()},
			{"weekday", int(t.Weekday())}, {"yearday", t.YearDay()},
		} {
			parts.idx.Set(StringKey(f.k), Number(float64(f.v)))
		}
		return objectToJson(parts)
	}
	return pluginError("time: unknown function %s", fn)
}
