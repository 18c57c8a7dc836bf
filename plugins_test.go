package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	str "strings"
	"testing"
)

// fakeProvider answers from a fixed table of canned results.
type fakeProvider struct {
	name    string
	results map[string]string
	calls   []string
}

func (p *fakeProvider) Name() string { return p.name }

func (p *fakeProvider) Functions() []string {
	var fns []string
	for fn := range p.results {
		fns = append(fns, fn)
	}
	return fns
}

func (p *fakeProvider) Dispatch(fn, argsJSON string) string {
	p.calls = append(p.calls, fn+" "+argsJSON)
	return p.results[fn]
}

func TestRegisterConflicts(t *testing.T) {
	r := NewPluginRegistry()
	a := &fakeProvider{name: "a", results: map[string]string{"greet": `"hi"`}}
	b := &fakeProvider{name: "b", results: map[string]string{"Greet": `"yo"`, "other": "1"}}

	if err := r.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(a); err != nil {
		t.Errorf("registering the same module twice: %v", err)
	}
	if err := r.Register(b); err == nil || !str.Contains(err.Error(), "already provided") {
		t.Errorf("expected a conflict, got %v", err)
	}
	if r.Has("other") || r.Loaded("b") {
		t.Error("a conflicting module must register nothing")
	}
	clash := &fakeProvider{name: "c", results: map[string]string{"length": "0"}}
	if err := r.Register(clash); err == nil {
		t.Error("a built-in name must be rejected")
	}
	if mods := r.Modules(); len(mods) != 1 || mods[0] != "a" {
		t.Errorf("modules = %v", mods)
	}
	if fns := r.Functions("a"); len(fns) != 1 || fns[0] != "greet" {
		t.Errorf("functions of a = %v", fns)
	}
	if fns := r.Functions("b"); len(fns) != 0 {
		t.Errorf("rejected module kept %v", fns)
	}
}

func TestPluginCall(t *testing.T) {
	p := &fakeProvider{name: "fake", results: map[string]string{
		"shout": `{"said": "HI", "n": 2}`,
		"fail":  ErrorMarker + " no luck",
		"bad":   "{not json",
	}}
	r := NewPluginRegistry()
	if err := r.Register(p); err != nil {
		t.Fatal(err)
	}

	v, err := r.Call("SHOUT", []Value{String("hi"), Number(1)})
	if err != nil {
		t.Fatal(err)
	}
	if objectToJson(v) != `{"said": "HI", "n": 2}` {
		t.Errorf("result = %s", objectToJson(v))
	}
	if len(p.calls) != 1 || p.calls[0] != `shout ["hi", 1]` {
		t.Errorf("dispatch saw %q", p.calls)
	}

	_, err = r.Call("fail", nil)
	se := asScriptError(err)
	if se == nil || se.Payload.Str() != "no luck" {
		t.Errorf("error marker gave %v", err)
	}
	if _, err := r.Call("bad", nil); err == nil {
		t.Error("malformed JSON result should fail")
	}
	if _, err := r.Call("missing", nil); err == nil {
		t.Error("unregistered function should fail")
	}
}

func TestPluginFromScript(t *testing.T) {
	var out bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	in := NewInterpreter(host)
	p := &fakeProvider{name: "fake", results: map[string]string{
		"greet": `"hello"`,
		"fail":  ErrorMarker + " refused",
	}}
	if err := in.Plugins().Register(p); err != nil {
		t.Fatal(err)
	}
	src := "> greet(\"bob\")\n* fail()\n! ex\n  > \"caught \" + ex\n}\n"
	if err := in.RunSource("p.ms", src); err != nil {
		t.Fatal(err)
	}
	if out.String() != "hello\ncaught refused\n" {
		t.Errorf("got %q", out.String())
	}
}

func TestTimePlugin(t *testing.T) {
	var out bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	in := NewInterpreter(host)
	src := `+ "time"
$ t = parseTime("2024-03-05 06:07:08")
> formatTime(t)
> formatTime(t, "date")
> get(timeParts(t), "month")
`
	if err := in.RunSource("t.ms", src); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2024-03-05 06:07:08\n2024-03-05\n3\n" {
		t.Errorf("got %q", out.String())
	}
	if err := in.Loader().Load("time", "."); err != nil {
		t.Errorf("loading a module twice: %v", err)
	}
}

func TestDBPlugin(t *testing.T) {
	var out bytes.Buffer
	host := DefaultHost()
	host.Out = &out
	in := NewInterpreter(host)
	src := `+ "db"
$ h = dbOpen("sqlite", ":memory:")
* dbExec(h, "create table t (a integer, b text)")
> dbExec(h, "insert into t values (?, ?), (?, ?)", 1, "x", 2, null)
$ rows = dbQuery(h, "select a, b from t order by a")
> toJson(rows)
> dbClose(h)
* dbQuery(h, "select 1")
! ex
  > "closed"
}
`
	if err := in.RunSource("d.ms", src); err != nil {
		t.Fatal(err)
	}
	want := "2\n" + `[{"a": 1, "b": "x"}, {"a": 2, "b": null}]` + "\ntrue\nclosed\n"
	if out.String() != want {
		t.Errorf("got %q, want %q", out.String(), want)
	}
}

func TestManifestPlugin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script provider")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
case "$1" in
functions) echo '["double"]' ;;
call) read args; echo "$args" | sed 's/^\[\(.*\)\]$/\1/' | awk '{print $1 * 2}' ;;
esac
`
	if err := os.WriteFile(filepath.Join(dir, "double.sh"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	manifest := "name = \"doubler\"\ncommand = \"./double.sh\"\n"
	if err := os.WriteFile(filepath.Join(dir, "doubler.toml"), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}

	in := NewInterpreter(nil)
	in.Loader().SetSearchPath([]string{dir})
	if err := in.Loader().Load("doubler", t.TempDir()); err != nil {
		t.Fatal(err)
	}
	v, err := in.Plugins().Call("double", []Value{Number(21)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Num() != 42 {
		t.Errorf("double(21) = %s", v.String())
	}
}

func TestManifestNeedsCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(path, []byte("name = \"broken\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadManifest(path); err == nil {
		t.Error("a manifest without a command should be rejected")
	}
}
