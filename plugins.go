package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	str "strings"
	"sync"

	"github.com/BurntSushi/toml"
)

//
// PLUGINS
//

// Provider is a named module of functions callable by scripts. arguments
// arrive as a JSON array; the result is JSON text, or ErrorMarker followed
// by a message.
type Provider interface {
	Name() string
	Functions() []string
	Dispatch(fn string, argsJSON string) string
}

// PluginRegistry maps exported function names to their providers. one per
// runtime.
type PluginRegistry struct {
	sync.RWMutex
	owners  *Lmap // lowercase function name -> module name
	modules map[string]Provider
}

func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{owners: lmcreate(), modules: make(map[string]Provider)}
}

// Register adds every function of p. registering the same module twice is
// a no-op; a name held by another module is a conflict and nothing from p
// is registered.
func (r *PluginRegistry) Register(p Provider) error {
	module := p.Name()
	fns := p.Functions()

	r.Lock()
	defer r.Unlock()
	var claimed []string
	release := func() {
		for _, k := range claimed {
			r.owners.lmdelete(k)
		}
	}
	for _, fn := range fns {
		if isBuiltin(fn) {
			release()
			return fef("plugin function '%s' from module '%s' clashes with a built-in", fn, module)
		}
		key := str.ToLower(fn)
		held := r.owners.lmexists(key)
		if owner, ok := r.owners.lmclaim(key, module); !ok {
			release()
			return fef("plugin function '%s' from module '%s' is already provided by '%s'", fn, module, owner)
		}
		if !held {
			claimed = append(claimed, key)
		}
	}
	r.modules[module] = p
	return nil
}

// Functions lists the lowercase function names owned by module.
func (r *PluginRegistry) Functions(module string) []string {
	var names []string
	for _, k := range r.owners.lmkeys() {
		if owner, ok := r.owners.lmget(k); ok && owner == module {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func (r *PluginRegistry) Has(name string) bool {
	return r.owners.lmexists(str.ToLower(name))
}

func (r *PluginRegistry) Loaded(module string) bool {
	r.RLock()
	defer r.RUnlock()
	_, found := r.modules[module]
	return found
}

// Modules lists the registered module names in order.
func (r *PluginRegistry) Modules() []string {
	r.RLock()
	defer r.RUnlock()
	names := make([]string, 0, len(r.modules))
	for n := range r.modules {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Call dispatches name to its provider with args encoded as a JSON list.
func (r *PluginRegistry) Call(name string, args []Value) (Value, error) {
	module, found := r.owners.lmget(str.ToLower(name))
	if !found {
		return Null, fef("plugin function '%s' not registered", name)
	}
	r.RLock()
	p := r.modules[module]
	r.RUnlock()

	res := p.Dispatch(exportedName(p, name), objectToJson(NewList(args...)))
	if str.HasPrefix(res, ErrorMarker) {
		return Null, raise(String(str.TrimSpace(res[len(ErrorMarker):])))
	}
	v, err := jsonToObject(res)
	if err != nil {
		return Null, fef("plugin %s returned bad result from %s(): %w", module, name, err)
	}
	return v, nil
}

// exportedName recovers the provider's own spelling of a function name.
func exportedName(p Provider, name string) string {
	for _, fn := range p.Functions() {
		if str.EqualFold(fn, name) {
			return fn
		}
	}
	return name
}

// pluginError formats a provider failure result.
func pluginError(format string, args ...any) string {
	return ErrorMarker + " " + sf(format, args...)
}

//
// LOADER
//

// PluginLoader resolves import names to providers: built-in modules first,
// then TOML manifests describing an external executable.
type PluginLoader struct {
	registry *PluginRegistry
	builtins map[string]func() Provider
	path     []string
	log      *Logger
}

func NewPluginLoader(registry *PluginRegistry, log *Logger) *PluginLoader {
	return &PluginLoader{
		registry: registry,
		builtins: map[string]func() Provider{
			"db":   func() Provider { return newDBProvider() },
			"time": func() Provider { return newTimeProvider() },
		},
		log: log,
	}
}

// SetSearchPath sets the directories searched for manifests after the
// importing script's own directory.
func (l *PluginLoader) SetSearchPath(dirs []string) {
	l.path = append([]string(nil), dirs...)
}

// Load registers the named module. baseDir is the importing script's
// directory.
func (l *PluginLoader) Load(name, baseDir string) error {
	if factory, found := l.builtins[str.ToLower(name)]; found {
		if l.registry.Loaded(str.ToLower(name)) {
			return nil
		}
		return l.registry.Register(factory())
	}

	path, err := l.findManifest(name, baseDir)
	if err != nil {
		return err
	}
	p, err := loadManifest(path)
	if err != nil {
		return err
	}
	if l.registry.Loaded(p.Name()) {
		return nil
	}
	if err := p.discover(); err != nil {
		return err
	}
	l.log.Info("plugin registered", map[string]any{"module": p.Name(), "manifest": path, "functions": len(p.fns)})
	return l.registry.Register(p)
}

func (l *PluginLoader) findManifest(name, baseDir string) (string, error) {
	file := name
	if !str.HasSuffix(str.ToLower(file), ".toml") {
		file += ".toml"
	}
	if filepath.IsAbs(file) {
		if _, err := os.Stat(file); err != nil {
			return "", fef("plugin manifest %s: %w", file, err)
		}
		return file, nil
	}
	dirs := append([]string{baseDir}, l.path...)
	for _, d := range dirs {
		candidate := filepath.Join(d, file)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fef("plugin module '%s' not found", name)
}

// pluginManifest is the TOML description of an executable provider.
//
//	name    = "greet"
//	command = "./greet-plugin"
//	args    = ["--quiet"]
type pluginManifest struct {
	Name    string   `toml:"name"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// execProvider runs an external program per call.
type execProvider struct {
	name    string
	command string
	args    []string
	fns     []string
}

func loadManifest(path string) (*execProvider, error) {
	var m pluginManifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fef("parse error in %s: %w", path, err)
	}
	if m.Name == "" || m.Command == "" {
		return nil, fef("plugin manifest %s needs both name and command", path)
	}
	cmd := m.Command
	if !filepath.IsAbs(cmd) && str.ContainsRune(cmd, filepath.Separator) {
		cmd = filepath.Join(filepath.Dir(path), cmd)
	}
	return &execProvider{name: m.Name, command: cmd, args: m.Args}, nil
}

func (p *execProvider) run(stdin string, extra ...string) (string, error) {
	args := append(append([]string{}, p.args...), extra...)
	cmd := exec.Command(p.command, args...)
	cmd.Stdin = str.NewReader(stdin)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		msg := str.TrimSpace(errb.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fef("%s", msg)
	}
	return str.TrimSpace(out.String()), nil
}

// discover asks the program for its function list.
func (p *execProvider) discover() error {
	res, err := p.run("", "functions")
	if err != nil {
		return fef("plugin %s: cannot list functions: %w", p.name, err)
	}
	v, err := jsonToObject(res)
	if err != nil || v.kind != KindList {
		return fef("plugin %s: function list must be a JSON array of names", p.name)
	}
	for _, e := range v.list.items {
		if e.kind != KindString || !isIdentifier(e.s) {
			return fef("plugin %s: bad function name %s", p.name, objectToJson(e))
		}
		p.fns = append(p.fns, e.s)
	}
	return nil
}

func (p *execProvider) Name() string        { return p.name }
func (p *execProvider) Functions() []string { return p.fns }

func (p *execProvider) Dispatch(fn, argsJSON string) string {
	res, err := p.run(argsJSON, "call", fn)
	if err != nil {
		return pluginError("%s.%s: %v", p.name, fn, err)
	}
	if res == "" {
		return "null"
	}
	return res
}
