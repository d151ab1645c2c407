// Package config implements the rc-file format from spec §6
// (line-oriented name=value, include, dotted alias/uda/report/holiday
// sections) plus the gotas-style package-level config/InitConfig(flags)
// pattern: a process-wide struct populated once from flags and the
// environment, with apex/log wired to the cli handler exactly as
// gotas/pkg/config.InitConfig does.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pkg/errors"
	"github.com/szaffarano/gotask/internal/errs"
)

const maxIncludeDepth = 10

// Flags mirrors gotas/pkg/config.Flags: the command line surface that
// seeds InitConfig, generalized from taskd's admin flags to task's
// --data/--config/--quiet/--debug.
type Flags struct {
	ConfigFile string
	DataDir    string
	Quiet      bool
	Debug      bool
}

// Config is the parsed, overlay-resolved runtime configuration: the rc
// file's flat key/value space plus the structured views spec §6 calls
// out (aliases, UDAs, reports, holidays, default.command).
type Config struct {
	Flags
	Values   map[string]string
	Aliases  map[string]string
	UDAs     map[string]map[string]string
	Reports  map[string]map[string]string
	Holidays map[string]map[string]string
	Entities *Entities
}

var conf Config

// InitConfig loads the rc file named by flags (falling back to
// $TASKRC, then $TASKDATA/config, then ~/.taskrc) and wires apex/log,
// following gotas/pkg/config.InitConfig's lookup-then-parse-then-log
// shape.
func InitConfig(flags Flags) error {
	log.SetHandler(cli.Default)
	switch {
	case flags.Debug:
		log.SetLevel(log.DebugLevel)
	case flags.Quiet:
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	path, err := resolveConfigPath(flags)
	if err != nil {
		return err
	}

	c, err := Load(path)
	if err != nil {
		return err
	}
	c.Flags = flags
	if c.Flags.DataDir == "" {
		c.Flags.DataDir = resolveDataDir(flags)
	}

	conf = *c
	log.Debugf("config file initialized: %s", path)
	return nil
}

func resolveConfigPath(flags Flags) (string, error) {
	if flags.ConfigFile != "" {
		return flags.ConfigFile, nil
	}
	if v, ok := os.LookupEnv("TASKRC"); ok {
		return expandHome(v), nil
	}
	if flags.DataDir != "" {
		return filepath.Join(flags.DataDir, "config"), nil
	}
	if v, ok := os.LookupEnv("TASKDATA"); ok {
		return filepath.Join(v, "config"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errs.StoreError(err, "resolving home directory for default rc file")
	}
	return filepath.Join(home, ".taskrc"), nil
}

func resolveDataDir(flags Flags) string {
	if flags.DataDir != "" {
		return flags.DataDir
	}
	if v, ok := os.LookupEnv("TASKDATA"); ok {
		return expandHome(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".task"
	}
	return filepath.Join(home, ".task")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// Get returns the process-wide configuration populated by InitConfig,
// mirroring gotas/pkg/config.Get.
func Get() *Config { return &conf }

// Load parses path (and its transitive includes) into a Config, seeded
// from the embedded default entity catalog before the rc file's alias/
// uda declarations register on top of it.
func Load(path string) (*Config, error) {
	entities, err := NewEntities()
	if err != nil {
		return nil, err
	}
	c := &Config{
		Values:   map[string]string{},
		Aliases:  map[string]string{},
		UDAs:     map[string]map[string]string{},
		Reports:  map[string]map[string]string{},
		Holidays: map[string]map[string]string{},
		Entities: entities,
	}

	if _, err := os.Stat(path); err == nil {
		if err := c.parseFile(path, 0); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, errs.StoreError(err, "stat config file %s", path)
	}

	c.index()
	return c, nil
}

func (c *Config) parseFile(path string, depth int) error {
	if depth > maxIncludeDepth {
		return errs.ParseError(path, nil, "include nesting exceeds %d levels", maxIncludeDepth)
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening config file %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "include "); ok {
			incPath := expandHome(strings.TrimSpace(rest))
			if !filepath.IsAbs(incPath) {
				incPath = filepath.Join(filepath.Dir(path), incPath)
			}
			if err := c.parseFile(incPath, depth+1); err != nil {
				return err
			}
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return errs.ParseError(line, nil, "malformed config line, expected name=value")
		}
		c.Values[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	return nil
}

// index fans the flat Values map out into the structured views spec §6
// names: alias.<name>, uda.<name>.*, report.<name>.*, holiday.<key>.*.
func (c *Config) index() {
	for key, value := range c.Values {
		switch {
		case strings.HasPrefix(key, "alias."):
			name := strings.TrimPrefix(key, "alias.")
			c.Aliases[name] = value
		case strings.HasPrefix(key, "uda."):
			name, field, ok := splitDotted(strings.TrimPrefix(key, "uda."))
			if ok {
				section(c.UDAs, name)[field] = value
				c.Entities.Add(CategoryUDA, name)
				c.Entities.Add(CategoryAttr, name)
			}
		case strings.HasPrefix(key, "report."):
			name, field, ok := splitDotted(strings.TrimPrefix(key, "report."))
			if ok {
				section(c.Reports, name)[field] = value
			}
		case strings.HasPrefix(key, "holiday."):
			name, field, ok := splitDotted(strings.TrimPrefix(key, "holiday."))
			if ok {
				section(c.Holidays, name)[field] = value
			}
		}
	}
}

func splitDotted(s string) (name, field string, ok bool) {
	name, field, found := strings.Cut(s, ".")
	return name, field, found
}

func section(m map[string]map[string]string, name string) map[string]string {
	s, ok := m[name]
	if !ok {
		s = map[string]string{}
		m[name] = s
	}
	return s
}

// DefaultCommand returns the `default.command` rc value (spec §6), used
// when argv carries no classified command and no other content either.
func (c *Config) DefaultCommand() string { return c.Values["default.command"] }

// ApplyOverride handles an `rc.name[:=]value` pipeline override (spec
// §4.A "Overrides"), taking effect for the remainder of this process
// only — it never writes back to the rc file.
func (c *Config) ApplyOverride(name, value string) {
	c.Values[name] = value
	c.index()
}
