// Package schedule manages the launchd agent that runs cleanups on a timer.
package schedule

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
	"time"

	"github.com/quartzclay/reclaim/internal/config"
)

const (
	agentLabel = "com.quartzclay.reclaim"
	plistName  = agentLabel + ".plist"

	// Scheduled runs fire off-peak.
	runHour   = 3
	runMinute = 30
)

// Frequency is how often a scheduled cleanup runs.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

// ParseFrequency validates a configured frequency string.
func ParseFrequency(s string) (Frequency, error) {
	switch Frequency(s) {
	case Daily, Weekly, Monthly:
		return Frequency(s), nil
	default:
		return "", fmt.Errorf("unknown schedule frequency %q", s)
	}
}

// interval returns the launchd StartInterval in seconds.
func (f Frequency) interval() int {
	switch f {
	case Daily:
		return 86400
	case Monthly:
		return 2592000
	default:
		return 604800
	}
}

var plistTemplate = template.Must(template.New("plist").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>{{.Label}}</string>
	<key>ProgramArguments</key>
	<array>
		<string>{{.Program}}</string>
		<string>clean</string>
		<string>--force</string>
	</array>
	<key>StartInterval</key>
	<integer>{{.Interval}}</integer>
	<key>StartCalendarInterval</key>
	<dict>
		<key>Hour</key>
		<integer>{{.Hour}}</integer>
		<key>Minute</key>
		<integer>{{.Minute}}</integer>
	</dict>
	<key>StandardOutPath</key>
	<string>{{.StdoutLog}}</string>
	<key>StandardErrorPath</key>
	<string>{{.StderrLog}}</string>
	<key>RunAtLoad</key>
	<false/>
</dict>
</plist>
`))

type plistData struct {
	Label     string
	Program   string
	Interval  int
	Hour      int
	Minute    int
	StdoutLog string
	StderrLog string
}

// renderPlist produces the launchd agent definition. Pure so it can be
// verified without touching launchd.
func renderPlist(program string, freq Frequency) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	logDir := filepath.Join(home, "Library", "Logs")

	var buf bytes.Buffer

	err = plistTemplate.Execute(&buf, plistData{
		Label:     agentLabel,
		Program:   program,
		Interval:  freq.interval(),
		Hour:      runHour,
		Minute:    runMinute,
		StdoutLog: filepath.Join(logDir, "reclaim.log"),
		StderrLog: filepath.Join(logDir, "reclaim.error.log"),
	})
	if err != nil {
		return "", fmt.Errorf("rendering agent plist: %w", err)
	}

	return buf.String(), nil
}

// Status is the current scheduling state.
type Status struct {
	Enabled          bool
	Frequency        Frequency
	NextRun          time.Time
	SystemConfigured bool
}

// Scheduler installs and removes the system-level cleanup schedule.
type Scheduler struct {
	cfg config.Schedule

	agentsDir string
	launchctl func(args ...string) error
}

// New creates a Scheduler for the user's LaunchAgents directory.
func New(cfg config.Schedule) (*Scheduler, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	return &Scheduler{
		cfg:       cfg,
		agentsDir: filepath.Join(home, "Library", "LaunchAgents"),
		launchctl: runLaunchctl,
	}, nil
}

func runLaunchctl(args ...string) error {
	out, err := exec.Command("launchctl", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("launchctl %s: %w: %s", args[0], err, bytes.TrimSpace(out))
	}

	return nil
}

func (s *Scheduler) plistPath() string {
	return filepath.Join(s.agentsDir, plistName)
}

// Install writes the agent plist and loads it into launchd.
func (s *Scheduler) Install(program string) error {
	freq, err := ParseFrequency(s.cfg.Frequency)
	if err != nil {
		return err
	}

	content, err := renderPlist(program, freq)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.agentsDir, 0o755); err != nil {
		return fmt.Errorf("creating agents directory: %w", err)
	}

	path := s.plistPath()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing agent plist: %w", err)
	}

	if err := s.launchctl("load", path); err != nil {
		return err
	}

	return nil
}

// Remove unloads the agent and deletes the plist. Removing a schedule that
// was never installed is not an error.
func (s *Scheduler) Remove() error {
	path := s.plistPath()

	if _, err := os.Lstat(path); os.IsNotExist(err) {
		return nil
	}

	if err := s.launchctl("unload", path); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing agent plist: %w", err)
	}

	return nil
}

// SystemConfigured reports whether the agent plist is installed.
func (s *Scheduler) SystemConfigured() bool {
	_, err := os.Lstat(s.plistPath())

	return err == nil
}

// Status reports the configured schedule and the next run it implies.
func (s *Scheduler) Status(now time.Time) Status {
	st := Status{
		Enabled:          s.cfg.Enabled,
		Frequency:        Frequency(s.cfg.Frequency),
		SystemConfigured: s.SystemConfigured(),
	}

	if s.cfg.Enabled {
		if next, ok := NextRun(now, st.Frequency); ok {
			st.NextRun = next
		}
	}

	return st
}

// NextRun computes when the schedule next fires after now. Weekly runs fall
// on Monday, monthly runs on the first of the month.
func NextRun(now time.Time, freq Frequency) (time.Time, bool) {
	at := time.Date(now.Year(), now.Month(), now.Day(), runHour, runMinute, 0, 0, now.Location())

	switch freq {
	case Daily:
		if !at.After(now) {
			at = at.AddDate(0, 0, 1)
		}

		return at, true
	case Weekly:
		daysAhead := (int(time.Monday) - int(now.Weekday()) + 7) % 7
		at = at.AddDate(0, 0, daysAhead)

		if !at.After(now) {
			at = at.AddDate(0, 0, 7)
		}

		return at, true
	case Monthly:
		at = time.Date(now.Year(), now.Month(), 1, runHour, runMinute, 0, 0, now.Location()).AddDate(0, 1, 0)

		return at, true
	default:
		return time.Time{}, false
	}
}
