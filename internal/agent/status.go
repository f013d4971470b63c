package agent

import (
	"fmt"
	"io"
	"strings"
)

// EnabledModuleStrings splits the optional subsystems into enabled and
// disabled comma-separated lists. Core is always enabled; spreading
// activation is not built.
func (a *Agent) EnabledModuleStrings() (enabled, disabled string) {
	var on, off []string
	on = append(on, "Core")

	add := func(name string, isOn bool) {
		if isOn {
			on = append(on, name)
		} else {
			off = append(off, name)
		}
	}
	add("EBC", a.Chunker.Settings().LearningOn)
	add("SMem", a.cfg.Modules.Smem && a.LTM != nil)
	add("EpMem", a.cfg.Modules.Epmem)
	add("RL", a.cfg.Modules.RL)
	add("WMA", a.cfg.Modules.WMA)
	add("SSA", false)

	return strings.Join(on, ", "), strings.Join(off, ", ")
}

// WriteStatus prints the status banner: identity, clock, modules, the
// goal stack, and learning tallies.
func (a *Agent) WriteStatus(w io.Writer) error {
	enabled, disabled := a.EnabledModuleStrings()
	stack, depth := a.StateStackString()
	stats := a.Explain.Stats()

	_, err := fmt.Fprintf(w,
		"Agent %s (%s)\n"+
			"Decision cycle %d (init %d)\n"+
			"Enabled:  %s\nDisabled: %s\n"+
			"State stack (%d): %s\n"+
			"Learned: %d chunks, %d justifications\n",
		a.Name, a.ID, a.dCycleCount, a.initCount, enabled, disabled,
		depth, stack, stats.Chunks, stats.Justifications)
	if err != nil {
		return fmt.Errorf("write status: %w", err)
	}
	if a.Chunker.Timers().Enabled() {
		if err := a.Chunker.Timers().Report(w); err != nil {
			return err
		}
	}
	return nil
}
