// Package automation drives a simulation without a user: scripted
// scenarios replayed against a manager, and parameter sweeps that compare
// converged layouts.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/sim"
	"gopkg.in/yaml.v3"
)

var ErrUnknownAction = errors.New("automation: unknown action")

// Scenario is a scripted sequence of edits applied to a running layout.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one manager operation followed by up to Ticks ticks.
// Ticks of -1 runs until the layout settles.
type ScenarioStep struct {
	Action string             `yaml:"action"`
	ID     string             `yaml:"id"`
	Source string             `yaml:"source"`
	Target string             `yaml:"target"`
	Label  string             `yaml:"label"`
	X      float64            `yaml:"x"`
	Y      float64            `yaml:"y"`
	Params map[string]float64 `yaml:"params"`
	Ticks  int                `yaml:"ticks"`
}

// StepResult reports the manager state after a step.
type StepResult struct {
	Action string
	Ticks  int
	Alpha  float64
	State  sim.State
}

// settleLimit caps "run until settled" steps.
const settleLimit = 10000

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// RunScenario executes all steps against mgr, which must be driven by
// sched. The manager should already be started.
func RunScenario(ctx context.Context, sc *Scenario, mgr *sim.Manager, sched *sim.StepScheduler) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err := apply(mgr, step); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		limit := step.Ticks
		if limit < 0 {
			limit = settleLimit
		}
		ran := sched.Drain(limit)

		results = append(results, StepResult{
			Action: step.Action,
			Ticks:  ran,
			Alpha:  mgr.Alpha(),
			State:  mgr.State(),
		})
	}

	return results, nil
}

func apply(mgr *sim.Manager, step ScenarioStep) error {
	switch step.Action {
	case "tick", "":
	case "add_node":
		mgr.AddNode(step.ID, step.X, step.Y, step.Label)
	case "remove_node":
		mgr.RemoveNode(step.ID)
	case "add_link":
		mgr.AddLink(step.ID, step.Source, step.Target)
	case "remove_link":
		mgr.RemoveLink(step.ID)
	case "drag":
		mgr.UpdateNode(step.ID, step.X, step.Y)
	case "release":
		mgr.ReleaseNode(step.ID)
	case "reheat":
		mgr.Reheat()
	case "pause":
		mgr.Pause()
	case "resume":
		mgr.Resume()
	case "config":
		p, err := config.PatchFrom(step.Params)
		if err != nil {
			return err
		}
		mgr.UpdateConfig(p)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, step.Action)
	}
	return nil
}
